package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/raseedhq/raseed-backend/internal/apierr"
	rediscache "github.com/raseedhq/raseed-backend/internal/clients/redis"
	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/normalization"
	"github.com/raseedhq/raseed-backend/internal/repos"
	"github.com/raseedhq/raseed-backend/internal/types"
)

// QRData is the payload the mobile scanner reads off a product QR code.
type QRData struct {
	ProductName string `json:"product_name"`
	WarrantyEnd string `json:"warranty_end"`
	IMEI        string `json:"imei"`
}

// RegistrationService handles the scanner flow: a QR code, a receipt
// photo and an email arrive as one multipart request; no session is
// involved, the user is resolved by email.
type RegistrationService interface {
	RegisterWarranty(ctx context.Context, email, qrData string, receipt []byte, receiptName string) (*types.WarrantySlip, error)
}

type registrationService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	slipRepo      repos.WarrantySlipRepo
	bucketService BucketService
	ocrService    ReceiptOCRService
	summaryCache  rediscache.SummaryCache
}

func NewRegistrationService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	slipRepo repos.WarrantySlipRepo,
	bucketService BucketService,
	ocrService ReceiptOCRService,
	summaryCache rediscache.SummaryCache,
) RegistrationService {
	serviceLog := log.With("service", "RegistrationService")
	return &registrationService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		slipRepo:      slipRepo,
		bucketService: bucketService,
		ocrService:    ocrService,
		summaryCache:  summaryCache,
	}
}

func (rs *registrationService) RegisterWarranty(ctx context.Context, email, qrData string, receipt []byte, receiptName string) (*types.WarrantySlip, error) {
	email = normalization.ParseEmail(email)
	if email == "" {
		return nil, fmt.Errorf("An email is required")
	}
	if len(receipt) == 0 {
		return nil, fmt.Errorf("A receipt image is required")
	}
	if rs.bucketService == nil {
		return nil, fmt.Errorf("Document storage is not configured")
	}

	qr, err := parseQRData(qrData)
	if err != nil {
		return nil, err
	}
	warrantyEnd, err := parseDateField("warranty_end", qr.WarrantyEnd)
	if err != nil {
		return nil, err
	}

	users, uErr := rs.userRepo.GetByEmails(ctx, nil, []string{email})
	if uErr != nil {
		return nil, fmt.Errorf("Failed to look up user: %w", uErr)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("No user found with email: %s", email))
	}
	user := users[0]

	// OCR is best effort: a scan failure never blocks registration.
	var serialNumber string
	var notes string
	if rs.ocrService != nil {
		scan, sErr := rs.ocrService.ScanReceipt(ctx, receipt)
		if sErr != nil {
			rs.log.Warn("Receipt OCR failed, continuing without it", "error", sErr)
		} else if scan != nil {
			if len(scan.SerialCandidates) > 0 {
				serialNumber = scan.SerialCandidates[0]
			}
			notes = summarizeReceiptText(scan.Text)
		}
	}

	rawQR, _ := json.Marshal(qr)
	slip := &types.WarrantySlip{
		ID:                uuid.New(),
		UserID:            user.ID,
		ProductName:       qr.ProductName,
		SerialNumber:      serialNumber,
		IMEINumber:        qr.IMEI,
		WarrantyStartDate: time.Now().UTC().Truncate(24 * time.Hour),
		WarrantyEndDate:   warrantyEnd,
		UploadedAt:        time.Now().UTC(),
		Notes:             notes,
		QRPayload:         datatypes.JSON(rawQR),
	}
	slip.IPFSHash = ContentHash(receipt)
	slip.StorageKey = receiptStorageKey(user.ID, slip.ID, receiptName)
	slip.FileURL = rs.bucketService.GetPublicURL(slip.StorageKey)

	if upErr := rs.bucketService.UploadFile(ctx, slip.StorageKey, bytes.NewReader(receipt)); upErr != nil {
		return nil, fmt.Errorf("Failed to store receipt: %w", upErr)
	}
	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := rs.slipRepo.Create(ctx, tx, []*types.WarrantySlip{slip})
		return cErr
	}); err != nil {
		_ = rs.bucketService.DeleteFile(ctx, slip.StorageKey)
		return nil, fmt.Errorf("Failed to create warranty slip: %w", err)
	}
	if rs.summaryCache != nil {
		_ = rs.summaryCache.Invalidate(ctx, user.ID)
	}
	return slip, nil
}

func parseQRData(qrData string) (*QRData, error) {
	qrData = normalization.ParseInputString(qrData)
	if qrData == "" {
		return nil, fmt.Errorf("QR data is required")
	}
	var qr QRData
	if err := json.Unmarshal([]byte(qrData), &qr); err != nil {
		return nil, fmt.Errorf("Invalid JSON in QR data: %w", err)
	}
	qr.ProductName = normalization.ParseInputString(qr.ProductName)
	qr.WarrantyEnd = normalization.ParseInputString(qr.WarrantyEnd)
	qr.IMEI = normalization.ParseInputString(qr.IMEI)
	if qr.ProductName == "" || qr.WarrantyEnd == "" || qr.IMEI == "" {
		return nil, fmt.Errorf("QR data must contain product_name, warranty_end, and imei")
	}
	return &qr, nil
}

// summarizeReceiptText keeps the first few OCR lines as a note; full
// receipts are noisy and the document itself stays in the bucket.
func summarizeReceiptText(text string) string {
	if text == "" {
		return ""
	}
	lines := make([]string, 0, 3)
	for _, line := range bytes.Split([]byte(text), []byte("\n")) {
		trimmed := normalization.ParseInputString(string(line))
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
		if len(lines) == 3 {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	out := lines[0]
	for _, l := range lines[1:] {
		out += " / " + l
	}
	return out
}
