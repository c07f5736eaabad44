package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raseedhq/raseed-backend/internal/apierr"
	rediscache "github.com/raseedhq/raseed-backend/internal/clients/redis"
	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/normalization"
	"github.com/raseedhq/raseed-backend/internal/repos"
	"github.com/raseedhq/raseed-backend/internal/requestdata"
	"github.com/raseedhq/raseed-backend/internal/types"
	"github.com/raseedhq/raseed-backend/internal/warranty"
)

// UploadSlipInput carries one warranty document plus its metadata from
// the upload form.
type UploadSlipInput struct {
	ProductName       string
	Brand             string
	Model             string
	SerialNumber      string
	Notes             string
	WarrantyStartDate string
	WarrantyEndDate   string
	FileName          string
	FileBytes         []byte
}

// SlipListResult is what a list view renders: the ordered records plus
// how many stored rows failed normalization (dropped, never fatal).
type SlipListResult struct {
	Records []warranty.Record     `json:"records"`
	Errors  []warranty.BatchError `json:"-"`
	Dropped int                   `json:"dropped"`
}

type SlipService interface {
	UploadSlip(ctx context.Context, input UploadSlipInput) (*types.WarrantySlip, error)
	ListSlips(ctx context.Context, params warranty.QueryParams) (*SlipListResult, error)
	GetSlip(ctx context.Context, slipID uuid.UUID) (*types.WarrantySlip, error)
	SetReminder(ctx context.Context, slipID uuid.UUID, reminderSet bool) (*types.WarrantySlip, error)
	TransferSlip(ctx context.Context, slipID uuid.UUID, recipientEmail string) (*types.WarrantySlip, error)
	ExtendWarranty(ctx context.Context, slipID uuid.UUID, newEndDate string) (*types.WarrantySlip, error)
	DeleteSlip(ctx context.Context, slipID uuid.UUID) error
	StatusSummary(ctx context.Context) (map[string]int, error)
}

type slipService struct {
	db            *gorm.DB
	log           *logger.Logger
	slipRepo      repos.WarrantySlipRepo
	userRepo      repos.UserRepo
	bucketService BucketService
	summaryCache  rediscache.SummaryCache
	horizonDays   int
}

func NewSlipService(
	db *gorm.DB,
	log *logger.Logger,
	slipRepo repos.WarrantySlipRepo,
	userRepo repos.UserRepo,
	bucketService BucketService,
	summaryCache rediscache.SummaryCache,
	horizonDays int,
) SlipService {
	serviceLog := log.With("service", "SlipService")
	if horizonDays <= 0 {
		horizonDays = warranty.DefaultHorizonDays
	}
	return &slipService{
		db:            db,
		log:           serviceLog,
		slipRepo:      slipRepo,
		userRepo:      userRepo,
		bucketService: bucketService,
		summaryCache:  summaryCache,
		horizonDays:   horizonDays,
	}
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("No authenticated user in context")
	}
	return rd.UserID, nil
}

func (ss *slipService) UploadSlip(ctx context.Context, input UploadSlipInput) (*types.WarrantySlip, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	input.ProductName = normalization.ParseInputString(input.ProductName)
	if input.ProductName == "" {
		return nil, fmt.Errorf("A product name is required")
	}
	if len(input.FileBytes) == 0 {
		return nil, fmt.Errorf("A warranty document is required")
	}
	if ss.bucketService == nil {
		return nil, fmt.Errorf("Document storage is not configured")
	}
	endDate, err := parseDateField("warranty_end_date", input.WarrantyEndDate)
	if err != nil {
		return nil, err
	}
	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	if normalization.ParseInputString(input.WarrantyStartDate) != "" {
		startDate, err = parseDateField("warranty_start_date", input.WarrantyStartDate)
		if err != nil {
			return nil, err
		}
	}

	slip := &types.WarrantySlip{
		ID:                uuid.New(),
		UserID:            userID,
		ProductName:       input.ProductName,
		Brand:             normalization.ParseInputString(input.Brand),
		Model:             normalization.ParseInputString(input.Model),
		SerialNumber:      normalization.ParseInputString(input.SerialNumber),
		Notes:             normalization.ParseInputString(input.Notes),
		WarrantyStartDate: startDate,
		WarrantyEndDate:   endDate,
		UploadedAt:        time.Now().UTC(),
	}
	slip.IPFSHash = ContentHash(input.FileBytes)
	slip.StorageKey = receiptStorageKey(userID, slip.ID, input.FileName)
	slip.FileURL = ss.bucketService.GetPublicURL(slip.StorageKey)

	if upErr := ss.bucketService.UploadFile(ctx, slip.StorageKey, bytes.NewReader(input.FileBytes)); upErr != nil {
		return nil, fmt.Errorf("Failed to store warranty document: %w", upErr)
	}
	if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := ss.slipRepo.Create(ctx, tx, []*types.WarrantySlip{slip})
		return cErr
	}); err != nil {
		// Best effort cleanup; the document is unreachable without a row.
		_ = ss.bucketService.DeleteFile(ctx, slip.StorageKey)
		return nil, fmt.Errorf("Failed to create warranty slip: %w", err)
	}
	ss.invalidateSummary(ctx, userID)
	return slip, nil
}

// ListSlips runs the owner's stored rows through the normalizer and the
// query pipeline. Rows that fail normalization are dropped with a
// reportable reason; an empty store is a valid empty result.
func (ss *slipService) ListSlips(ctx context.Context, params warranty.QueryParams) (*SlipListResult, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	slips, err := ss.slipRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to list warranty slips: %w", err)
	}
	raws := make([]map[string]any, 0, len(slips))
	for _, slip := range slips {
		raws = append(raws, slipToRaw(slip))
	}
	now := time.Now().UTC()
	records, errs := warranty.NormalizeBatch(raws, now)
	for _, bErr := range errs {
		ss.log.Warn("Warranty slip failed normalization", "index", bErr.Index, "error", bErr.Err)
	}
	// Reclassify with the configured horizon so list statuses and the
	// scanner-warmed summary cache agree.
	for i := range records {
		records[i].Status = warranty.DeriveStatus(records[i].WarrantyEnd, now, ss.horizonDays)
	}
	return &SlipListResult{
		Records: warranty.Query(records, params),
		Errors:  errs,
		Dropped: len(errs),
	}, nil
}

func (ss *slipService) GetSlip(ctx context.Context, slipID uuid.UUID) (*types.WarrantySlip, error) {
	slip, err := ss.ownedSlip(ctx, nil, slipID)
	if err != nil {
		return nil, err
	}
	if slip.StorageKey != "" && ss.bucketService != nil {
		slip.FileURL = ss.bucketService.GetPublicURL(slip.StorageKey)
	}
	return slip, nil
}

func (ss *slipService) SetReminder(ctx context.Context, slipID uuid.UUID, reminderSet bool) (*types.WarrantySlip, error) {
	slip, err := ss.ownedSlip(ctx, nil, slipID)
	if err != nil {
		return nil, err
	}
	if err := ss.slipRepo.UpdateReminder(ctx, nil, slipID, reminderSet); err != nil {
		return nil, fmt.Errorf("Failed to update reminder flag: %w", err)
	}
	slip.ReminderSet = reminderSet
	return slip, nil
}

func (ss *slipService) TransferSlip(ctx context.Context, slipID uuid.UUID, recipientEmail string) (*types.WarrantySlip, error) {
	recipientEmail = normalization.ParseEmail(recipientEmail)
	if recipientEmail == "" {
		return nil, fmt.Errorf("A recipient email is required")
	}
	var slip *types.WarrantySlip
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		slip, txErr = ss.ownedSlip(ctx, tx, slipID)
		if txErr != nil {
			return txErr
		}
		recipients, rErr := ss.userRepo.GetByEmails(ctx, tx, []string{recipientEmail})
		if rErr != nil {
			return fmt.Errorf("Failed to look up recipient: %w", rErr)
		}
		if len(recipients) == 0 {
			return fmt.Errorf("No user found with email: %s", recipientEmail)
		}
		recipient := recipients[0]
		if recipient.ID == slip.UserID {
			return fmt.Errorf("Slip already belongs to that user")
		}
		if uErr := ss.slipRepo.UpdateOwner(ctx, tx, slipID, recipient.ID); uErr != nil {
			return fmt.Errorf("Failed to transfer warranty slip: %w", uErr)
		}
		ss.invalidateSummary(ctx, slip.UserID)
		ss.invalidateSummary(ctx, recipient.ID)
		slip.UserID = recipient.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slip, nil
}

func (ss *slipService) ExtendWarranty(ctx context.Context, slipID uuid.UUID, newEndDate string) (*types.WarrantySlip, error) {
	newEnd, err := parseDateField("warranty_end_date", newEndDate)
	if err != nil {
		return nil, err
	}
	slip, err := ss.ownedSlip(ctx, nil, slipID)
	if err != nil {
		return nil, err
	}
	// Extensions only move the end date forward.
	if !newEnd.After(slip.WarrantyEndDate) {
		return nil, fmt.Errorf("New end date must be after the current end date")
	}
	if uErr := ss.slipRepo.UpdateEndDate(ctx, nil, slipID, newEnd); uErr != nil {
		return nil, fmt.Errorf("Failed to extend warranty: %w", uErr)
	}
	slip.WarrantyEndDate = newEnd
	ss.invalidateSummary(ctx, slip.UserID)
	return slip, nil
}

func (ss *slipService) DeleteSlip(ctx context.Context, slipID uuid.UUID) error {
	slip, err := ss.ownedSlip(ctx, nil, slipID)
	if err != nil {
		return err
	}
	if err := ss.slipRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{slipID}); err != nil {
		return fmt.Errorf("Failed to delete warranty slip: %w", err)
	}
	if slip.StorageKey != "" && ss.bucketService != nil {
		if dErr := ss.bucketService.DeleteFile(ctx, slip.StorageKey); dErr != nil {
			ss.log.Warn("Failed to delete stored document", "storage_key", slip.StorageKey, "error", dErr)
		}
	}
	ss.invalidateSummary(ctx, slip.UserID)
	return nil
}

// StatusSummary returns the per-status record counts driving the
// reminder badge, served from redis when fresh.
func (ss *slipService) StatusSummary(ctx context.Context) (map[string]int, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if ss.summaryCache != nil {
		if counts, ok, cErr := ss.summaryCache.Get(ctx, userID); cErr == nil && ok {
			return counts, nil
		}
	}
	result, err := ss.ListSlips(ctx, warranty.QueryParams{})
	if err != nil {
		return nil, err
	}
	counts := map[string]int{
		string(warranty.StatusActive):       0,
		string(warranty.StatusExpiringSoon): 0,
		string(warranty.StatusExpired):      0,
	}
	for _, rec := range result.Records {
		counts[string(rec.Status)]++
	}
	if ss.summaryCache != nil {
		if cErr := ss.summaryCache.Set(ctx, userID, counts); cErr != nil {
			ss.log.Warn("Failed to cache status summary", "error", cErr)
		}
	}
	return counts, nil
}

func (ss *slipService) ownedSlip(ctx context.Context, tx *gorm.DB, slipID uuid.UUID) (*types.WarrantySlip, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	slips, err := ss.slipRepo.GetByIDs(ctx, tx, []uuid.UUID{slipID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load warranty slip: %w", err)
	}
	// A foreign slip reads the same as a missing one; ownership must not
	// be probeable through error shapes.
	if len(slips) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("Warranty slip not found"))
	}
	slip := slips[0]
	if slip.UserID != userID {
		return nil, apierr.NotFound(fmt.Errorf("Warranty slip not found"))
	}
	return slip, nil
}

func (ss *slipService) invalidateSummary(ctx context.Context, userID uuid.UUID) {
	if ss.summaryCache == nil {
		return
	}
	if err := ss.summaryCache.Invalidate(ctx, userID); err != nil {
		ss.log.Warn("Failed to invalidate status summary", "error", err)
	}
}

// slipToRaw renders a stored row in the slip API wire shape the
// normalizer accepts, so the list path and any external feed share one
// entry point into the domain core.
func slipToRaw(slip *types.WarrantySlip) map[string]any {
	raw := map[string]any{
		"id":                  slip.ID.String(),
		"product_name":        slip.ProductName,
		"user_uid":            slip.UserID.String(),
		"ipfs_hash":           slip.IPFSHash,
		"uploaded_at":         slip.UploadedAt,
		"warranty_start_date": slip.WarrantyStartDate,
		"warranty_end_date":   slip.WarrantyEndDate,
		"reminder_set":        slip.ReminderSet,
	}
	if slip.Brand != "" {
		raw["brand"] = slip.Brand
	}
	if slip.Model != "" {
		raw["model"] = slip.Model
	}
	if slip.SerialNumber != "" {
		raw["serial_number"] = slip.SerialNumber
	}
	if slip.Notes != "" {
		raw["notes"] = slip.Notes
	}
	return raw
}

func receiptStorageKey(userID, slipID uuid.UUID, fileName string) string {
	ext := path.Ext(fileName)
	return fmt.Sprintf("receipts/%s/%s%s", userID, slipID, ext)
}

func parseDateField(field, value string) (time.Time, error) {
	value = normalization.ParseInputString(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("A %s is required", field)
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("Could not parse %s %q as a date", field, value)
	}
	return t, nil
}
