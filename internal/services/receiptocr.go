package services

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/raseedhq/raseed-backend/internal/logger"
)

// ReceiptScan is what OCR recovered from a receipt image. Everything
// here is advisory: it prefills fields the user did not supply and is
// never trusted over explicit input.
type ReceiptScan struct {
	Text             string   `json:"text"`
	SerialCandidates []string `json:"serial_candidates,omitempty"`
}

type ReceiptOCRService interface {
	ScanReceipt(ctx context.Context, image []byte) (*ReceiptScan, error)
	Close() error
}

type receiptOCRService struct {
	log          *logger.Logger
	visionClient *vision.ImageAnnotatorClient
}

// Alphanumeric runs long enough to plausibly be serial/IMEI numbers.
var serialCandidateRe = regexp.MustCompile(`\b[A-Z0-9]{10,20}\b`)

func NewReceiptOCRService(log *logger.Logger) (ReceiptOCRService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	serviceLog := log.With("service", "ReceiptOCRService")

	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	ctx := context.Background()
	var client *vision.ImageAnnotatorClient
	var err error
	if creds != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(creds))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &receiptOCRService{log: serviceLog, visionClient: client}, nil
}

func (rs *receiptOCRService) ScanReceipt(ctx context.Context, image []byte) (*ReceiptScan, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty receipt image")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
		}},
	}
	resp, err := rs.visionClient.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &ReceiptScan{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	return scanFromResponse(r0), nil
}

func scanFromResponse(resp *visionpb.AnnotateImageResponse) *ReceiptScan {
	text := resp.GetFullTextAnnotation().GetText()
	return &ReceiptScan{
		Text:             text,
		SerialCandidates: serialCandidateRe.FindAllString(strings.ToUpper(text), 5),
	}
}

func (rs *receiptOCRService) Close() error {
	if rs == nil || rs.visionClient == nil {
		return nil
	}
	return rs.visionClient.Close()
}
