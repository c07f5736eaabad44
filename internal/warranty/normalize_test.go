package warranty

import (
	"errors"
	"testing"
	"time"
)

var normNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func TestNormalize_SlipAPIShape(t *testing.T) {
	raw := map[string]any{
		"product_name":        "Samsung 4K QLED TV",
		"user_uid":            "uid-123",
		"ipfs_hash":           "QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX",
		"uploaded_at":         "2026-01-15T10:30:00Z",
		"warranty_start_date": "2026-01-15",
		"warranty_end_date":   "2029-01-15",
		"brand":               "Samsung",
		"serial_number":       "SN1234567890",
	}

	rec, err := Normalize(raw, 0, normNow)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if rec.ProductName != "Samsung 4K QLED TV" {
		t.Fatalf("product name = %q", rec.ProductName)
	}
	if rec.OwnerID != "uid-123" {
		t.Fatalf("owner id = %q", rec.OwnerID)
	}
	if rec.DocumentRef != "QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX" {
		t.Fatalf("document ref = %q", rec.DocumentRef)
	}
	if rec.WarrantyEnd != time.Date(2029, 1, 15, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("warranty end = %v", rec.WarrantyEnd)
	}
	if rec.Status != StatusActive {
		t.Fatalf("status = %q, want %q", rec.Status, StatusActive)
	}
	if rec.Model != NotSpecified {
		t.Fatalf("missing model should default to sentinel, got %q", rec.Model)
	}
	if rec.ReminderSet {
		t.Fatalf("reminder should default to false")
	}
}

func TestNormalize_RoundTripShapesAgree(t *testing.T) {
	slip := map[string]any{
		"product_name":        "Dyson V11 Vacuum",
		"warranty_start_date": "2025-08-01",
		"warranty_end_date":   "2026-09-15",
		"brand":               "Dyson",
		"model":               "V11 Absolute",
		"serial_number":       "DY1234567890",
	}
	mock := map[string]any{
		"productName":  "Dyson V11 Vacuum",
		"purchaseDate": "2025-08-01",
		"expiryDate":   "2026-09-15",
		"brand":        "Dyson",
		"model":        "V11 Absolute",
		"serialNumber": "DY1234567890",
	}

	a, err := Normalize(slip, 0, normNow)
	if err != nil {
		t.Fatalf("slip shape: %v", err)
	}
	b, err := Normalize(mock, 7, normNow)
	if err != nil {
		t.Fatalf("mock shape: %v", err)
	}

	// Identical except for the synthesized id.
	a.ID, b.ID = "", ""
	if a != b {
		t.Fatalf("shapes disagree:\nslip=%+v\nmock=%+v", a, b)
	}
	if b.Status != StatusExpiringSoon {
		t.Fatalf("status = %q, want %q", b.Status, StatusExpiringSoon)
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	cases := []struct {
		name      string
		raw       map[string]any
		wantField string
	}{
		{
			name:      "no_product_name",
			raw:       map[string]any{"warranty_end_date": "2027-01-01"},
			wantField: "product_name",
		},
		{
			name:      "no_end_date_either_spelling",
			raw:       map[string]any{"product_name": "Toaster"},
			wantField: "warranty_end_date",
		},
		{
			name: "empty_end_date",
			raw: map[string]any{
				"product_name":      "Toaster",
				"warranty_end_date": "  ",
			},
			wantField: "warranty_end_date",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw, 0, normNow)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if vErr.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", vErr.Field, tc.wantField)
			}
		})
	}
}

func TestNormalize_UnparsableDate(t *testing.T) {
	raw := map[string]any{
		"product_name":      "Kettle",
		"warranty_end_date": "next spring",
	}
	_, err := Normalize(raw, 0, normNow)
	var dErr *DateParseError
	if !errors.As(err, &dErr) {
		t.Fatalf("want DateParseError, got %v", err)
	}
	if dErr.Field != "warranty_end_date" || dErr.Value != "next spring" {
		t.Fatalf("unexpected error detail: %+v", dErr)
	}
}

func TestNormalizeBatch_PartialSuccess(t *testing.T) {
	raws := []map[string]any{
		{"product_name": "A", "warranty_end_date": "2027-01-01"},
		{"product_name": "broken"}, // no end date at all
		{"product_name": "C", "warranty_end_date": "2027-06-01"},
	}

	records, errs := NormalizeBatch(raws, normNow)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Index != 1 {
		t.Fatalf("error index = %d, want 1", errs[0].Index)
	}
	var vErr *ValidationError
	if !errors.As(errs[0].Err, &vErr) {
		t.Fatalf("want ValidationError, got %v", errs[0].Err)
	}
}

func TestNormalizeBatch_FallbackIDs(t *testing.T) {
	raws := []map[string]any{
		{"product_name": "First", "warranty_end_date": "2027-01-01"},
		{"product_name": "Second", "warranty_end_date": "2027-01-01"},
	}
	records, errs := NormalizeBatch(raws, normNow)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if records[0].ID != "1" || records[1].ID != "2" {
		t.Fatalf("fallback ids = %q, %q; want 1, 2", records[0].ID, records[1].ID)
	}
}

func TestNormalize_KeepsSourceID(t *testing.T) {
	raw := map[string]any{
		"id":                float64(42), // JSON numbers decode as float64
		"product_name":      "Camera",
		"warranty_end_date": "2027-01-01",
	}
	rec, err := Normalize(raw, 5, normNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.ID != "42" {
		t.Fatalf("id = %q, want 42", rec.ID)
	}
}

func TestNormalize_PastEndDateIsExpiredNotError(t *testing.T) {
	// Malformed ranges (end before start) pass through; the derived
	// status carries the signal instead.
	raw := map[string]any{
		"product_name":        "Old Blender",
		"warranty_start_date": "2026-05-01",
		"warranty_end_date":   "2024-05-01",
	}
	rec, err := Normalize(raw, 0, normNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Status != StatusExpired {
		t.Fatalf("status = %q, want %q", rec.Status, StatusExpired)
	}
}
