package services

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/raseedhq/raseed-backend/internal/types"
	"github.com/raseedhq/raseed-backend/internal/warranty"
)

func TestSlipToRaw_NormalizesCleanly(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	slip := &types.WarrantySlip{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		ProductName:       "Galaxy S24",
		Brand:             "Samsung",
		Model:             "SM-S921",
		SerialNumber:      "SN12345",
		IPFSHash:          "abc123",
		WarrantyStartDate: now.AddDate(-1, 0, 0),
		WarrantyEndDate:   now.AddDate(0, 0, 10),
		UploadedAt:        now.AddDate(-1, 0, 0),
		ReminderSet:       true,
		Notes:             "extended plan",
	}

	raw := slipToRaw(slip)
	rec, err := warranty.Normalize(raw, 0, now)
	if err != nil {
		t.Fatalf("Normalize(slipToRaw(...)) failed: %v", err)
	}
	if rec.ID != slip.ID.String() {
		t.Errorf("ID = %q, want %q", rec.ID, slip.ID.String())
	}
	if rec.ProductName != slip.ProductName {
		t.Errorf("ProductName = %q, want %q", rec.ProductName, slip.ProductName)
	}
	if rec.OwnerID != slip.UserID.String() {
		t.Errorf("OwnerID = %q, want %q", rec.OwnerID, slip.UserID.String())
	}
	if rec.Brand != "Samsung" || rec.Model != "SM-S921" || rec.SerialNumber != "SN12345" {
		t.Errorf("metadata fields lost: %+v", rec)
	}
	if !rec.WarrantyEnd.Equal(slip.WarrantyEndDate) {
		t.Errorf("WarrantyEnd = %v, want %v", rec.WarrantyEnd, slip.WarrantyEndDate)
	}
	if rec.Status != warranty.StatusExpiringSoon {
		t.Errorf("Status = %q, want %q", rec.Status, warranty.StatusExpiringSoon)
	}
	if !rec.ReminderSet {
		t.Errorf("ReminderSet not carried through")
	}
}

func TestSlipToRaw_OmitsEmptyOptionalFields(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	slip := &types.WarrantySlip{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		ProductName:     "Kettle",
		WarrantyEndDate: now.AddDate(1, 0, 0),
		UploadedAt:      now,
	}

	raw := slipToRaw(slip)
	for _, key := range []string{"brand", "model", "serial_number", "notes"} {
		if _, present := raw[key]; present {
			t.Errorf("empty field %q should be omitted", key)
		}
	}
	rec, err := warranty.Normalize(raw, 0, now)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if rec.Brand != warranty.NotSpecified {
		t.Errorf("Brand = %q, want sentinel %q", rec.Brand, warranty.NotSpecified)
	}
}

// The reminder scanner and the list path both classify statuses; with a
// non-default horizon they must agree, or summary counts flap between
// cache warms and cache-miss recomputations.
func TestListPathAndScannerAgreeOnHorizon(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	horizon := 7

	mkSlip := func(end time.Time) *types.WarrantySlip {
		return &types.WarrantySlip{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			ProductName:     "Toaster",
			WarrantyEndDate: end,
			UploadedAt:      now.AddDate(0, -1, 0),
		}
	}
	slips := []*types.WarrantySlip{
		mkSlip(now.AddDate(0, 0, 3)),
		mkSlip(now.AddDate(0, 0, 7)),
		mkSlip(now.AddDate(0, 0, 10)),
		mkSlip(now.AddDate(0, 0, -1)),
	}

	scanner := statusCounts(slips, now, horizon)

	listCounts := map[string]int{
		string(warranty.StatusActive):       0,
		string(warranty.StatusExpiringSoon): 0,
		string(warranty.StatusExpired):      0,
	}
	for _, slip := range slips {
		rec, err := warranty.Normalize(slipToRaw(slip), 0, now)
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		rec.Status = warranty.DeriveStatus(rec.WarrantyEnd, now, horizon)
		listCounts[string(rec.Status)]++
	}

	if !reflect.DeepEqual(scanner, listCounts) {
		t.Fatalf("scanner counts %v disagree with list-path counts %v", scanner, listCounts)
	}
	if got := listCounts[string(warranty.StatusActive)]; got != 1 {
		t.Errorf("active = %d, want 1 (only the +10d slip is outside a 7-day horizon)", got)
	}
}

func TestReceiptStorageKey(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	slipID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	tests := []struct {
		name     string
		fileName string
		wantExt  string
	}{
		{name: "jpeg receipt", fileName: "receipt.jpg", wantExt: ".jpg"},
		{name: "pdf manual", fileName: "manual.v2.pdf", wantExt: ".pdf"},
		{name: "no extension", fileName: "scan", wantExt: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := receiptStorageKey(userID, slipID, tc.fileName)
			want := "receipts/" + userID.String() + "/" + slipID.String() + tc.wantExt
			if key != want {
				t.Errorf("receiptStorageKey(%q) = %q, want %q", tc.fileName, key, want)
			}
			if strings.Contains(key, tc.fileName) && tc.wantExt == "" && tc.fileName != "" {
				t.Errorf("original file name %q leaked into key %q", tc.fileName, key)
			}
		})
	}
}

func TestParseDateField(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid date", value: "2027-03-15", want: time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding whitespace", value: "  2027-03-15 ", want: time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "empty", value: "", wantErr: true},
		{name: "wrong format", value: "15/03/2027", wantErr: true},
		{name: "garbage", value: "soon", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDateField("warranty_end_date", tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseDateField(%q) expected error, got %v", tc.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDateField(%q) failed: %v", tc.value, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("parseDateField(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
