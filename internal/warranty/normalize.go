package warranty

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotSpecified is the sentinel used for descriptive fields the source
// did not carry.
const NotSpecified = "Not specified"

// Record is the canonical warranty record every source shape normalizes
// into. It is immutable after normalization except for ReminderSet,
// which is toggled by user action only.
type Record struct {
	ID            string    `json:"id"`
	ProductName   string    `json:"product_name"`
	OwnerID       string    `json:"owner_id"`
	DocumentRef   string    `json:"document_ref"`
	UploadedAt    time.Time `json:"uploaded_at"`
	WarrantyStart time.Time `json:"warranty_start"`
	WarrantyEnd   time.Time `json:"warranty_end"`
	Brand         string    `json:"brand"`
	Model         string    `json:"model"`
	SerialNumber  string    `json:"serial_number"`
	Status        Status    `json:"status"`
	ReminderSet   bool      `json:"reminder_set"`
	Notes         string    `json:"notes,omitempty"`
}

// ValidationError reports a required field absent from a raw payload.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// DateParseError reports a date field that was present but could not be
// parsed as a calendar date. It is never coerced to a default date.
type DateParseError struct {
	Field string
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("field %q: cannot parse %q as a date", e.Field, e.Value)
}

// BatchError ties a normalization failure to the index of the raw item
// that caused it.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// Normalize converts one raw payload into a Record. Two source shapes
// are accepted: the slip API shape (product_name, warranty_end_date,
// warranty_start_date, uploaded_at, ipfs_hash, user_uid) and the mock
// shape (productName, expiryDate, purchaseDate). index synthesizes a
// fallback id (index+1) when the source carries none; that id is unique
// within one batch only. Status is derived at the supplied now, so the
// function stays a pure function of (raw, index, now).
func Normalize(raw map[string]any, index int, now time.Time) (Record, error) {
	rec := Record{}

	name := firstString(raw, "product_name", "productName")
	if name == "" {
		return Record{}, &ValidationError{Field: "product_name"}
	}
	rec.ProductName = name

	end, endErr := pickDate(raw, "warranty_end_date", "expiryDate")
	if endErr != nil {
		return Record{}, endErr
	}
	if end.IsZero() {
		return Record{}, &ValidationError{Field: "warranty_end_date"}
	}
	rec.WarrantyEnd = end

	start, startErr := pickDate(raw, "warranty_start_date", "purchaseDate")
	if startErr != nil {
		return Record{}, startErr
	}
	rec.WarrantyStart = start

	uploaded, upErr := pickDate(raw, "uploaded_at", "uploadedAt")
	if upErr != nil {
		return Record{}, upErr
	}
	rec.UploadedAt = uploaded

	rec.ID = recordID(raw, index)
	rec.OwnerID = firstString(raw, "user_uid", "ownerId", "owner_id")
	rec.DocumentRef = firstString(raw, "ipfs_hash", "documentRef", "document_ref")
	rec.Brand = stringOrSentinel(raw, "brand")
	rec.Model = stringOrSentinel(raw, "model")
	rec.SerialNumber = firstString(raw, "serial_number", "serialNumber")
	if rec.SerialNumber == "" {
		rec.SerialNumber = NotSpecified
	}
	rec.Notes = firstString(raw, "notes")
	rec.ReminderSet = boolValue(raw, "reminder_set", "reminderSet")

	rec.Status = DeriveStatus(rec.WarrantyEnd, now, DefaultHorizonDays)
	return rec, nil
}

// NormalizeBatch normalizes every item independently, collecting
// per-item failures instead of aborting on the first one. Both the
// surviving records and the errors (with originating indices) are
// returned so the caller can report partial success.
func NormalizeBatch(raws []map[string]any, now time.Time) ([]Record, []BatchError) {
	records := make([]Record, 0, len(raws))
	var errs []BatchError
	for i, raw := range raws {
		rec, err := Normalize(raw, i, now)
		if err != nil {
			errs = append(errs, BatchError{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func recordID(raw map[string]any, index int) string {
	if v, ok := raw["id"]; ok {
		switch id := v.(type) {
		case string:
			if strings.TrimSpace(id) != "" {
				return strings.TrimSpace(id)
			}
		case float64:
			return strconv.FormatInt(int64(id), 10)
		case int:
			return strconv.Itoa(id)
		case int64:
			return strconv.FormatInt(id, 10)
		}
	}
	return strconv.Itoa(index + 1)
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func stringOrSentinel(raw map[string]any, key string) string {
	if s := firstString(raw, key); s != "" {
		return s
	}
	return NotSpecified
}

func boolValue(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// pickDate returns the first parsable date found under keys. A key that
// is present but unparsable is a DateParseError; absence of every key
// yields a zero time and no error so the caller decides whether the
// field was required.
func pickDate(raw map[string]any, keys ...string) (time.Time, error) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			if strings.TrimSpace(d) == "" {
				continue
			}
			t, err := parseDate(strings.TrimSpace(d))
			if err != nil {
				return time.Time{}, &DateParseError{Field: key, Value: d}
			}
			return t, nil
		default:
			return time.Time{}, &DateParseError{Field: key, Value: fmt.Sprintf("%v", v)}
		}
	}
	return time.Time{}, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
