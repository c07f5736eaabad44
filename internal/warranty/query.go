package warranty

import (
	"sort"
	"strings"
)

// Sort fields accepted by Query.
const (
	SortByProductName   = "productName"
	SortByWarrantyEnd   = "warrantyEnd"
	SortByWarrantyStart = "warrantyStart"

	SortAsc  = "asc"
	SortDesc = "desc"

	// FilterAll passes every record regardless of status.
	FilterAll = "all"
)

// QueryParams is the combination of search term, status filter and sort
// specification applied to a collection of records. Zero values mean
// the documented defaults: no search, every status, warranty end date
// ascending.
type QueryParams struct {
	SearchTerm    string
	StatusFilter  string
	SortField     string
	SortDirection string
}

func (p QueryParams) withDefaults() QueryParams {
	if p.StatusFilter == "" {
		p.StatusFilter = FilterAll
	}
	if p.SortField == "" {
		p.SortField = SortByWarrantyEnd
	}
	if p.SortDirection == "" {
		p.SortDirection = SortAsc
	}
	return p
}

// Query filters, searches and sorts records for display. Ownership
// filtering is deliberately not performed here; callers supply records
// already scoped to the requesting user. The input slice and its
// elements are never mutated; a fresh ordered slice is returned. The
// function is pure, total over well-formed records, and idempotent for
// a fixed set of params.
func Query(records []Record, p QueryParams) []Record {
	p = p.withDefaults()

	out := make([]Record, 0, len(records))
	term := strings.ToLower(strings.TrimSpace(p.SearchTerm))
	for _, rec := range records {
		if term != "" && !matchesSearch(rec, term) {
			continue
		}
		if p.StatusFilter != FilterAll && string(rec.Status) != p.StatusFilter {
			continue
		}
		out = append(out, rec)
	}

	less := lessFunc(p.SortField)
	desc := p.SortDirection == SortDesc
	// Stable sort so records with equal keys keep their input order,
	// in both directions.
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// matchesSearch is a case-insensitive OR-substring match across the
// descriptive fields; any one hit is enough.
func matchesSearch(rec Record, lowerTerm string) bool {
	for _, field := range []string{rec.ProductName, rec.Brand, rec.Model, rec.SerialNumber} {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}

func lessFunc(field string) func(a, b Record) bool {
	switch field {
	case SortByProductName:
		return func(a, b Record) bool {
			return strings.ToLower(a.ProductName) < strings.ToLower(b.ProductName)
		}
	case SortByWarrantyStart:
		return func(a, b Record) bool {
			return a.WarrantyStart.Before(b.WarrantyStart)
		}
	default:
		return func(a, b Record) bool {
			return a.WarrantyEnd.Before(b.WarrantyEnd)
		}
	}
}
