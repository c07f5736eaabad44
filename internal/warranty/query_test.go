package warranty

import (
	"reflect"
	"testing"
	"time"
)

var queryNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func mkRecord(id, name string, end time.Time) Record {
	return Record{
		ID:           id,
		ProductName:  name,
		Brand:        NotSpecified,
		Model:        NotSpecified,
		SerialNumber: NotSpecified,
		WarrantyEnd:  end,
		Status:       DeriveStatus(end, queryNow, DefaultHorizonDays),
	}
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestQuery_StatusFilterScenario(t *testing.T) {
	// A expires in 10 days, B expired 5 days ago, C has 200 days left.
	a := mkRecord("A", "Sony Headphones", queryNow.AddDate(0, 0, 10))
	b := mkRecord("B", "Dyson Vacuum", queryNow.AddDate(0, 0, -5))
	c := mkRecord("C", "MacBook Pro", queryNow.AddDate(0, 0, 200))
	records := []Record{a, b, c}

	cases := []struct {
		name   string
		params QueryParams
		want   []string
	}{
		{
			name:   "expiring_soon_only",
			params: QueryParams{StatusFilter: string(StatusExpiringSoon)},
			want:   []string{"A"},
		},
		{
			name:   "expired_only",
			params: QueryParams{StatusFilter: string(StatusExpired)},
			want:   []string{"B"},
		},
		{
			name:   "all_sorted_by_end_asc",
			params: QueryParams{StatusFilter: FilterAll, SortField: SortByWarrantyEnd, SortDirection: SortAsc},
			want:   []string{"B", "A", "C"},
		},
		{
			name:   "all_sorted_by_end_desc",
			params: QueryParams{SortField: SortByWarrantyEnd, SortDirection: SortDesc},
			want:   []string{"C", "A", "B"},
		},
		{
			name:   "defaults_pass_everything_end_asc",
			params: QueryParams{},
			want:   []string{"B", "A", "C"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Query(records, tc.params))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Query order = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestQuery_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	rec := mkRecord("1", "Samsung 4K QLED TV", queryNow.AddDate(0, 0, 90))
	rec.Brand = "Samsung"
	rec.SerialNumber = "SN1234567890"
	other := mkRecord("2", "Dyson V11", queryNow.AddDate(0, 0, 90))

	cases := []struct {
		name string
		term string
		want []string
	}{
		{name: "lowercase_prefix", term: "sam", want: []string{"1"}},
		{name: "uppercase", term: "QLED", want: []string{"1"}},
		{name: "serial_match", term: "sn123", want: []string{"1"}},
		{name: "brand_or_name", term: "dyson", want: []string{"2"}},
		{name: "empty_term_passes_all", term: "", want: []string{"1", "2"}},
		{name: "no_match", term: "toaster", want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Query([]Record{rec, other}, QueryParams{SearchTerm: tc.term}))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("search %q = %v, want %v", tc.term, got, tc.want)
			}
		})
	}
}

func TestQuery_SortStability(t *testing.T) {
	end := queryNow.AddDate(0, 0, 60)
	records := []Record{
		mkRecord("first", "Same Product", end),
		mkRecord("second", "Same Product", end),
		mkRecord("third", "Same Product", end),
	}

	for _, dir := range []string{SortAsc, SortDesc} {
		t.Run(dir, func(t *testing.T) {
			got := ids(Query(records, QueryParams{SortField: SortByWarrantyEnd, SortDirection: dir}))
			want := []string{"first", "second", "third"}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("ties reordered under %s: %v", dir, got)
			}
		})
	}
}

func TestQuery_SortByProductNameCaseInsensitive(t *testing.T) {
	records := []Record{
		mkRecord("1", "zebra speaker", queryNow.AddDate(0, 0, 50)),
		mkRecord("2", "Apple Watch", queryNow.AddDate(0, 0, 40)),
		mkRecord("3", "bOSE soundbar", queryNow.AddDate(0, 0, 45)),
	}
	got := ids(Query(records, QueryParams{SortField: SortByProductName}))
	want := []string{"2", "3", "1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("name sort = %v, want %v", got, want)
	}
}

func TestQuery_Idempotent(t *testing.T) {
	records := []Record{
		mkRecord("A", "Sony Headphones", queryNow.AddDate(0, 0, 10)),
		mkRecord("B", "Dyson Vacuum", queryNow.AddDate(0, 0, -5)),
		mkRecord("C", "MacBook Pro", queryNow.AddDate(0, 0, 200)),
		mkRecord("D", "Sony TV", queryNow.AddDate(0, 0, 10)),
	}
	params := QueryParams{
		SearchTerm:    "sony",
		StatusFilter:  string(StatusExpiringSoon),
		SortField:     SortByWarrantyEnd,
		SortDirection: SortDesc,
	}

	once := Query(records, params)
	twice := Query(once, params)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second application changed the result:\nonce=%v\ntwice=%v", ids(once), ids(twice))
	}
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		mkRecord("B", "Bravo", queryNow.AddDate(0, 0, 90)),
		mkRecord("A", "Alpha", queryNow.AddDate(0, 0, 40)),
	}
	snapshot := make([]Record, len(records))
	copy(snapshot, records)

	_ = Query(records, QueryParams{SortField: SortByProductName})

	if !reflect.DeepEqual(records, snapshot) {
		t.Fatalf("input slice was mutated")
	}
}

func TestQuery_EmptyInputIsValid(t *testing.T) {
	got := Query(nil, QueryParams{SearchTerm: "anything", StatusFilter: string(StatusActive)})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d records", len(got))
	}
}
