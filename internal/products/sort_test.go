package products

import (
	"slices"
	"testing"
	"time"
)

func TestSort_Modes(t *testing.T) {
	// WHY: Conformance dates 2023-01-01, 2023-06-01, 2022-12-01 must order
	// newest-first by default, and each mode orders by its own date.
	t.Parallel()
	products := sampleProducts(t)

	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortConformanceDateDesc, []string{"1002", "rec-001", "rec-003"}},
		{SortConformanceDateAsc, []string{"rec-003", "rec-001", "1002"}},
		{SortCreationDateDesc, []string{"rec-003", "rec-001", "1002"}},
		{SortCreationDateAsc, []string{"1002", "rec-001", "rec-003"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			got := recordIDs(Sort(products, tt.mode))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if got := recordIDs(products); !slices.Equal(got, []string{"rec-001", "1002", "rec-003"}) {
		t.Errorf("Sort modified its input: %v", got)
	}
}

func TestSort_StableAndUnparseable(t *testing.T) {
	// WHY: Ties keep upstream order, and unparseable dates sort as the
	// oldest instead of breaking the ordering.
	t.Parallel()
	products := []ProductView{
		{RecordID: "a", ConformanceDate: "2023-01-01"},
		{RecordID: "bad", ConformanceDate: "soon"},
		{RecordID: "b", ConformanceDate: "2023-01-01"},
		{RecordID: "c", ConformanceDate: "2024-01-01"},
	}
	got := recordIDs(Sort(products, SortConformanceDateDesc))
	want := []string{"c", "a", "b", "bad"}
	if !slices.Equal(got, want) {
		t.Errorf("desc: got %v, want %v", got, want)
	}
	got = recordIDs(Sort(products, SortConformanceDateAsc))
	want = []string{"bad", "a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("asc: got %v, want %v", got, want)
	}
}

func TestParseSortMode(t *testing.T) {
	// WHY: CLI and HTTP inputs are validated against the four known modes.
	t.Parallel()
	if m, err := ParseSortMode(""); err != nil || m != DefaultSortMode {
		t.Errorf("empty: %q %v", m, err)
	}
	if m, err := ParseSortMode("creationDateAsc"); err != nil || m != SortCreationDateAsc {
		t.Errorf("creationDateAsc: %q %v", m, err)
	}
	if _, err := ParseSortMode("alphabetical"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseDate(t *testing.T) {
	// WHY: Upstream uses calendar dates; timestamps are also accepted.
	t.Parallel()
	if got := ParseDate("2023-06-01"); !got.Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only = %v", got)
	}
	if got := ParseDate("2023-06-01T12:00:00Z"); got.Hour() != 12 {
		t.Errorf("RFC 3339 = %v", got)
	}
	if !ParseDate("").IsZero() {
		t.Error("empty date is not zero")
	}
}

func TestQuery_FilterThenSort(t *testing.T) {
	// WHY: Query composes the filter and the sort without reordering the input.
	t.Parallel()
	got := recordIDs(Query(sampleProducts(t), Criteria{Vendor: "Acme Imaging"}, SortCreationDateDesc))
	if !slices.Equal(got, []string{"rec-003", "rec-001"}) {
		t.Errorf("got %v", got)
	}
}
