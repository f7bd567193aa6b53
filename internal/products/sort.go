package products

import (
	"fmt"
	"slices"
	"time"
)

// SortMode orders a filtered product list by one of its dates.
type SortMode string

const (
	SortConformanceDateDesc SortMode = "conformanceDateDesc"
	SortConformanceDateAsc  SortMode = "conformanceDateAsc"
	SortCreationDateDesc    SortMode = "creationDateDesc"
	SortCreationDateAsc     SortMode = "creationDateAsc"

	DefaultSortMode = SortConformanceDateDesc
)

// SortModes lists the valid sort modes with their display labels.
var SortModes = []struct {
	Mode  SortMode
	Label string
}{
	{SortConformanceDateDesc, "Conformance Date (Newest)"},
	{SortConformanceDateAsc, "Conformance Date (Oldest)"},
	{SortCreationDateDesc, "Application Date (Newest)"},
	{SortCreationDateAsc, "Application Date (Oldest)"},
}

// ParseSortMode validates a sort mode name. The empty string selects the
// default mode.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return DefaultSortMode, nil
	}
	for _, m := range SortModes {
		if string(m.Mode) == s {
			return m.Mode, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// dateLayouts are tried in order when parsing upstream dates.
var dateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano}

// ParseDate parses an upstream calendar date. Unparseable or empty dates
// yield the zero time, so they sort as the oldest.
func ParseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Sort returns a copy of products ordered by mode. Products with equal
// dates keep their relative order.
func Sort(products []ProductView, mode SortMode) []ProductView {
	var key func(ProductView) string
	desc := false
	switch mode {
	case SortConformanceDateDesc:
		key, desc = func(p ProductView) string { return p.ConformanceDate }, true
	case SortConformanceDateAsc:
		key = func(p ProductView) string { return p.ConformanceDate }
	case SortCreationDateDesc:
		key, desc = func(p ProductView) string { return p.CreationDate }, true
	case SortCreationDateAsc:
		key = func(p ProductView) string { return p.CreationDate }
	default:
		return slices.Clone(products)
	}

	type keyed struct {
		p ProductView
		t time.Time
	}
	items := make([]keyed, len(products))
	for i, p := range products {
		items[i] = keyed{p: p, t: ParseDate(key(p))}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if desc {
			return b.t.Compare(a.t)
		}
		return a.t.Compare(b.t)
	})

	out := make([]ProductView, len(items))
	for i, it := range items {
		out[i] = it.p
	}
	return out
}

// Query filters products by c and orders the result by mode.
func Query(products []ProductView, c Criteria, mode SortMode) []ProductView {
	return Sort(Filter(products, c), mode)
}
