package products

import (
	"fmt"
	"slices"
)

// Explorer holds filter and sort state over one product collection and
// keeps every derived view current: each mutation recomputes the filtered
// list, the option sets and the available formats before returning.
// An Explorer is not safe for concurrent use.
type Explorer struct {
	products []ProductView
	criteria Criteria
	mode     SortMode

	filtered  []ProductView
	options   Options
	available []string
}

// NewExplorer returns an Explorer over products with no active criteria
// and the default sort mode.
func NewExplorer(products []ProductView) *Explorer {
	e := &Explorer{mode: DefaultSortMode}
	e.SetProducts(products)
	return e
}

// SetProducts replaces the product collection and recomputes everything.
func (e *Explorer) SetProducts(products []ProductView) {
	e.products = slices.Clone(products)
	e.options = BuildOptions(e.products)
	e.recompute()
}

func (e *Explorer) recompute() {
	e.filtered = Query(e.products, e.criteria, e.mode)
	e.available = AvailableFormats(e.products, e.criteria.mediaTypes)
}

// Products returns the unfiltered collection.
func (e *Explorer) Products() []ProductView { return slices.Clone(e.products) }

// Filtered returns the filtered, sorted products.
func (e *Explorer) Filtered() []ProductView { return slices.Clone(e.filtered) }

// Options returns the filter choices over the unfiltered collection.
func (e *Explorer) Options() Options { return e.options }

// AvailableFormats returns the format choices for the selected media types.
func (e *Explorer) AvailableFormats() []string { return slices.Clone(e.available) }

// Criteria returns a copy of the current criteria.
func (e *Explorer) Criteria() Criteria { return e.criteria }

// SortMode returns the current sort mode.
func (e *Explorer) SortMode() SortMode { return e.mode }

// SetCriteria replaces all criteria at once.
func (e *Explorer) SetCriteria(c Criteria) {
	e.criteria = c
	e.recompute()
}

func (e *Explorer) SetVendor(v string) {
	e.criteria.Vendor = v
	e.recompute()
}

func (e *Explorer) SetProductType(v string) {
	e.criteria.ProductType = v
	e.recompute()
}

func (e *Explorer) SetAssuranceLevel(v string) {
	e.criteria.AssuranceLevel = v
	e.recompute()
}

func (e *Explorer) SetStatus(v string) {
	e.criteria.Status = v
	e.recompute()
}

func (e *Explorer) SetSearch(term string) {
	e.criteria.Search = term
	e.recompute()
}

func (e *Explorer) SetSortMode(mode SortMode) {
	e.mode = mode
	e.recompute()
}

func (e *Explorer) SetMediaTypes(mediaTypes ...string) {
	e.criteria.SetMediaTypes(mediaTypes...)
	e.recompute()
}

func (e *Explorer) ToggleMediaType(mediaType string, selected bool) {
	e.criteria.ToggleMediaType(mediaType, selected)
	e.recompute()
}

func (e *Explorer) SetFormats(formats ...string) {
	e.criteria.SetFormats(formats...)
	e.recompute()
}

func (e *Explorer) ToggleFormat(format string, selected bool) {
	e.criteria.ToggleFormat(format, selected)
	e.recompute()
}

// Reset clears every criterion and restores the default sort mode.
func (e *Explorer) Reset() {
	e.criteria = Criteria{}
	e.mode = DefaultSortMode
	e.recompute()
}

// AnyFilterActive reports whether any criterion is set.
func (e *Explorer) AnyFilterActive() bool { return e.criteria.Active() }

// Find returns the product with the given record id.
func (e *Explorer) Find(recordID string) (ProductView, bool) {
	return FindByRecordID(e.products, recordID)
}

// Summary renders the result count line.
func (e *Explorer) Summary() string {
	return fmt.Sprintf("Showing %d of %d products.", len(e.filtered), len(e.products))
}

// FindByRecordID returns the first product with the given record id.
func FindByRecordID(products []ProductView, recordID string) (ProductView, bool) {
	for _, p := range products {
		if p.RecordID == recordID {
			return p, true
		}
	}
	return ProductView{}, false
}
