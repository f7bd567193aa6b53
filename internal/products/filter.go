package products

import (
	"slices"
	"strings"
)

// MediaType is a media-type key with its display label.
type MediaType struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// KnownMediaTypes are the media-type keys offered as filter choices.
var KnownMediaTypes = []MediaType{
	{Key: "image", Label: "Image"},
	{Key: "video", Label: "Video"},
	{Key: "audio", Label: "Audio"},
	{Key: "documents", Label: "Documents"},
	{Key: "fonts", Label: "Fonts"},
	{Key: "mlModel", Label: "ML Model"},
}

// Criteria is the set of product filter criteria. Empty strings and empty
// sets mean "no constraint". The media-type and format sets are only
// reachable through methods so that emptying the media types always clears
// the formats in the same step. Setters never modify a slice in place, so a
// copied Criteria is independent of the original.
type Criteria struct {
	Vendor         string
	ProductType    string
	AssuranceLevel string
	Status         string
	Search         string

	mediaTypes []string
	formats    []string
}

// MediaTypes returns the selected media types, sorted.
func (c Criteria) MediaTypes() []string { return slices.Clone(c.mediaTypes) }

// Formats returns the selected file formats, sorted.
func (c Criteria) Formats() []string { return slices.Clone(c.formats) }

// SetMediaTypes replaces the media-type selection. An empty selection also
// clears the format selection.
func (c *Criteria) SetMediaTypes(mediaTypes ...string) {
	c.mediaTypes = normalizeSet(mediaTypes)
	if len(c.mediaTypes) == 0 {
		c.formats = nil
	}
}

// ToggleMediaType adds or removes one media type. Removing the last one
// clears the format selection.
func (c *Criteria) ToggleMediaType(mediaType string, selected bool) {
	c.SetMediaTypes(toggle(c.mediaTypes, mediaType, selected)...)
}

// SetFormats replaces the format selection. Formats are ignored while no
// media type is selected.
func (c *Criteria) SetFormats(formats ...string) {
	if len(c.mediaTypes) == 0 {
		c.formats = nil
		return
	}
	c.formats = normalizeSet(formats)
}

// ToggleFormat adds or removes one format.
func (c *Criteria) ToggleFormat(format string, selected bool) {
	c.SetFormats(toggle(c.formats, format, selected)...)
}

// Active reports whether any criterion constrains the result.
func (c Criteria) Active() bool {
	return c.Vendor != "" || c.ProductType != "" || c.AssuranceLevel != "" ||
		c.Status != "" || c.Search != "" || len(c.mediaTypes) > 0 || len(c.formats) > 0
}

// Matches reports whether p satisfies every criterion.
func (c Criteria) Matches(p ProductView) bool {
	if c.Vendor != "" && p.VendorName != c.Vendor {
		return false
	}
	if c.ProductType != "" && p.ProductType != c.ProductType {
		return false
	}
	if c.AssuranceLevel != "" && p.AssuranceLevel != c.AssuranceLevel {
		return false
	}
	if c.Status != "" && p.Status != c.Status {
		return false
	}
	if len(c.mediaTypes) > 0 && !intersects(p.SupportedMediaTypes, c.mediaTypes) {
		return false
	}
	if len(c.formats) > 0 && !intersects(p.SupportedFileFormats, c.formats) {
		return false
	}
	return matchesSearch(p, c.Search)
}

// Filter returns the products matching c, in input order.
func Filter(products []ProductView, c Criteria) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// searchFields lists the string fields that free-text search scans.
func searchFields(p ProductView) []string {
	return []string{
		p.RecordID,
		p.VendorName,
		p.ProductName,
		p.OrganizationalUnit,
		p.ProductVersion,
		p.ProductType,
		p.AssuranceLevel,
		p.CreationDate,
		p.ConformanceDate,
		p.LastModification,
		p.Status,
	}
}

func matchesSearch(p ProductView, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, group := range [][]string{searchFields(p), p.SupportedMediaTypes, p.SupportedFileFormats} {
		for _, v := range group {
			if strings.Contains(strings.ToLower(v), term) {
				return true
			}
		}
	}
	return false
}

func intersects(values, selected []string) bool {
	for _, v := range values {
		if _, found := slices.BinarySearch(selected, v); found {
			return true
		}
	}
	return false
}

// normalizeSet returns a sorted, deduplicated copy without empty entries.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func toggle(set []string, value string, selected bool) []string {
	if selected {
		return append(slices.Clone(set), value)
	}
	return slices.DeleteFunc(slices.Clone(set), func(v string) bool { return v == value })
}
