package products

import (
	"slices"
	"strconv"
)

// NotAvailable is the display value for absent product fields.
const NotAvailable = "N/A"

var productTypeLabels = map[string]string{
	"generatorProduct": "Generator",
	"validatorProduct": "Validator",
}

// ProductView is the flat, filter-ready shape of one product record. Values
// returned by Normalize share no memory with the raw record and are not
// modified afterwards.
type ProductView struct {
	RecordID            string `json:"recordId"`
	VendorName          string `json:"vendorName"`
	ProductName         string `json:"productName"`
	OrganizationalUnit  string `json:"organizationalUnit"`
	ProductVersion      string `json:"productVersion"`
	ProductType         string `json:"productType"`
	AssuranceLevel      string `json:"assuranceLevel"`
	AssuranceLevelValue *int   `json:"assuranceLevelValue"`

	SupportedFileFormats []string            `json:"supportedFileFormats"`
	FormatsByMediaType   map[string][]string `json:"formatsByMediaType"`
	SupportedMediaTypes  []string            `json:"supportedMediaTypes"`
	GenerationFormats    map[string][]string `json:"generationFormats"`
	ValidationFormats    map[string][]string `json:"validationFormats"`
	GenerationMediaTypes []string            `json:"generationMediaTypes"`
	ValidationMediaTypes []string            `json:"validationMediaTypes"`

	CreationDate     string   `json:"creationDate"`
	ConformanceDate  string   `json:"conformanceDate"`
	LastModification string   `json:"lastModification"`
	SpecVersions     []string `json:"specVersions"`
	Status           string   `json:"status"`
}

// ProductTypeLabel maps an upstream product type tag to its display label.
// Unknown tags pass through unchanged.
func ProductTypeLabel(tag string) string {
	if label, ok := productTypeLabels[tag]; ok {
		return label
	}
	return tag
}

// AssuranceLabel renders an assurance level for display.
func AssuranceLabel(level *int) string {
	if level == nil {
		return NotAvailable
	}
	return "Level " + strconv.Itoa(*level)
}

// containerIndex is the per-direction result of processing one container:
// the media types with at least one format, and the sorted formats of each.
type containerIndex struct {
	formats    map[string][]string
	mediaTypes []string
}

// processContainer collects every media type with a non-empty format list
// together with its deduplicated, sorted formats. Comparison is
// case-sensitive.
func processContainer(container ContainerFormats) containerIndex {
	sets := make(map[string]map[string]struct{})
	for mediaType, formats := range container {
		if len(formats) == 0 {
			continue
		}
		set, ok := sets[mediaType]
		if !ok {
			set = make(map[string]struct{}, len(formats))
			sets[mediaType] = set
		}
		for _, f := range formats {
			set[f] = struct{}{}
		}
	}

	idx := containerIndex{formats: make(map[string][]string, len(sets))}
	for mediaType, set := range sets {
		idx.formats[mediaType] = sortedKeys(set)
	}
	idx.mediaTypes = sortedKeys(sets)
	return idx
}

// unionFormats merges the per-direction indexes into the combined
// per-media-type map, the sorted media types and the sorted overall formats.
func unionFormats(gen, val containerIndex) (byMediaType map[string][]string, mediaTypes, allFormats []string) {
	mediaSet := make(map[string]struct{})
	for _, mt := range gen.mediaTypes {
		mediaSet[mt] = struct{}{}
	}
	for _, mt := range val.mediaTypes {
		mediaSet[mt] = struct{}{}
	}

	byMediaType = make(map[string][]string, len(mediaSet))
	all := make(map[string]struct{})
	for mt := range mediaSet {
		combined := make(map[string]struct{})
		for _, f := range gen.formats[mt] {
			combined[f] = struct{}{}
		}
		for _, f := range val.formats[mt] {
			combined[f] = struct{}{}
		}
		byMediaType[mt] = sortedKeys(combined)
		for f := range combined {
			all[f] = struct{}{}
		}
	}
	return byMediaType, sortedKeys(mediaSet), sortedKeys(all)
}

// sortedKeys returns the keys of m in lexicographic order, never nil.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Normalize maps one raw record into its ProductView. It is total: absent
// optional fields degrade to "N/A" or empty collections.
func Normalize(raw RawProductRecord) ProductView {
	gen := processContainer(raw.Containers.Generate)
	val := processContainer(raw.Containers.Validate)
	byMediaType, mediaTypes, allFormats := unionFormats(gen, val)

	var levelValue *int
	if raw.Product.Assurance != nil && raw.Product.Assurance.MaxAssuranceLevel != nil {
		v := int(*raw.Product.Assurance.MaxAssuranceLevel)
		levelValue = &v
	}

	version := raw.Product.MinVersion
	if version == "" {
		version = NotAvailable
	}

	specVersions := slices.Clone([]string(raw.SpecVersion))
	if specVersions == nil {
		specVersions = []string{}
	}

	return ProductView{
		RecordID:             string(raw.RecordID),
		VendorName:           raw.Applicant,
		ProductName:          raw.Product.DN.CN,
		OrganizationalUnit:   raw.Product.DN.OU,
		ProductVersion:       version,
		ProductType:          ProductTypeLabel(raw.Product.ProductType),
		AssuranceLevel:       AssuranceLabel(levelValue),
		AssuranceLevelValue:  levelValue,
		SupportedFileFormats: allFormats,
		FormatsByMediaType:   byMediaType,
		SupportedMediaTypes:  mediaTypes,
		GenerationFormats:    gen.formats,
		ValidationFormats:    val.formats,
		GenerationMediaTypes: gen.mediaTypes,
		ValidationMediaTypes: val.mediaTypes,
		CreationDate:         raw.Dates.Creation,
		ConformanceDate:      raw.Dates.Conformance,
		LastModification:     raw.Dates.LastModification,
		SpecVersions:         specVersions,
		Status:               raw.Status,
	}
}

// NormalizeAll normalizes every record, preserving upstream order.
func NormalizeAll(raws []RawProductRecord) []ProductView {
	out := make([]ProductView, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}
