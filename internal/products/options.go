package products

import (
	"slices"
	"strings"
	"unicode"
)

// Options are the distinct filter choices across an unfiltered product
// collection.
type Options struct {
	Vendors         []string `json:"vendors"`
	ProductTypes    []string `json:"productTypes"`
	AssuranceLevels []string `json:"assuranceLevels"`
	Statuses        []string `json:"statuses"`
}

// BuildOptions collects the sorted distinct vendors, product types,
// assurance levels and statuses. Assurance levels sort numerically, so
// "Level 10" follows "Level 2".
func BuildOptions(products []ProductView) Options {
	vendors := make(map[string]struct{})
	types := make(map[string]struct{})
	levels := make(map[string]struct{})
	statuses := make(map[string]struct{})
	for _, p := range products {
		vendors[p.VendorName] = struct{}{}
		types[p.ProductType] = struct{}{}
		levels[p.AssuranceLevel] = struct{}{}
		statuses[p.Status] = struct{}{}
	}

	levelList := make([]string, 0, len(levels))
	for l := range levels {
		levelList = append(levelList, l)
	}
	slices.SortFunc(levelList, NaturalCompare)

	return Options{
		Vendors:         sortedKeys(vendors),
		ProductTypes:    sortedKeys(types),
		AssuranceLevels: levelList,
		Statuses:        sortedKeys(statuses),
	}
}

// AvailableFormats returns the sorted union of formats that any product
// supports for the given media types. No media types yields no formats.
func AvailableFormats(products []ProductView, mediaTypes []string) []string {
	if len(mediaTypes) == 0 {
		return []string{}
	}
	set := make(map[string]struct{})
	for _, p := range products {
		for _, mt := range mediaTypes {
			for _, f := range p.FormatsByMediaType[mt] {
				set[f] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// NaturalCompare orders strings so that embedded digit runs compare by
// numeric value: "Level 2" < "Level 10". Non-digit runs compare
// case-insensitively, with a plain comparison as the final tie-break.
func NaturalCompare(a, b string) int {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			if c := compareDigits(string(ar[si:i]), string(br[sj:j])); c != 0 {
				return c
			}
			continue
		}
		ca, cb := unicode.ToLower(ar[i]), unicode.ToLower(br[j])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(ar)-i < len(br)-j:
		return -1
	case len(ar)-i > len(br)-j:
		return 1
	}
	return strings.Compare(a, b)
}

// compareDigits compares two digit strings by value without overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
