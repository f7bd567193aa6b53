package products

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"testing"
)

func TestNormalize_Sample(t *testing.T) {
	// WHY: Pins the full flattening of a generator record: dedup and sort of
	// formats, dropping of null/empty media types, labels and defaults.
	t.Parallel()
	p := sampleProducts(t)[0]

	if p.RecordID != "rec-001" || p.VendorName != "Acme Imaging" || p.ProductName != "Acme Camera" {
		t.Errorf("identity fields = %q %q %q", p.RecordID, p.VendorName, p.ProductName)
	}
	if p.OrganizationalUnit != "Devices" || p.ProductVersion != "3.1" || p.ProductType != "Generator" {
		t.Errorf("product fields = %q %q %q", p.OrganizationalUnit, p.ProductVersion, p.ProductType)
	}
	if p.AssuranceLevel != "Level 2" || p.AssuranceLevelValue == nil || *p.AssuranceLevelValue != 2 {
		t.Errorf("assurance = %q %v", p.AssuranceLevel, p.AssuranceLevelValue)
	}
	if !slices.Equal(p.GenerationFormats["image"], []string{"jpeg", "png"}) {
		t.Errorf("generation image = %v", p.GenerationFormats["image"])
	}
	if !slices.Equal(p.GenerationMediaTypes, []string{"image"}) || !slices.Equal(p.ValidationMediaTypes, []string{"image"}) {
		t.Errorf("media types gen=%v val=%v", p.GenerationMediaTypes, p.ValidationMediaTypes)
	}
	if !slices.Equal(p.FormatsByMediaType["image"], []string{"heic", "jpeg", "png"}) {
		t.Errorf("formatsByMediaType image = %v", p.FormatsByMediaType["image"])
	}
	if !slices.Equal(p.SupportedMediaTypes, []string{"image"}) {
		t.Errorf("supportedMediaTypes = %v", p.SupportedMediaTypes)
	}
	if !slices.Equal(p.SupportedFileFormats, []string{"heic", "jpeg", "png"}) {
		t.Errorf("supportedFileFormats = %v", p.SupportedFileFormats)
	}
	if !slices.Equal(p.SpecVersions, []string{"2.0", "2.1"}) {
		t.Errorf("specVersions = %v", p.SpecVersions)
	}
	if p.CreationDate != "2023-02-10" || p.ConformanceDate != "2023-01-01" || p.LastModification != "2023-03-01" {
		t.Errorf("dates = %q %q %q", p.CreationDate, p.ConformanceDate, p.LastModification)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	// WHY: Records missing optional fields still normalize, with "N/A" for
	// version and level, a nil level value, and empty (non-nil) collections.
	t.Parallel()
	p := Normalize(RawProductRecord{})

	if p.ProductVersion != NotAvailable {
		t.Errorf("ProductVersion = %q, want N/A", p.ProductVersion)
	}
	if p.AssuranceLevel != NotAvailable || p.AssuranceLevelValue != nil {
		t.Errorf("assurance = %q %v, want N/A nil", p.AssuranceLevel, p.AssuranceLevelValue)
	}
	if p.OrganizationalUnit != "" {
		t.Errorf("OrganizationalUnit = %q, want empty", p.OrganizationalUnit)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"supportedFileFormats", "supportedMediaTypes", "generationMediaTypes", "validationMediaTypes", "specVersions"} {
		if !strings.Contains(string(data), `"`+field+`":[]`) {
			t.Errorf("%s not encoded as an empty array: %s", field, data)
		}
	}
	if !strings.Contains(string(data), `"assuranceLevelValue":null`) {
		t.Errorf("assuranceLevelValue not null: %s", data)
	}
}

func TestNormalize_AssuranceAbsentMeansNA(t *testing.T) {
	// WHY: No assurance block and an assurance block without a level are both
	// "N/A" with a nil value; any present level, including zero, is shown.
	t.Parallel()
	zero := FlexInt(0)
	four := FlexInt(4)
	tests := []struct {
		name      string
		assurance *Assurance
		wantLabel string
		wantValue *int
	}{
		{"no block", nil, "N/A", nil},
		{"block without level", &Assurance{}, "N/A", nil},
		{"level zero", &Assurance{MaxAssuranceLevel: &zero}, "Level 0", intPtr(0)},
		{"level four", &Assurance{MaxAssuranceLevel: &four}, "Level 4", intPtr(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Normalize(RawProductRecord{Product: RawProduct{Assurance: tt.assurance}})
			if p.AssuranceLevel != tt.wantLabel {
				t.Errorf("AssuranceLevel = %q, want %q", p.AssuranceLevel, tt.wantLabel)
			}
			switch {
			case tt.wantValue == nil && p.AssuranceLevelValue != nil:
				t.Errorf("AssuranceLevelValue = %d, want nil", *p.AssuranceLevelValue)
			case tt.wantValue != nil && (p.AssuranceLevelValue == nil || *p.AssuranceLevelValue != *tt.wantValue):
				t.Errorf("AssuranceLevelValue = %v, want %d", p.AssuranceLevelValue, *tt.wantValue)
			}
		})
	}
}

func TestNormalize_GenerateMediaTypeIsSupported(t *testing.T) {
	// WHY: Any media type with a non-empty generate list must appear in both
	// the generation media types and the combined supported media types.
	t.Parallel()
	for _, p := range sampleProducts(t) {
		for _, mt := range p.GenerationMediaTypes {
			if len(p.GenerationFormats[mt]) == 0 {
				t.Errorf("%s: generation media type %q has no formats", p.RecordID, mt)
			}
			if !slices.Contains(p.SupportedMediaTypes, mt) {
				t.Errorf("%s: generation media type %q missing from supported", p.RecordID, mt)
			}
		}
	}
}

func TestNormalize_FormatsByMediaTypeIsUnion(t *testing.T) {
	// WHY: The combined map is exactly the sorted, deduplicated union of the
	// per-direction maps, and contains no media type absent from both.
	t.Parallel()
	for _, p := range sampleProducts(t) {
		keys := make(map[string]struct{})
		for mt := range maps.Keys(p.GenerationFormats) {
			keys[mt] = struct{}{}
		}
		for mt := range maps.Keys(p.ValidationFormats) {
			keys[mt] = struct{}{}
		}
		if len(keys) != len(p.FormatsByMediaType) {
			t.Errorf("%s: formatsByMediaType has %d keys, want %d", p.RecordID, len(p.FormatsByMediaType), len(keys))
		}
		for mt := range keys {
			want := append(slices.Clone(p.GenerationFormats[mt]), p.ValidationFormats[mt]...)
			slices.Sort(want)
			want = slices.Compact(want)
			if !slices.Equal(p.FormatsByMediaType[mt], want) {
				t.Errorf("%s/%s: got %v, want %v", p.RecordID, mt, p.FormatsByMediaType[mt], want)
			}
		}
	}
}

func TestNormalize_ValidationOnlyAndToolkit(t *testing.T) {
	// WHY: Validators contribute media types through validate only, and
	// unknown product type tags pass through unchanged.
	t.Parallel()
	products := sampleProducts(t)

	beta := products[1]
	if beta.ProductType != "Validator" || beta.ProductVersion != NotAvailable {
		t.Errorf("beta type/version = %q %q", beta.ProductType, beta.ProductVersion)
	}
	if len(beta.GenerationMediaTypes) != 0 {
		t.Errorf("beta generation media types = %v", beta.GenerationMediaTypes)
	}
	if !slices.Equal(beta.SupportedMediaTypes, []string{"documents", "video"}) {
		t.Errorf("beta supported media types = %v", beta.SupportedMediaTypes)
	}

	signer := products[2]
	if signer.ProductType != "toolkitProduct" {
		t.Errorf("unknown type label = %q", signer.ProductType)
	}
	if !slices.Equal(signer.SupportedFileFormats, []string{"png", "wav", "webp"}) {
		t.Errorf("signer formats = %v", signer.SupportedFileFormats)
	}
}

func TestProcessContainer_CaseSensitive(t *testing.T) {
	// WHY: Format deduplication is case-sensitive; "JPEG" and "jpeg" are distinct.
	t.Parallel()
	idx := processContainer(ContainerFormats{"image": {"jpeg", "JPEG", "jpeg"}, "video": {}})
	if !slices.Equal(idx.formats["image"], []string{"JPEG", "jpeg"}) {
		t.Errorf("image formats = %v", idx.formats["image"])
	}
	if !slices.Equal(idx.mediaTypes, []string{"image"}) {
		t.Errorf("media types = %v", idx.mediaTypes)
	}
}
