package internal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sensiblebit/conformkit/internal/products"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

// OutputFormats lists the values accepted by the --format flags.
var OutputFormats = []string{"text", "json"}

// marshalJSON renders v as indented JSON with a trailing newline.
func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func unsupportedFormat(format string) error {
	return fmt.Errorf("unsupported output format %q (use text or json)", format)
}

// statusColor picks the badge color for a product status.
func statusColor(status string) *color.Color {
	switch status {
	case "conformant":
		return successColor
	case "revoked":
		return errorColor
	default:
		return dimColor
	}
}

// AssuranceDots renders a level as four dots, filled up to the level.
// Levels outside 1..4 render nothing.
func AssuranceDots(level *int) string {
	if level == nil || *level < 1 || *level > 4 {
		return ""
	}
	return strings.Repeat("●", *level) + strings.Repeat("○", 4-*level)
}

// ProductListOutput is the JSON shape of a product listing.
type ProductListOutput struct {
	Total    int                    `json:"total"`
	Shown    int                    `json:"shown"`
	Products []products.ProductView `json:"products"`
}

// FormatProductList renders a filtered product list with its count line.
func FormatProductList(list []products.ProductView, total int, format string) (string, error) {
	switch format {
	case "json":
		return marshalJSON(ProductListOutput{Total: total, Shown: len(list), Products: list})
	case "text":
		var sb strings.Builder
		for _, p := range list {
			fmt.Fprintf(&sb, "%s  %s\n", headerColor.Sprint(p.VendorName), p.ProductName)
			fmt.Fprintf(&sb, "  %s %s  %s %s  %s %s\n",
				labelColor.Sprint("Type:"), p.ProductType,
				labelColor.Sprint("Level:"), p.AssuranceLevel,
				labelColor.Sprint("Status:"), statusColor(p.Status).Sprint(products.FormatStatus(p.Status)))
			fmt.Fprintf(&sb, "  %s %s  %s %s\n",
				labelColor.Sprint("Conformance:"), p.ConformanceDate,
				labelColor.Sprint("Record:"), dimColor.Sprint(p.RecordID))
			if len(p.SupportedMediaTypes) > 0 {
				fmt.Fprintf(&sb, "  %s %s\n", labelColor.Sprint("Media:"), strings.Join(p.SupportedMediaTypes, ", "))
			}
		}
		if len(list) > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Showing %d of %d products.\n", len(list), total)
		return sb.String(), nil
	default:
		return "", unsupportedFormat(format)
	}
}

// FormatProductDetail renders one product with per-direction formats.
func FormatProductDetail(p products.ProductView, format string) (string, error) {
	switch format {
	case "json":
		return marshalJSON(p)
	case "text":
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s\n", headerColor.Sprint(p.VendorName))
		fmt.Fprintf(&sb, "  Product:      %s\n", p.ProductName)
		if p.OrganizationalUnit != "" {
			fmt.Fprintf(&sb, "  Unit:         %s\n", p.OrganizationalUnit)
		}
		fmt.Fprintf(&sb, "  Status:       %s\n", statusColor(p.Status).Sprint(products.FormatStatus(p.Status)))
		fmt.Fprintf(&sb, "  Type:         %s\n", p.ProductType)
		fmt.Fprintf(&sb, "  Spec:         %s\n", strings.Join(p.SpecVersions, ", "))
		if dots := AssuranceDots(p.AssuranceLevelValue); dots != "" {
			fmt.Fprintf(&sb, "  Assurance:    %s %s\n", dots, p.AssuranceLevel)
		} else {
			fmt.Fprintf(&sb, "  Assurance:    %s\n", p.AssuranceLevel)
		}
		fmt.Fprintf(&sb, "  Min. Version: %s\n", p.ProductVersion)
		writeDirection(&sb, "Generation", p.GenerationMediaTypes, p.GenerationFormats)
		writeDirection(&sb, "Validation", p.ValidationMediaTypes, p.ValidationFormats)
		fmt.Fprintf(&sb, "  Record ID:    %s\n", p.RecordID)
		fmt.Fprintf(&sb, "  Created:      %s\n", p.CreationDate)
		fmt.Fprintf(&sb, "  Conformance:  %s\n", p.ConformanceDate)
		fmt.Fprintf(&sb, "  Modified:     %s\n", p.LastModification)
		return sb.String(), nil
	default:
		return "", unsupportedFormat(format)
	}
}

func writeDirection(sb *strings.Builder, title string, mediaTypes []string, formats map[string][]string) {
	fmt.Fprintf(sb, "  %s:\n", labelColor.Sprint(title))
	if len(mediaTypes) == 0 {
		fmt.Fprintf(sb, "    %s\n", dimColor.Sprintf("None supported for %s.", title))
		return
	}
	for _, mt := range mediaTypes {
		fmt.Fprintf(sb, "    %-10s %s\n", mt+":", strings.Join(formats[mt], ", "))
	}
}

// OptionsOutput is the JSON shape of the product filter choices.
type OptionsOutput struct {
	products.Options
	MediaTypes       []products.MediaType `json:"mediaTypes"`
	AvailableFormats []string             `json:"availableFormats"`
	SortModes        []string             `json:"sortModes"`
}

// NewOptionsOutput combines the option sets with the static choices.
func NewOptionsOutput(opts products.Options, available []string) OptionsOutput {
	modes := make([]string, 0, len(products.SortModes))
	for _, m := range products.SortModes {
		modes = append(modes, string(m.Mode))
	}
	return OptionsOutput{
		Options:          opts,
		MediaTypes:       products.KnownMediaTypes,
		AvailableFormats: available,
		SortModes:        modes,
	}
}

// FormatOptions renders the filter choices.
func FormatOptions(out OptionsOutput, format string) (string, error) {
	switch format {
	case "json":
		return marshalJSON(out)
	case "text":
		var sb strings.Builder
		writeList(&sb, "Vendors", out.Vendors)
		writeList(&sb, "Product Types", out.ProductTypes)
		writeList(&sb, "Assurance Levels", out.AssuranceLevels)
		statuses := make([]string, len(out.Statuses))
		for i, s := range out.Statuses {
			statuses[i] = fmt.Sprintf("%s (%s)", s, products.FormatStatus(s))
		}
		writeList(&sb, "Statuses", statuses)
		media := make([]string, len(out.MediaTypes))
		for i, mt := range out.MediaTypes {
			media[i] = fmt.Sprintf("%s (%s)", mt.Key, mt.Label)
		}
		writeList(&sb, "Media Types", media)
		if len(out.AvailableFormats) > 0 {
			writeList(&sb, "File Formats", out.AvailableFormats)
		}
		writeList(&sb, "Sort Modes", out.SortModes)
		return sb.String(), nil
	default:
		return "", unsupportedFormat(format)
	}
}

func writeList(sb *strings.Builder, title string, items []string) {
	fmt.Fprintf(sb, "%s\n", headerColor.Sprint(title+":"))
	for _, item := range items {
		if item == "" {
			item = dimColor.Sprint("(empty)")
		}
		fmt.Fprintf(sb, "  %s\n", item)
	}
}
