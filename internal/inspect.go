package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/sensiblebit/conformkit"
	"github.com/sensiblebit/conformkit/internal/trustlist"
)

// CertificateListOutput is the JSON shape of a certificate listing.
type CertificateListOutput struct {
	Total        int                           `json:"total"`
	Shown        int                           `json:"shown"`
	Certificates []trustlist.CertificateRecord `json:"certificates"`
}

// FormatCertificateList renders trust-list records. Text output omits the
// PEM bodies.
func FormatCertificateList(list []trustlist.CertificateRecord, total int, format string) (string, error) {
	switch format {
	case "json":
		return marshalJSON(CertificateListOutput{Total: total, Shown: len(list), Certificates: list})
	case "text":
		var sb strings.Builder
		for _, rec := range list {
			fmt.Fprintf(&sb, "%s %s\n", dimColor.Sprintf("[%d]", rec.ID), headerColor.Sprint(rec.CommonName))
			fmt.Fprintf(&sb, "  %s %s\n", labelColor.Sprint("Organization:"), rec.Organization)
			subject := rec.Subject
			if subject == "" {
				subject = errorColor.Sprint("(unparseable)")
			}
			fmt.Fprintf(&sb, "  %s      %s\n", labelColor.Sprint("Subject:"), subject)
		}
		if len(list) > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Showing %d of %d certificates.\n", len(list), total)
		return sb.String(), nil
	default:
		return "", unsupportedFormat(format)
	}
}

// InspectOutput pairs a trust-list record with its decoded view.
type InspectOutput struct {
	ID      int                           `json:"id"`
	Decoded conformkit.DecodedCertificate `json:"decoded"`
	PEM     string                        `json:"pem,omitempty"`
}

// FormatDecodedCertificate renders a decoded certificate, optionally with
// its PEM block.
func FormatDecodedCertificate(out InspectOutput, format string) (string, error) {
	switch format {
	case "json":
		return marshalJSON(out)
	case "text":
		return formatDecodedText(out), nil
	default:
		return "", unsupportedFormat(format)
	}
}

func formatDecodedText(out InspectOutput) string {
	var sb strings.Builder
	d := out.Decoded
	fmt.Fprintf(&sb, "%s\n", headerColor.Sprintf("Certificate %d:", out.ID))
	if d.Failed() {
		fmt.Fprintf(&sb, "  %s\n", errorColor.Sprint(d.Error))
	} else {
		fmt.Fprintf(&sb, "  Subject:     %s\n", d.Subject)
		fmt.Fprintf(&sb, "  Issuer:      %s\n", d.Issuer)
		fmt.Fprintf(&sb, "  Serial:      %s\n", d.SerialNumber)
		if d.Validity != nil {
			fmt.Fprintf(&sb, "  Not Before:  %s\n", d.Validity.NotBefore.UTC().Format(time.RFC3339))
			fmt.Fprintf(&sb, "  Not After:   %s\n", d.Validity.NotAfter.UTC().Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "  SKI:         %s\n", d.SubjectKeyIdentifier)
		fmt.Fprintf(&sb, "  AKI:         %s\n", d.AuthorityKeyIdentifier)
		if d.Fingerprints != nil {
			fmt.Fprintf(&sb, "  SHA-256:     %s\n", d.Fingerprints.SHA256)
			fmt.Fprintf(&sb, "  SHA-1:       %s\n", d.Fingerprints.SHA1)
		}
		if d.MozillaRoot {
			fmt.Fprintf(&sb, "  Mozilla:     %s\n", successColor.Sprint("in Mozilla root program"))
		}
	}
	if out.PEM != "" {
		fmt.Fprintf(&sb, "\n%s\n", out.PEM)
	}
	return sb.String()
}
