// Package trustlist builds the TSA certificate catalog from a trust-list
// document and filters it by organization and free text.
package trustlist

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sensiblebit/conformkit"
)

// CertificateRecord is one list entry of the trust list. PEM is the
// reconstructed single-certificate block; subject fields come from a light
// parse and are "N/A" when absent.
type CertificateRecord struct {
	ID           int    `json:"id"`
	Subject      string `json:"subject"`
	Organization string `json:"organization"`
	CommonName   string `json:"commonName"`
	PEM          string `json:"pem"`
}

// Load splits a PEM bundle into certificate records, ids in bundle order.
// A certificate whose subject cannot be parsed is still listed, with an
// empty subject; its decode error is reported when it is selected.
func Load(text string) []CertificateRecord {
	blocks := conformkit.SplitPEMBundle(text)
	records := make([]CertificateRecord, 0, len(blocks))
	for i, block := range blocks {
		rec := CertificateRecord{
			ID:           i,
			Organization: conformkit.NotAvailable,
			CommonName:   conformkit.NotAvailable,
			PEM:          block,
		}
		info, err := conformkit.ParseSubject(block)
		if err != nil {
			slog.Debug("parsing trust-list subject", "id", i, "error", err)
		} else {
			rec.Subject = info.DN
			rec.Organization = info.Organization
			rec.CommonName = info.CommonName
		}
		records = append(records, rec)
	}
	return records
}

// LoadData loads a trust list in any supported encoding. PEM text goes
// through Load; DER, PKCS#7, PKCS#12 and JKS stores are converted to a PEM
// bundle first, trying passwords in order.
func LoadData(data []byte, passwords []string) ([]CertificateRecord, error) {
	if conformkit.IsPEM(data) || len(strings.TrimSpace(string(data))) == 0 {
		return Load(string(data)), nil
	}
	certs, err := conformkit.ParseTrustStore(data, passwords)
	if err != nil {
		return nil, fmt.Errorf("reading trust store: %w", err)
	}
	var sb strings.Builder
	for _, cert := range certs {
		sb.WriteString(conformkit.CertToPEM(cert))
	}
	return Load(sb.String()), nil
}

// Criteria filters certificate records. Empty fields do not constrain.
type Criteria struct {
	Organization string
	Search       string
}

// Active reports whether any criterion is set.
func (c Criteria) Active() bool {
	return c.Organization != "" || c.Search != ""
}

// Matches reports whether rec has the selected organization and contains
// the search term, case-insensitively, in its common name or subject.
func (c Criteria) Matches(rec CertificateRecord) bool {
	if c.Organization != "" && rec.Organization != c.Organization {
		return false
	}
	if c.Search == "" {
		return true
	}
	term := strings.ToLower(c.Search)
	return strings.Contains(strings.ToLower(rec.CommonName), term) ||
		strings.Contains(strings.ToLower(rec.Subject), term)
}

// Filter returns the matching records in list order.
func Filter(records []CertificateRecord, c Criteria) []CertificateRecord {
	out := make([]CertificateRecord, 0, len(records))
	for _, rec := range records {
		if c.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Organizations returns the distinct organizations, sorted.
func Organizations(records []CertificateRecord) []string {
	orgs := make([]string, 0, len(records))
	for _, rec := range records {
		orgs = append(orgs, rec.Organization)
	}
	slices.Sort(orgs)
	return slices.Compact(orgs)
}

// FindByID returns the record with the given id.
func FindByID(records []CertificateRecord, id int) (CertificateRecord, bool) {
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return CertificateRecord{}, false
}

// ParseRecords parses the PEM of each record for export. Records that fail
// to parse are left out and their ids returned.
func ParseRecords(records []CertificateRecord) ([]*x509.Certificate, []int) {
	certs := make([]*x509.Certificate, 0, len(records))
	var skipped []int
	for _, rec := range records {
		block, _ := pem.Decode([]byte(rec.PEM))
		if block == nil {
			skipped = append(skipped, rec.ID)
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			slog.Debug("skipping unparseable trust-list certificate", "id", rec.ID, "error", err)
			skipped = append(skipped, rec.ID)
			continue
		}
		certs = append(certs, cert)
	}
	return certs, skipped
}
