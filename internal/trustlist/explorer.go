package trustlist

import (
	"fmt"
	"slices"

	"github.com/sensiblebit/conformkit"
)

// Explorer holds filter state and the current selection over a certificate
// list. Only the selected certificate is decoded, once per selection.
// An Explorer is not safe for concurrent use.
type Explorer struct {
	records  []CertificateRecord
	criteria Criteria

	filtered      []CertificateRecord
	organizations []string

	selected *CertificateRecord
	decoded  *conformkit.DecodedCertificate
	decode   func(string) conformkit.DecodedCertificate
}

// NewExplorer returns an Explorer over records with no filter and no
// selection.
func NewExplorer(records []CertificateRecord) *Explorer {
	e := &Explorer{decode: conformkit.DecodeCertificate}
	e.SetRecords(records)
	return e
}

// SetRecords replaces the list, keeping the criteria and dropping the
// selection.
func (e *Explorer) SetRecords(records []CertificateRecord) {
	e.records = slices.Clone(records)
	e.organizations = Organizations(e.records)
	e.Deselect()
	e.recompute()
}

func (e *Explorer) recompute() {
	e.filtered = Filter(e.records, e.criteria)
}

// Records returns the unfiltered list.
func (e *Explorer) Records() []CertificateRecord { return slices.Clone(e.records) }

// Filtered returns the records passing the current criteria.
func (e *Explorer) Filtered() []CertificateRecord { return slices.Clone(e.filtered) }

// Organizations returns the organization choices.
func (e *Explorer) Organizations() []string { return slices.Clone(e.organizations) }

// Criteria returns the current criteria.
func (e *Explorer) Criteria() Criteria { return e.criteria }

func (e *Explorer) SetOrganization(org string) {
	e.criteria.Organization = org
	e.recompute()
}

func (e *Explorer) SetSearch(term string) {
	e.criteria.Search = term
	e.recompute()
}

// Reset clears the criteria.
func (e *Explorer) Reset() {
	e.criteria = Criteria{}
	e.recompute()
}

// AnyFilterActive reports whether a criterion is set.
func (e *Explorer) AnyFilterActive() bool { return e.criteria.Active() }

// Select marks the record with the given id for inspection and clears any
// previous decode result.
func (e *Explorer) Select(id int) error {
	rec, ok := FindByID(e.records, id)
	if !ok {
		return fmt.Errorf("no certificate with id %d", id)
	}
	e.selected = &rec
	e.decoded = nil
	return nil
}

// Deselect clears the selection.
func (e *Explorer) Deselect() {
	e.selected = nil
	e.decoded = nil
}

// Selected returns the selected record.
func (e *Explorer) Selected() (CertificateRecord, bool) {
	if e.selected == nil {
		return CertificateRecord{}, false
	}
	return *e.selected, true
}

// Decoded returns the decoded view of the selected certificate, decoding it
// on first access. It reports false when nothing is selected.
func (e *Explorer) Decoded() (conformkit.DecodedCertificate, bool) {
	if e.selected == nil {
		return conformkit.DecodedCertificate{}, false
	}
	if e.decoded == nil {
		d := e.decode(e.selected.PEM)
		e.decoded = &d
	}
	return *e.decoded, true
}

// Summary renders the result count line.
func (e *Explorer) Summary() string {
	return fmt.Sprintf("Showing %d of %d certificates.", len(e.filtered), len(e.records))
}
