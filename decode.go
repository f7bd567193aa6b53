package conformkit

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	ctx509 "github.com/google/certificate-transparency-go/x509"
)

var (
	oidCommonName             = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidOrganization           = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidSubjectKeyIdentifier   = asn1.ObjectIdentifier{2, 5, 29, 14}
	oidAuthorityKeyIdentifier = asn1.ObjectIdentifier{2, 5, 29, 35}
	oidBasicConstraints       = asn1.ObjectIdentifier{2, 5, 29, 19}
	oidKeyUsage               = asn1.ObjectIdentifier{2, 5, 29, 15}
	oidExtKeyUsage            = asn1.ObjectIdentifier{2, 5, 29, 37}
)

// ExtensionKind identifies the certificate extensions the decoder cares about.
type ExtensionKind int

const (
	ExtensionOther ExtensionKind = iota
	ExtensionSubjectKeyIdentifier
	ExtensionAuthorityKeyIdentifier
	ExtensionBasicConstraints
	ExtensionKeyUsage
	ExtensionExtKeyUsage
)

// Extension is one certificate extension tagged with its kind. Value holds
// the raw extnValue bytes.
type Extension struct {
	Kind     ExtensionKind
	OID      asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

func extensionKind(oid asn1.ObjectIdentifier) ExtensionKind {
	switch {
	case oid.Equal(oidSubjectKeyIdentifier):
		return ExtensionSubjectKeyIdentifier
	case oid.Equal(oidAuthorityKeyIdentifier):
		return ExtensionAuthorityKeyIdentifier
	case oid.Equal(oidBasicConstraints):
		return ExtensionBasicConstraints
	case oid.Equal(oidKeyUsage):
		return ExtensionKeyUsage
	case oid.Equal(oidExtKeyUsage):
		return ExtensionExtKeyUsage
	default:
		return ExtensionOther
	}
}

// FindExtension returns the first extension of the given kind.
func FindExtension(exts []Extension, kind ExtensionKind) (Extension, bool) {
	for _, ext := range exts {
		if ext.Kind == kind {
			return ext, true
		}
	}
	return Extension{}, false
}

// Fingerprints holds certificate digests over the DER encoding.
type Fingerprints struct {
	SHA1   string `json:"sha1"`
	SHA256 string `json:"sha256"`
}

// Validity is the certificate validity window.
type Validity struct {
	NotBefore time.Time `json:"notBefore"`
	NotAfter  time.Time `json:"notAfter"`
}

// DecodedCertificate is the human-readable view of one certificate. When
// decoding fails only Error is set.
type DecodedCertificate struct {
	Subject                string        `json:"subject,omitempty"`
	Issuer                 string        `json:"issuer,omitempty"`
	SerialNumber           string        `json:"serialNumber,omitempty"`
	SubjectKeyIdentifier   string        `json:"subjectKeyIdentifier,omitempty"`
	AuthorityKeyIdentifier string        `json:"authorityKeyIdentifier,omitempty"`
	Fingerprints           *Fingerprints `json:"fingerprints,omitempty"`
	Validity               *Validity     `json:"validity,omitempty"`
	MozillaRoot            bool          `json:"mozillaRoot,omitempty"`
	Error                  string        `json:"error,omitempty"`
}

// Failed reports whether the certificate could not be decoded.
func (d DecodedCertificate) Failed() bool {
	return d.Error != ""
}

// SubjectInfo is the list-level summary of a certificate subject.
type SubjectInfo struct {
	// DN is the subject distinguished name in certificate order.
	DN           string
	Organization string
	CommonName   string
}

// parsedCertificate is the library-independent subset of a parsed
// certificate that the decoder reads.
type parsedCertificate struct {
	raw        []byte
	rawSubject []byte
	rawIssuer  []byte
	serial     *big.Int
	notBefore  time.Time
	notAfter   time.Time
	extensions []Extension
}

// DecodeCertificate decodes a single-certificate PEM string. It never
// returns an error; failures are reported through DecodedCertificate.Error.
func DecodeCertificate(pemText string) DecodedCertificate {
	decoded, err := decodeCertificate(pemText)
	if err != nil {
		slog.Debug("decoding certificate", "error", err)
		return DecodedCertificate{Error: fmt.Sprintf("Failed to decode certificate: %v", err)}
	}
	return decoded
}

func decodeCertificate(pemText string) (DecodedCertificate, error) {
	pc, err := parsePEM(pemText)
	if err != nil {
		return DecodedCertificate{}, err
	}
	subject, err := parseRDNSequence(pc.rawSubject)
	if err != nil {
		return DecodedCertificate{}, fmt.Errorf("subject: %w", err)
	}
	issuer, err := parseRDNSequence(pc.rawIssuer)
	if err != nil {
		return DecodedCertificate{}, fmt.Errorf("issuer: %w", err)
	}

	return DecodedCertificate{
		Subject:                ReorderDN(formatRDNSequence(subject)),
		Issuer:                 ReorderDN(formatRDNSequence(issuer)),
		SerialNumber:           SerialHex(pc.serial),
		SubjectKeyIdentifier:   extensionHex(pc.extensions, ExtensionSubjectKeyIdentifier),
		AuthorityKeyIdentifier: extensionHex(pc.extensions, ExtensionAuthorityKeyIdentifier),
		Fingerprints: &Fingerprints{
			SHA1:   FingerprintSHA1(pc.raw),
			SHA256: FingerprintSHA256(pc.raw),
		},
		Validity: &Validity{
			NotBefore: pc.notBefore,
			NotAfter:  pc.notAfter,
		},
		MozillaRoot: IsMozillaRoot(pc.raw),
	}, nil
}

// ParseSubject extracts the subject summary used for certificate listings.
func ParseSubject(pemText string) (SubjectInfo, error) {
	pc, err := parsePEM(pemText)
	if err != nil {
		return SubjectInfo{}, err
	}
	seq, err := parseRDNSequence(pc.rawSubject)
	if err != nil {
		return SubjectInfo{}, fmt.Errorf("subject: %w", err)
	}
	return SubjectInfo{
		DN:           formatRDNSequence(seq),
		Organization: firstAttribute(seq, oidOrganization),
		CommonName:   firstAttribute(seq, oidCommonName),
	}, nil
}

func extensionHex(exts []Extension, kind ExtensionKind) string {
	ext, ok := FindExtension(exts, kind)
	if !ok {
		return NotAvailable
	}
	return hex.EncodeToString(ext.Value)
}

func parsePEM(pemText string) (*parsedCertificate, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, errors.New("no PEM block found in certificate data")
	}
	if block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("expected CERTIFICATE PEM block, got %q", block.Type)
	}
	return parseDER(block.Bytes)
}

// parseDER parses with crypto/x509 and falls back to the CT parser, which
// tolerates encoding quirks (negative serials, odd string types) that show up
// in older CA certificates.
func parseDER(der []byte) (*parsedCertificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err == nil {
		return fromStdlib(cert), nil
	}
	lenient, ctErr := ctx509.ParseCertificate(der)
	if lenient == nil || (ctErr != nil && ctx509.IsFatal(ctErr)) {
		return nil, fmt.Errorf("parsing certificate: %w", err)
	}
	slog.Debug("certificate accepted by lenient parser", "error", err, "non_fatal", ctErr)
	return fromCT(lenient), nil
}

func fromStdlib(cert *x509.Certificate) *parsedCertificate {
	exts := make([]Extension, 0, len(cert.Extensions))
	for _, e := range cert.Extensions {
		exts = append(exts, Extension{Kind: extensionKind(e.Id), OID: e.Id, Critical: e.Critical, Value: e.Value})
	}
	return &parsedCertificate{
		raw:        cert.Raw,
		rawSubject: cert.RawSubject,
		rawIssuer:  cert.RawIssuer,
		serial:     cert.SerialNumber,
		notBefore:  cert.NotBefore,
		notAfter:   cert.NotAfter,
		extensions: exts,
	}
}

func fromCT(cert *ctx509.Certificate) *parsedCertificate {
	exts := make([]Extension, 0, len(cert.Extensions))
	for _, e := range cert.Extensions {
		oid := asn1.ObjectIdentifier(e.Id)
		exts = append(exts, Extension{Kind: extensionKind(oid), OID: oid, Critical: e.Critical, Value: e.Value})
	}
	return &parsedCertificate{
		raw:        cert.Raw,
		rawSubject: cert.RawSubject,
		rawIssuer:  cert.RawIssuer,
		serial:     cert.SerialNumber,
		notBefore:  cert.NotBefore,
		notAfter:   cert.NotAfter,
		extensions: exts,
	}
}

func parseRDNSequence(raw []byte) (pkix.RDNSequence, error) {
	var seq pkix.RDNSequence
	rest, err := asn1.Unmarshal(raw, &seq)
	if err != nil {
		return nil, fmt.Errorf("parsing distinguished name: %w", err)
	}
	if len(rest) > 0 {
		return nil, errors.New("trailing data after distinguished name")
	}
	return seq, nil
}

// formatRDNSequence renders a DN in certificate order. pkix.RDNSequence.String
// reverses the sequence (RFC 4514), so each RDN is rendered on its own.
func formatRDNSequence(seq pkix.RDNSequence) string {
	parts := make([]string, 0, len(seq))
	for _, rdn := range seq {
		if len(rdn) == 0 {
			continue
		}
		parts = append(parts, pkix.RDNSequence{rdn}.String())
	}
	return strings.Join(parts, ", ")
}

// firstAttribute returns the first value of a DN attribute, or NotAvailable.
func firstAttribute(seq pkix.RDNSequence, oid asn1.ObjectIdentifier) string {
	for _, rdn := range seq {
		for _, atv := range rdn {
			if !atv.Type.Equal(oid) {
				continue
			}
			if s, ok := atv.Value.(string); ok && s != "" {
				return s
			}
		}
	}
	return NotAvailable
}

// ReorderDN moves CN, O and OU attributes to the front of a comma-separated
// DN, in that order, followed by the remaining attributes in their original
// relative order. Every attribute of the input is kept.
func ReorderDN(dn string) string {
	var cn, o, ou, rest []string
	for _, part := range splitDN(dn) {
		key, _, _ := strings.Cut(part, "=")
		switch strings.TrimSpace(key) {
		case "CN":
			cn = append(cn, part)
		case "O":
			o = append(o, part)
		case "OU":
			ou = append(ou, part)
		default:
			rest = append(rest, part)
		}
	}
	ordered := make([]string, 0, len(cn)+len(o)+len(ou)+len(rest))
	ordered = append(ordered, cn...)
	ordered = append(ordered, o...)
	ordered = append(ordered, ou...)
	ordered = append(ordered, rest...)
	return strings.Join(ordered, ", ")
}

// splitDN splits on commas that are not escaped with a backslash and trims
// each attribute. Empty attributes are dropped.
func splitDN(dn string) []string {
	var parts []string
	var sb strings.Builder
	escaped := false
	for _, r := range dn {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			sb.WriteRune(r)
			escaped = true
		case r == ',':
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	parts = append(parts, sb.String())

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
