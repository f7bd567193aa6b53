package conformkit

import (
	"crypto/x509"
	"errors"
	"fmt"
)

// DefaultPasswords returns the passwords tried by default when opening
// password-protected trust stores. Returns a fresh copy each call.
func DefaultPasswords() []string {
	return []string{"", "changeit", "password"}
}

// DeduplicatePasswords merges additional passwords with the defaults and removes
// duplicates while preserving order. Defaults come first.
func DeduplicatePasswords(extra []string) []string {
	all := append(DefaultPasswords(), extra...)
	seen := make(map[string]bool, len(all))
	result := make([]string, 0, len(all))
	for _, p := range all {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	return result
}

// ParseTrustStore reads certificates from a non-PEM trust store: DER,
// PKCS#7/P7B, JKS or a PKCS#12 trust store. Passwords are tried in order for
// the password-protected formats.
func ParseTrustStore(data []byte, passwords []string) ([]*x509.Certificate, error) {
	if len(data) == 0 {
		return nil, errors.New("empty trust store")
	}
	if certs, err := ParseCertificatesAny(data); err == nil {
		return certs, nil
	}
	if IsJKS(data) {
		for _, password := range passwords {
			if certs, err := DecodeJKSTrustStore(data, password); err == nil {
				return certs, nil
			}
		}
		return nil, errors.New("decoding JKS with any provided password")
	}
	for _, password := range passwords {
		if certs, err := DecodePKCS12TrustStore(data, password); err == nil {
			return certs, nil
		}
	}
	return nil, fmt.Errorf("unrecognized trust store format (%d bytes)", len(data))
}

// DefaultExportPassword protects exported p12 and jks stores when no
// password is given.
const DefaultExportPassword = "changeit"

// TrustStoreFormats lists the encodings accepted by EncodeTrustStore.
var TrustStoreFormats = []string{"pem", "p7b", "p12", "jks"}

// EncodeTrustStore encodes certificates in the named format: "pem" (a
// concatenated bundle), "p7b", "p12" or "jks". The password is ignored for
// pem and p7b.
func EncodeTrustStore(certs []*x509.Certificate, format, password string) ([]byte, error) {
	switch format {
	case "pem":
		if len(certs) == 0 {
			return nil, errors.New("no certificates to encode")
		}
		var out []byte
		for _, cert := range certs {
			out = append(out, CertToPEM(cert)...)
		}
		return out, nil
	case "p7b":
		return EncodePKCS7(certs)
	case "p12":
		return EncodePKCS12TrustStore(certs, password)
	case "jks":
		return EncodeJKSTrustStore(certs, password)
	default:
		return nil, fmt.Errorf("unsupported trust store format %q (use pem, p7b, p12 or jks)", format)
	}
}
