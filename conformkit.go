// Package conformkit provides trust-list certificate handling for the
// conformance catalog: PEM bundle splitting, certificate decoding into flat
// descriptors, fingerprints, and trust-store encodings (PKCS#7, PKCS#12, JKS).
package conformkit

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	pemBeginCertificate = "-----BEGIN CERTIFICATE-----"
	pemEndCertificate   = "-----END CERTIFICATE-----"
)

// NotAvailable is the placeholder for absent certificate and product fields.
const NotAvailable = "N/A"

// SplitPEMBundle splits a concatenated PEM bundle into self-contained
// single-certificate PEM strings, in input order.
//
// Segments without a begin delimiter are skipped rather than reported, so a
// corrupt entry drops out of the result without hiding the rest of the
// bundle. The body is not base64-validated here; that happens on decode.
func SplitPEMBundle(text string) []string {
	var out []string
	for _, segment := range strings.Split(text, pemEndCertificate) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parts := strings.Split(segment, pemBeginCertificate)
		if len(parts) < 2 {
			continue
		}
		body := strings.TrimSpace(parts[1])
		out = append(out, pemBeginCertificate+"\n"+body+"\n"+pemEndCertificate)
	}
	return out
}

// ParsePEMCertificates parses all certificates from a PEM bundle.
func ParsePEMCertificates(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := pemData
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New("no certificates found in PEM data")
	}
	return certs, nil
}

// ParseCertificatesAny parses certificates from raw bytes, trying DER first,
// then PEM, then a certs-only PKCS#7/P7B bundle.
func ParseCertificatesAny(data []byte) ([]*x509.Certificate, error) {
	cert, derErr := x509.ParseCertificate(data)
	if derErr == nil {
		return []*x509.Certificate{cert}, nil
	}
	certs, pemErr := ParsePEMCertificates(data)
	if pemErr == nil {
		return certs, nil
	}
	certs, p7Err := DecodePKCS7(data)
	if p7Err == nil {
		return certs, nil
	}
	return nil, fmt.Errorf("not DER (%v) or PEM (%v) or PKCS#7 (%v)", derErr, pemErr, p7Err)
}

// CertToPEM encodes a certificate as PEM.
func CertToPEM(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	}))
}

// IsPEM returns true if the data appears to contain PEM-encoded content.
func IsPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN"))
}

// FingerprintSHA256 returns the SHA-256 digest of DER bytes as lowercase hex.
func FingerprintSHA256(der []byte) string {
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// FingerprintSHA1 returns the SHA-1 digest of DER bytes as lowercase hex.
// SHA-1 thumbprints are still what most trust-list tooling displays.
func FingerprintSHA1(der []byte) string {
	sum := sha1.Sum(der)
	return hex.EncodeToString(sum[:])
}

// ColonHex formats a byte slice as colon-separated lowercase hex.
func ColonHex(b []byte) string {
	h := hex.EncodeToString(b)
	parts := make([]string, 0, len(h)/2)
	for i := 0; i < len(h); i += 2 {
		end := min(i+2, len(h))
		parts = append(parts, h[i:end])
	}
	return strings.Join(parts, ":")
}

// SerialHex returns the serial number as lowercase hex of its big-endian
// bytes. Zero is "00"; negative serials (only reachable through the lenient
// parser) are prefixed with "-".
func SerialHex(serial *big.Int) string {
	if serial == nil {
		return ""
	}
	b := serial.Bytes()
	if len(b) == 0 {
		return "00"
	}
	h := hex.EncodeToString(b)
	if serial.Sign() < 0 {
		return "-" + h
	}
	return h
}
