package conformkit

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
)

// jksMagic is the leading 0xFEEDFEED of a Java KeyStore.
var jksMagic = []byte{0xFE, 0xED, 0xFE, 0xED}

// IsJKS reports whether data starts with the JKS magic bytes.
func IsJKS(data []byte) bool {
	return bytes.HasPrefix(data, jksMagic)
}

// DecodeJKSTrustStore loads a Java KeyStore and returns the certificates of
// its trusted certificate entries. Entries that fail to parse are skipped; an
// error is returned only if the store cannot be loaded or yields nothing.
func DecodeJKSTrustStore(data []byte, password string) ([]*x509.Certificate, error) {
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return nil, fmt.Errorf("loading JKS: %w", err)
	}

	var certs []*x509.Certificate
	for _, alias := range ks.Aliases() {
		if !ks.IsTrustedCertificateEntry(alias) {
			continue
		}
		entry, err := ks.GetTrustedCertificateEntry(alias)
		if err != nil {
			continue
		}
		cert, err := x509.ParseCertificate(entry.Certificate.Content)
		if err != nil {
			continue
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, errors.New("JKS contains no trusted certificate entries")
	}
	return certs, nil
}

// EncodeJKSTrustStore creates a Java KeyStore with one trusted certificate
// entry per certificate, aliased "tsa-0", "tsa-1", ... in list order.
func EncodeJKSTrustStore(certs []*x509.Certificate, password string) ([]byte, error) {
	if len(certs) == 0 {
		return nil, errors.New("no certificates to encode")
	}

	ks := keystore.New()
	now := time.Now()
	for i, cert := range certs {
		alias := fmt.Sprintf("tsa-%d", i)
		err := ks.SetTrustedCertificateEntry(alias, keystore.TrustedCertificateEntry{
			CreationTime: now,
			Certificate: keystore.Certificate{
				Type:    "X.509",
				Content: cert.Raw,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("setting JKS entry %s: %w", alias, err)
		}
	}

	var buf bytes.Buffer
	if err := ks.Store(&buf, []byte(password)); err != nil {
		return nil, fmt.Errorf("storing JKS: %w", err)
	}
	return buf.Bytes(), nil
}
