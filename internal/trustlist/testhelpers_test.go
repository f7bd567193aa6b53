package trustlist

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"
)

// newTestCert generates a self-signed certificate with the given subject
// and returns it with its trimmed PEM encoding.
func newTestCert(t *testing.T, subject pkix.Name) (*x509.Certificate, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      subject,
		NotBefore:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert, strings.TrimSpace(string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})))
}

// sampleBundle returns three TSA certificates as a bundle with comment
// headers and trailing whitespace, plus their PEM blocks.
func sampleBundle(t *testing.T) (string, []string) {
	t.Helper()
	_, a := newTestCert(t, pkix.Name{Country: []string{"US"}, Organization: []string{"Zeta Time"}, CommonName: "Zeta TSA"})
	_, b := newTestCert(t, pkix.Name{Organization: []string{"Alpha Trust"}, CommonName: "Alpha TSA 1"})
	_, c := newTestCert(t, pkix.Name{Organization: []string{"Alpha Trust"}, OrganizationalUnit: []string{"Timestamping"}})
	bundle := "# C2PA TSA trust list\n" + a + "\n\n# second\n" + b + "\n" + c + "\n  \n"
	return bundle, []string{a, b, c}
}
