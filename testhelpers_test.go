package conformkit

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

// testCert holds a generated certificate in every encoding the tests need.
type testCert struct {
	cert *x509.Certificate
	der  []byte
	pem  string
	key  *ecdsa.PrivateKey
}

// testCAKeyID is the explicit Subject Key Identifier of newTestCA.
var testCAKeyID = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

// newTestCA generates a self-signed TSA root with an explicit SKI.
func newTestCA(t *testing.T) testCert {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Country:            []string{"US"},
			Organization:       []string{"Test Trust Services"},
			OrganizationalUnit: []string{"Timestamping"},
			CommonName:         "Test TSA Root",
		},
		NotBefore:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:              time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          testCAKeyID,
	}
	return createTestCert(t, tmpl, nil)
}

// newTestLeaf generates a timestamping leaf signed by ca. The leaf carries
// no SKI of its own unless withSKI is set; its AKI comes from the CA.
func newTestLeaf(t *testing.T, ca testCert, cn string, serial int64, withSKI bool) testCert {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject: pkix.Name{
			Country:      []string{"DE"},
			Organization: []string{"Leaf Org"},
			CommonName:   cn,
		},
		NotBefore:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:    time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
	}
	if withSKI {
		tmpl.SubjectKeyId = []byte{0xaa, 0xbb, 0xcc, 0xdd}
	}
	return createTestCert(t, tmpl, &ca)
}

// newBareCert generates a self-signed non-CA certificate with neither SKI nor
// AKI, and a subject holding only the given name.
func newBareCert(t *testing.T, subject pkix.Name) testCert {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(4242),
		Subject:      subject,
		NotBefore:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	return createTestCert(t, tmpl, nil)
}

func createTestCert(t *testing.T, tmpl *x509.Certificate, parent *testCert) testCert {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	parentCert, parentKey := tmpl, key
	if parent != nil {
		parentCert, parentKey = parent.cert, parent.key
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parentCert, &key.PublicKey, parentKey)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	pemText := strings.TrimSpace(string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})))
	return testCert{cert: cert, der: der, pem: pemText, key: key}
}

// firstMozillaRootDER returns the DER of the first embedded Mozilla root.
func firstMozillaRootDER(t *testing.T, bundle string) []byte {
	t.Helper()
	block, _ := pem.Decode([]byte(bundle))
	if block == nil {
		t.Fatal("no PEM block in embedded Mozilla bundle")
	}
	return block.Bytes
}
