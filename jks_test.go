package conformkit

import (
	"crypto/x509"
	"testing"
)

// certList builds a certificate slice from test certs.
func certList(certs ...testCert) []*x509.Certificate {
	out := make([]*x509.Certificate, 0, len(certs))
	for _, c := range certs {
		out = append(out, c.cert)
	}
	return out
}

func TestJKSTrustStore_RoundTrip(t *testing.T) {
	// WHY: Java validators consume the trust list as JKS trusted entries;
	// every certificate must survive encode/decode.
	t.Parallel()
	ca := newTestCA(t)
	leaf := newTestLeaf(t, ca, "tsa.example.com", 7, false)

	data, err := EncodeJKSTrustStore(certList(ca, leaf), "changeit")
	if err != nil {
		t.Fatal(err)
	}
	if !IsJKS(data) {
		t.Fatal("encoded store does not start with JKS magic")
	}
	certs, err := DecodeJKSTrustStore(data, "changeit")
	if err != nil {
		t.Fatal(err)
	}
	if len(certs) != 2 {
		t.Fatalf("got %d certs, want 2", len(certs))
	}
	found := map[string]bool{}
	for _, c := range certs {
		found[c.Subject.CommonName] = true
	}
	if !found["Test TSA Root"] || !found["tsa.example.com"] {
		t.Errorf("missing certificates after round trip: %v", found)
	}
}

func TestDecodeJKSTrustStore_Errors(t *testing.T) {
	// WHY: Wrong passwords and non-JKS data must be reported as errors.
	t.Parallel()
	ca := newTestCA(t)
	data, err := EncodeJKSTrustStore(certList(ca), "changeit")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeJKSTrustStore(data, "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := DecodeJKSTrustStore([]byte{0xFE, 0xED}, "changeit"); err == nil {
		t.Error("expected error for truncated data")
	}
	if _, err := EncodeJKSTrustStore(nil, "changeit"); err == nil {
		t.Error("expected error for empty certificate list")
	}
}
