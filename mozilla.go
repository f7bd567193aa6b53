package conformkit

import (
	"crypto/sha256"
	"encoding/pem"
	"sync"

	"github.com/breml/rootcerts/embedded"
)

// mozillaRoots indexes the embedded Mozilla root program by SHA-256 of the DER.
var mozillaRoots = sync.OnceValue(func() map[[sha256.Size]byte]struct{} {
	roots := make(map[[sha256.Size]byte]struct{})
	rest := []byte(embedded.MozillaCACertificatesPEM())
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		roots[sha256.Sum256(block.Bytes)] = struct{}{}
	}
	return roots
})

// IsMozillaRoot reports whether the DER-encoded certificate is itself one of
// the Mozilla root program certificates. This is a membership lookup only;
// no chain is built or verified.
func IsMozillaRoot(der []byte) bool {
	if len(der) == 0 {
		return false
	}
	_, ok := mozillaRoots()[sha256.Sum256(der)]
	return ok
}

// MozillaRootCount returns the number of embedded Mozilla root certificates.
func MozillaRootCount() int {
	return len(mozillaRoots())
}
