// Package ids generates opaque record identifiers.
package ids

import (
	"crypto/rand"
	"encoding/hex"
)

// New returns a 24-character random hex ID. IDs carry no ordering or
// embedded timestamp; sortable fields live on the records themselves.
func New() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
