package utils

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashDisplayName returns a keyed BLAKE2b-256 digest of a resident's
// display name. The key is a server-side pepper so the stored digest
// cannot be reversed with a dictionary of common names. Names are
// trimmed and lower-cased first so cosmetic edits do not change the hash.
func HashDisplayName(pepper []byte, name string) (string, error) {
	if len(pepper) > blake2b.Size {
		pepper = pepper[:blake2b.Size]
	}
	h, err := blake2b.New256(pepper)
	if err != nil {
		return "", err
	}
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return hex.EncodeToString(h.Sum(nil)), nil
}
