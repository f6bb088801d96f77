// Package secret maintains the application secret: a 128 character lowercase
// hexadecimal string that every process of a fleet must agree on.
//
// A valid secret_key_base setting is trusted as is. Otherwise the coordination
// store is the source of truth: the first process to find it empty seeds it and
// the others adopt the stored value. Processes that adopted a stored secret
// re-check the store every 30 seconds and re-seed it when the value was lost.
// When the store cannot be reached the process falls back to a secret of its
// own, so SecretKeyBase always returns a usable value.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
)

// StoreName is the name the secret is kept under in the coordination store.
const StoreName = "SECRET_TOKEN"

// Length is the number of hex characters in a secret.
const Length = 128

var pattern = regexp.MustCompile(`^[0-9a-f]{128}$`)

// Valid reports whether s is a well-formed secret.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Generate returns a fresh secret read from r, or from crypto/rand when r is nil.
func Generate(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, Length/2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
