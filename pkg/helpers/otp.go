package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// GenTokenKey returns a fresh 40 character hex session key.
func GenTokenKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
