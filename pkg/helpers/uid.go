package helpers

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidUID = errors.New("invalid encoded uid")

// EncodeUID renders a user id safely for use in a URL path segment.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeUID reverses EncodeUID. Padded input is accepted.
func DecodeUID(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return "", ErrInvalidUID
	}
	id, err := uuid.Parse(string(b))
	if err != nil {
		return "", ErrInvalidUID
	}
	return id.String(), nil
}
