package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUID_RoundTrip(t *testing.T) {
	id := uuid.NewString()
	enc := EncodeUID(id)
	assert.NotContains(t, enc, "=")

	got, err := DecodeUID(enc)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = DecodeUID(enc + "==")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestDecodeUID_Invalid(t *testing.T) {
	for _, in := range []string{"", "%%%", EncodeUID("not-a-uuid")} {
		_, err := DecodeUID(in)
		assert.ErrorIs(t, err, ErrInvalidUID, in)
	}
}
