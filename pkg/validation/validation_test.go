package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+254729446777"))
	assert.True(t, IsValidPhone("+14155552671"))
	assert.False(t, IsValidPhone("0729446777"))
	assert.False(t, IsValidPhone("+2547"))
	assert.False(t, IsValidPhone("not a phone"))
}

func TestToDetails_ValidationErrors(t *testing.T) {
	type payload struct {
		Email string  `json:"email" validate:"required,email"`
		Phone *string `json:"phone_number" validate:"omitempty,max=13,phone"`
		Zip   string  `json:"zip" validate:"max=5"`
	}
	bad := "12345"
	err := newValidator().Struct(payload{Email: "", Phone: &bad, Zip: "1234567"})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "is required", d["email"])
	assert.Equal(t, "must be a valid phone number", d["phone_number"])
	assert.Equal(t, "must be at most 5 characters long", d["zip"])
}

func TestToDetails_NilPhoneIsSkipped(t *testing.T) {
	type payload struct {
		Phone *string `json:"phone_number" validate:"omitempty,max=13,phone"`
	}
	assert.NoError(t, newValidator().Struct(payload{}))
}

func TestToDetails_JSONErrors(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}
	err := json.Unmarshal([]byte(`{"email":`), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"email":12}`), &v)
	assert.Equal(t, map[string]string{"email": "must be a string"}, ToDetails(err))

	assert.Nil(t, ToDetails(nil))
}

func TestCheckPassword(t *testing.T) {
	attrs := map[string]string{"first name": "dan2", "email address": "dan2@gmail.com"}
	assert.Empty(t, CheckPassword("mylenana", attrs))

	cases := map[string]struct {
		password string
		attrs    map[string]string
		want     string
	}{
		"short":                 {"hhhh", nil, "too short"},
		"numeric":               {"8237461923", nil, "entirely numeric"},
		"common":                {"Password1", nil, "too common"},
		"similar to name":       {"danielkakai", map[string]string{"first name": "daniel kakai"}, "too similar to the first name"},
		"similar to email part": {"danielkakai1", map[string]string{"email address": "danielkakai@gmail.com"}, "too similar to the email address"},
		"too long":              {strings.Repeat("x", 73), nil, "too long"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			problems := CheckPassword(tc.password, tc.attrs)
			require.NotEmpty(t, problems)
			assert.Contains(t, strings.Join(problems, " "), tc.want)
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, similarity("abc", "xyz"), 1e-9)
	// "abcd" vs "bcde": one block "bcd" -> 2*3/8
	assert.InDelta(t, 0.75, similarity("abcd", "bcde"), 1e-9)
}
