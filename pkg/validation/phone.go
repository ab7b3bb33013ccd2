package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// IsValidPhone reports whether s is a dialable number in international
// (+country code) form.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "+") {
		return false
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}
