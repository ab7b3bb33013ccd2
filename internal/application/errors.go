package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials or inactive account")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided or are invalid")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrPasswordTooShort   = errors.New("minimum password length is 6")
	ErrInvalidActivation  = errors.New("activation link is invalid")
	ErrInvalidResetToken  = errors.New("password reset link is invalid or has expired")
	ErrStorageDisabled    = errors.New("file storage is not configured")
)

// ValidationError carries field level messages for malformed input or a
// rejected password.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
