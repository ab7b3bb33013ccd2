package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	"github.com/oksasatya/go-account-service/pkg/response"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorTable = []errorMapping{
	{application.ErrDuplicateEmail, http.StatusBadRequest, "User already exists"},
	{application.ErrPasswordMismatch, http.StatusBadRequest, "Passwords don't match"},
	{application.ErrPasswordTooShort, http.StatusBadRequest, "Minimum password length is 6"},
	{application.ErrInvalidResetToken, http.StatusBadRequest, "Password reset link is invalid or has expired"},
	{application.ErrInvalidActivation, http.StatusBadRequest, "Activation link is invalid!"},
	{application.ErrAlreadyExists, http.StatusBadRequest, "Record already exists"},
	{application.ErrInvalidCredentials, http.StatusNotFound, "Invalid Credentials or Inactive"},
	{application.ErrUnauthenticated, http.StatusUnauthorized, "Invalid token."},
	{application.ErrForbidden, http.StatusForbidden, "You do not have permission to perform this action."},
	{application.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{application.ErrNotFound, http.StatusNotFound, "Not found."},
	{application.ErrStorageDisabled, http.StatusServiceUnavailable, "File storage is not configured"},
}

// respondError maps application errors onto the response envelope. Anything
// unrecognised is logged and answered with a bare 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Fields)
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			response.Error[any](c, m.status, m.message, nil)
			return
		}
	}
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}
