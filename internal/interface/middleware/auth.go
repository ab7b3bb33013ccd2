package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// Authenticator resolves a session key to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*entity.User, error)
}

// Auth reads "Authorization: Token <key>" (or Bearer) and loads the active
// user into the Gin context.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := tokenFromHeader(c.GetHeader("Authorization"))
		if key == "" {
			response.Abort(c, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
			return
		}
		u, err := authn.Authenticate(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, application.ErrUnauthenticated) {
				response.Abort(c, http.StatusUnauthorized, "Invalid token.", nil)
				return
			}
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsStaff() {
			response.Abort(c, http.StatusForbidden, "You do not have permission to perform this action.", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

func tokenFromHeader(h string) string {
	scheme, key, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(key)
}
