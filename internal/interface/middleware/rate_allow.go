package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses rate limits for loopback and RFC 1918 callers,
// e.g. in-cluster health checks.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowStaff bypasses rate limits for administrators. Run after Auth.
func AllowStaff() AllowFunc {
	return func(c *gin.Context) bool {
		u := CurrentUser(c)
		return u != nil && u.IsStaff()
	}
}
