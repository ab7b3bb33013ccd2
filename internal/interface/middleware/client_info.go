package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/application"
)

// ClientInfo copies the caller's IP and user agent into the request context
// so account emails can mention where a request came from. Run after RealIP.
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := application.ClientInfo{IP: ipFromCtx(c), UserAgent: c.Request.UserAgent()}
		c.Request = c.Request.WithContext(application.WithClientInfo(c.Request.Context(), info))
		c.Next()
	}
}
