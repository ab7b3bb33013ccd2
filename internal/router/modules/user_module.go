package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/container"
	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// UserModule mounts the account read routes.
// GET /users returns the caller; GET /users/search is admin only.
type UserModule struct {
	Handler *handlers.UserHandler
	Authn   middleware.Authenticator
}

func NewUserModule(h *handlers.UserHandler, authn middleware.Authenticator) *UserModule {
	return &UserModule{Handler: h, Authn: authn}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.Authn))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), middleware.AllowStaff()))
	{
		auth.GET("", m.Handler.Me)
		auth.GET("/search", middleware.RequireAdmin(), m.Handler.Search)
	}
}
