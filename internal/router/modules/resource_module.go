package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/container"
	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// ResourceModule mounts /profile, /profile/avatar and /address. Every route
// acts on the caller's own record.
type ResourceModule struct {
	Profile *handlers.ProfileHandler
	Address *handlers.AddressHandler
	Avatar  *handlers.AvatarHandler
	Authn   middleware.Authenticator
}

func NewResourceModule(p *handlers.ProfileHandler, a *handlers.AddressHandler, av *handlers.AvatarHandler, authn middleware.Authenticator) *ResourceModule {
	return &ResourceModule{Profile: p, Address: a, Avatar: av, Authn: authn}
}

func (m *ResourceModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Authn))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Profile.Get)
		auth.POST("/profile", m.Profile.Create)
		auth.PUT("/profile", m.Profile.Replace)
		auth.DELETE("/profile", m.Profile.Delete)
		auth.PUT("/profile/avatar", m.Avatar.Upload)

		auth.GET("/address", m.Address.Get)
		auth.POST("/address", m.Address.Create)
		auth.PUT("/address", m.Address.Replace)
		auth.DELETE("/address", m.Address.Delete)
	}
}
