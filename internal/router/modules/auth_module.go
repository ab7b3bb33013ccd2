package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/container"
	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// AuthModule mounts sign-up, activation, login and password routes.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Authn   middleware.Authenticator
}

func NewAuthModule(h *handlers.AuthHandler, authn middleware.Authenticator) *AuthModule {
	return &AuthModule{Handler: h, Authn: authn}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	// Activation links are throttled per IP across all uid/token pairs.
	activateLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	signupLimiter := middleware.RateLimit(rdb, 20, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	mailLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.SignUp)
	rg.GET("/activate/:uid/:token", activateLimiter, m.Handler.Activate)
	rg.POST("/activate/resend", mailLimiter, m.Handler.ResendActivation)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/forgot-password", mailLimiter, m.Handler.ForgotPassword)
	rg.POST("/reset-password", resetLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Authn))
	auth.Use(middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/change-password", m.Handler.ChangePassword)
	}
}
