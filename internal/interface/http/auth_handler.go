package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/response"
	"github.com/oksasatya/go-account-service/pkg/validation"
)

const (
	activationSucceeded = "Thank you for your email confirmation. Now you can login your account."
	activationFailed    = "Activation link is invalid!"
)

// AuthHandler serves sign-up, activation, session and password endpoints.
type AuthHandler struct {
	Accounts *application.AccountService
	Auth     *application.AuthService
	Logger   *logrus.Logger
}

func NewAuthHandler(accounts *application.AccountService, auth *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Auth: auth, Logger: logger}
}

// signupRequest only checks the email shape at binding time. Name and
// password rules run in the service after the duplicate-email check.
type signupRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"first_name"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token     string `json:"token" binding:"required"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

type changePasswordRequest struct {
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// userSummary is the public shape of an account.
type userSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

func summarize(u *entity.User) userSummary {
	return userSummary{ID: u.ID, FirstName: u.FirstName, Email: u.Email}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Accounts.SignUp(c.Request.Context(), req.FirstName, req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": summarize(u)}, "Activation link sent to your email", nil)
}

// Activate answers in plain text since it is opened straight from an email.
func (h *AuthHandler) Activate(c *gin.Context) {
	if err := h.Accounts.ActivateUser(c.Request.Context(), c.Param("uid"), c.Param("token")); err != nil {
		c.String(http.StatusBadRequest, activationFailed)
		return
	}
	c.String(http.StatusOK, activationSucceeded)
}

func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Accounts.ResendActivation(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "If the account is awaiting activation, a new link has been sent", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		response.Error[any](c, http.StatusBadRequest, "Please provide both email and password", nil)
		return
	}
	tok, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": tok.Key}, "login successful", nil)
}

// Logout revokes every session of the caller.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.Revoke(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset link sent to your email", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.Password1, req.Password2); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password changed", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), req.Password1, req.Password2); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password changed", nil)
}
