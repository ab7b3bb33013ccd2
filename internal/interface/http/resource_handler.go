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

// ResourceHandler exposes a caller-owned record (profile, address) as a
// singleton resource: GET, POST, PUT and DELETE on one path.
type ResourceHandler[T any, F any, PT interface {
	*T
	entity.Dependent[F]
}] struct {
	Guard  *application.ResourceGuard[T, F, PT]
	Name   string
	Logger *logrus.Logger
}

func NewResourceHandler[T any, F any, PT interface {
	*T
	entity.Dependent[F]
}](guard *application.ResourceGuard[T, F, PT], name string, logger *logrus.Logger) *ResourceHandler[T, F, PT] {
	return &ResourceHandler[T, F, PT]{Guard: guard, Name: name, Logger: logger}
}

type (
	ProfileHandler = ResourceHandler[entity.Profile, entity.ProfileFields, *entity.Profile]
	AddressHandler = ResourceHandler[entity.ResidentialAddress, entity.AddressFields, *entity.ResidentialAddress]
)

func (h *ResourceHandler[T, F, PT]) Get(c *gin.Context) {
	rec, err := h.Guard.Get(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, rec, h.Name, nil)
}

func (h *ResourceHandler[T, F, PT]) Create(c *gin.Context) {
	var fields F
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rec, err := h.Guard.Create(c.Request.Context(), middleware.CurrentUser(c), fields)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, rec, h.Name+" created", nil)
}

func (h *ResourceHandler[T, F, PT]) Replace(c *gin.Context) {
	var fields F
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rec, err := h.Guard.Replace(c.Request.Context(), middleware.CurrentUser(c), fields)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, rec, h.Name+" updated", nil)
}

func (h *ResourceHandler[T, F, PT]) Delete(c *gin.Context) {
	if err := h.Guard.Delete(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, h.Name+" deleted", nil)
}
