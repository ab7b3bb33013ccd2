package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/response"
)

type UserHandler struct {
	Directory *application.UserDirectory
	Logger    *logrus.Logger
}

func NewUserHandler(directory *application.UserDirectory, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Directory: directory, Logger: logger}
}

// Me returns the authenticated account.
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, summarize(middleware.CurrentUser(c)), "user", nil)
}

// Search queries the user directory. Admin only.
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))

	hits, err := h.Directory.Search(c.Request.Context(), q, size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
