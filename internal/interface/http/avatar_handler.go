package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/response"
)

const maxAvatarBytes = 5 << 20

type AvatarHandler struct {
	Avatars *application.AvatarService
	Logger  *logrus.Logger
}

func NewAvatarHandler(avatars *application.AvatarService, logger *logrus.Logger) *AvatarHandler {
	return &AvatarHandler{Avatars: avatars, Logger: logger}
}

// Upload accepts a multipart "file" and stores it as the caller's avatar.
func (h *AvatarHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	contentType, body, err := sniff(f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	p, err := h.Avatars.UploadAvatar(c.Request.Context(), middleware.CurrentUser(c), contentType, body)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "avatar updated", nil)
}

// sniff detects the content type from the file itself, not the client's claim.
func sniff(f multipart.File) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), f), nil
}
