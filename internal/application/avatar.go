package application

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore persists uploaded files and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// GCSStore is the Google Cloud Storage ObjectStore.
type GCSStore struct {
	Client *storage.Client
	Bucket string
}

func (s GCSStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}

// AvatarService stores profile pictures. The profile must exist first.
type AvatarService struct {
	Profiles *ProfileGuard
	Store    ObjectStore
}

func NewAvatarService(profiles *ProfileGuard, store ObjectStore) *AvatarService {
	return &AvatarService{Profiles: profiles, Store: store}
}

func (s *AvatarService) UploadAvatar(ctx context.Context, u *entity.User, contentType string, r io.Reader) (*entity.Profile, error) {
	if s.Store == nil {
		return nil, ErrStorageDisabled
	}
	ext, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, NewValidationError("file", "must be a jpeg, png, gif or webp image")
	}
	p, err := s.Profiles.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	objectPath := path.Join("avatars", u.ID, uuid.NewString()+ext)
	url, err := s.Store.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	p.AvatarURL = url
	p.SetOwner(u.ID)
	if err := s.Profiles.Repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("save avatar url: %w", err)
	}
	return p, nil
}
