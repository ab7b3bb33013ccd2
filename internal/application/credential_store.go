package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

const maxNameLength = 256

// CredentialStore owns user records and their hashed credentials.
type CredentialStore struct {
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewCredentialStore(users repo.UserRepository, logger *logrus.Logger) *CredentialStore {
	return &CredentialStore{Users: users, Logger: logger}
}

// CreateUser stores a new inactive, non-admin user.
func (s *CredentialStore) CreateUser(ctx context.Context, name, email, rawPassword string) (*entity.User, error) {
	return s.create(ctx, &entity.User{FirstName: strings.TrimSpace(name), Email: entity.NormalizeEmail(email)}, rawPassword)
}

// CreateSuperuser stores an active administrator named "admin".
func (s *CredentialStore) CreateSuperuser(ctx context.Context, email, rawPassword string) (*entity.User, error) {
	u := &entity.User{FirstName: "admin", Email: entity.NormalizeEmail(email), IsActive: true, IsAdmin: true}
	return s.create(ctx, u, rawPassword)
}

func (s *CredentialStore) create(ctx context.Context, u *entity.User, rawPassword string) (*entity.User, error) {
	verr := &ValidationError{}
	if u.Email == "" {
		verr.Add("email", "Users must have an email address")
	}
	if u.FirstName == "" {
		verr.Add("first_name", "This field is required.")
	} else if len([]rune(u.FirstName)) > maxNameLength {
		verr.Add("first_name", "must be at most 256 characters long")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if _, err := s.Users.GetByEmail(ctx, u.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := helpers.HashPassword(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	return userOrNotFound(u, err)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	return userOrNotFound(u, err)
}

func userOrNotFound(u *entity.User, err error) (*entity.User, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *CredentialStore) VerifyPassword(u *entity.User, raw string) bool {
	return helpers.CompareHashAndPassword(u.Password, raw)
}

// SetPassword re-hashes raw, persists it and signs out every session of u
// in the same write. u is updated in place.
func (s *CredentialStore) SetPassword(ctx context.Context, u *entity.User, raw string) error {
	hash, err := helpers.HashPassword(raw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.ReplaceCredential(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("replace credential: %w", err)
	}
	u.Password = hash
	return nil
}

// Activate flips is_active on u without rewriting the rest of the row.
func (s *CredentialStore) Activate(ctx context.Context, u *entity.User) error {
	if err := s.Users.Activate(ctx, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("activate user: %w", err)
	}
	u.IsActive = true
	return nil
}

func (s *CredentialStore) Save(ctx context.Context, u *entity.User) error {
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
