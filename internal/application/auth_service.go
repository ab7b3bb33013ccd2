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

const (
	minChangePasswordLength = 6
	maxPasswordBytes        = 72
)

// AuthService issues and resolves opaque session tokens.
type AuthService struct {
	Store  *CredentialStore
	Tokens repo.TokenRepository
	Logger *logrus.Logger
	genKey func() (string, error)
}

func NewAuthService(store *CredentialStore, tokens repo.TokenRepository, logger *logrus.Logger) *AuthService {
	return &AuthService{Store: store, Tokens: tokens, Logger: logger, genKey: helpers.GenTokenKey}
}

// Login returns the user's session token, creating it on first login.
// Unknown email, wrong password and inactive account all yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.SessionToken, error) {
	u, err := s.Store.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		helpers.BurnCompare(password)
		metrics.Add(metricLoginFailures, 1)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.Store.VerifyPassword(u, password) || !u.IsActive {
		metrics.Add(metricLoginFailures, 1)
		return nil, ErrInvalidCredentials
	}

	tok, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	metrics.Add(metricLogins, 1)
	return tok, nil
}

func (s *AuthService) issue(ctx context.Context, userID string) (*entity.SessionToken, error) {
	for attempt := 0; attempt < 2; attempt++ {
		key, err := s.genKey()
		if err != nil {
			return nil, fmt.Errorf("generate token key: %w", err)
		}
		tok, err := s.Tokens.GetOrCreate(ctx, userID, key)
		if errors.Is(err, repo.ErrDuplicate) {
			// key collided with another user's token
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		return tok, nil
	}
	return nil, errors.New("issue token: key collision")
}

// Authenticate resolves a bearer key to an active user.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*entity.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.Tokens.GetUserByKey(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	if !u.IsActive {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// Revoke deletes every session token of u.
func (s *AuthService) Revoke(ctx context.Context, u *entity.User) error {
	keys, err := s.Tokens.DeleteByUser(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "revoked": len(keys)}).Debug("sessions revoked")
	return nil
}

// ChangePassword replaces the credential of u and signs out all sessions.
// Rejected input never touches the stored credential.
func (s *AuthService) ChangePassword(ctx context.Context, u *entity.User, password1, password2 string) error {
	if password1 != password2 {
		return ErrPasswordMismatch
	}
	if len([]rune(password1)) < minChangePasswordLength {
		return ErrPasswordTooShort
	}
	if len(password1) > maxPasswordBytes {
		return NewValidationError("password1", "This password is too long.")
	}
	return s.Store.SetPassword(ctx, u, password1)
}
