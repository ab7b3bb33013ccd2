package repository

import (
	"context"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
)

// TokenRepository stores the user -> session token relation (one-to-one).
type TokenRepository interface {
	// GetOrCreate atomically returns the user's existing token or stores
	// candidateKey as the new one.
	GetOrCreate(ctx context.Context, userID, candidateKey string) (*entity.SessionToken, error)
	GetUserByKey(ctx context.Context, key string) (*entity.User, error)
	// DeleteByUser removes every token of the user and returns the deleted keys.
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}
