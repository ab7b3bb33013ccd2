package repository

import (
	"context"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
)

// DependentRepository is plain CRUD over a record keyed by its owning user.
type DependentRepository[T any] interface {
	GetByUser(ctx context.Context, userID string) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, rec *T) error
	DeleteByUser(ctx context.Context, userID string) error
}

type (
	ProfileRepository = DependentRepository[entity.Profile]
	AddressRepository = DependentRepository[entity.ResidentialAddress]
)
