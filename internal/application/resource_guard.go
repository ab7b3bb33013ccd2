package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
)

// ResourceGuard binds every operation on a dependent record to the
// authenticated user. The owner is always taken from the caller, never from
// the submitted fields.
type ResourceGuard[T any, F any, PT interface {
	*T
	entity.Dependent[F]
}] struct {
	Repo repo.DependentRepository[T]
}

func NewResourceGuard[T any, F any, PT interface {
	*T
	entity.Dependent[F]
}](r repo.DependentRepository[T]) *ResourceGuard[T, F, PT] {
	return &ResourceGuard[T, F, PT]{Repo: r}
}

type (
	ProfileGuard = ResourceGuard[entity.Profile, entity.ProfileFields, *entity.Profile]
	AddressGuard = ResourceGuard[entity.ResidentialAddress, entity.AddressFields, *entity.ResidentialAddress]
)

func (g *ResourceGuard[T, F, PT]) Get(ctx context.Context, u *entity.User) (*T, error) {
	rec, err := g.Repo.GetByUser(ctx, u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	return rec, nil
}

// Create requires every field and fails with ErrAlreadyExists when the
// caller already owns a record.
func (g *ResourceGuard[T, F, PT]) Create(ctx context.Context, u *entity.User, fields F) (*T, error) {
	if _, err := g.Get(ctx, u); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec := new(T)
	PT(rec).Apply(fields)
	PT(rec).SetOwner(u.ID)
	if err := requireAll(PT(rec)); err != nil {
		return nil, err
	}
	if err := g.Repo.Create(ctx, rec); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

// Replace applies the provided fields onto the caller's record; omitted
// fields keep their value.
func (g *ResourceGuard[T, F, PT]) Replace(ctx context.Context, u *entity.User, fields F) (*T, error) {
	rec, err := g.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	PT(rec).Apply(fields)
	PT(rec).SetOwner(u.ID)
	if err := requireAll(PT(rec)); err != nil {
		return nil, err
	}
	if err := g.Repo.Update(ctx, rec); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

func (g *ResourceGuard[T, F, PT]) Delete(ctx context.Context, u *entity.User) error {
	err := g.Repo.DeleteByUser(ctx, u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func requireAll(rec interface{ Missing() []string }) error {
	missing := rec.Missing()
	if len(missing) == 0 {
		return nil
	}
	verr := &ValidationError{}
	for _, f := range missing {
		verr.Add(f, "This field is required.")
	}
	return verr
}
