package postgres

import (
	"context"
	"time"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

type AddressRepository struct {
	db DBTX
}

func NewAddressRepository(db DBTX) *AddressRepository {
	return &AddressRepository{db: db}
}

// GetByUser returns the oldest address of the user.
func (r *AddressRepository) GetByUser(ctx context.Context, userID string) (*entity.ResidentialAddress, error) {
	a := &entity.ResidentialAddress{}
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, country, city, state, zip, created_at, updated_at
		FROM residential_addresses
		WHERE user_id = $1
		ORDER BY created_at
		LIMIT 1
	`, userID)
	if err := row.Scan(&a.ID, &a.UserID, &a.Country, &a.City, &a.State, &a.Zip, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *AddressRepository) Create(ctx context.Context, a *entity.ResidentialAddress) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO residential_addresses (user_id, country, city, state, zip)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Country, a.City, a.State, a.Zip)
	return mapErr(row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt))
}

// Update matches on id and user_id so a record can only be written by its owner.
func (r *AddressRepository) Update(ctx context.Context, a *entity.ResidentialAddress) error {
	a.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE residential_addresses
		SET country = $1, city = $2, state = $3, zip = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, a.Country, a.City, a.State, a.Zip, a.UpdatedAt, a.ID, a.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AddressRepository) DeleteByUser(ctx context.Context, userID string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM residential_addresses WHERE user_id = $1`, userID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AddressRepository = (*AddressRepository)(nil)
