package postgres

import (
	"context"
	"time"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

const userColumns = `id, email, first_name, password_hash, is_active, is_admin, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, first_name, password_hash, is_active, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Email, u.FirstName, u.Password, u.IsActive, u.IsAdmin)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, password_hash = $3, is_active = $4, is_admin = $5, updated_at = $6
		WHERE id = $7
	`, u.Email, u.FirstName, u.Password, u.IsActive, u.IsAdmin, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Activate(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceCredential runs the token delete and the hash update as a single
// statement so neither can land without the other.
func (r *UserRepository) ReplaceCredential(ctx context.Context, id, hash string) error {
	res, err := r.db.Exec(ctx, `
		WITH revoked AS (DELETE FROM auth_tokens WHERE user_id = $1)
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id, hash)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.Password, &u.IsActive, &u.IsAdmin,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
