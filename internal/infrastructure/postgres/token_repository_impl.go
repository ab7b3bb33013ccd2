package postgres

import (
	"context"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate relies on UNIQUE(user_id): a concurrent login either inserts the
// row or lands on the conflict branch, whose no-op update returns the stored key.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID, candidateKey string) (*entity.SessionToken, error) {
	t := &entity.SessionToken{}
	row := r.db.QueryRow(ctx, `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key, user_id, created_at
	`, candidateKey, userID)
	if err := row.Scan(&t.Key, &t.UserID, &t.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *TokenRepository) GetUserByKey(ctx context.Context, key string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT u.id, u.email, u.first_name, u.password_hash, u.is_active, u.is_admin, u.created_at, u.updated_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1
	`, key)
	return scanUser(row)
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM auth_tokens WHERE user_id = $1 RETURNING key`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
