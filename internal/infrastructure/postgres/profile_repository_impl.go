package postgres

import (
	"context"
	"time"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*entity.Profile, error) {
	p := &entity.Profile{}
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, middle_name, last_name, dob, nationality, phone_number, avatar_url, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.MiddleName, &p.LastName, &p.DOB.Time, &p.Nationality,
		&p.PhoneNumber, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, middle_name, last_name, dob, nationality, phone_number, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.MiddleName, p.LastName, p.DOB.Time, p.Nationality, p.PhoneNumber, p.AvatarURL)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET middle_name = $1, last_name = $2, dob = $3, nationality = $4, phone_number = $5, avatar_url = $6, updated_at = $7
		WHERE user_id = $8
	`, p.MiddleName, p.LastName, p.DOB.Time, p.Nationality, p.PhoneNumber, p.AvatarURL, p.UpdatedAt, p.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) DeleteByUser(ctx context.Context, userID string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
