package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var userCols = []string{"id", "email", "first_name", "password_hash", "is_active", "is_admin", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("dan2@gmail.com", "dan2", "hash", false, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	u := &entity.User{Email: "dan2@gmail.com", FirstName: "dan2", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("dan2@gmail.com", "dan2", "hash", false, false).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &entity.User{Email: "dan2@gmail.com", FirstName: "dan2", Password: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("dann@gail.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u-1", "dann@gail.com", "dann", "hash", true, false, now, now))

	u, err := repo.GetByEmail(context.Background(), "dann@gail.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("a@b.c", "a", "hash", true, false, pgxmock.AnyArg(), "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users`).
		WithArgs("a@b.c", "a", "hash", true, false, pgxmock.AnyArg(), "u-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.Update(context.Background(), &entity.User{ID: "u-1", Email: "a@b.c", FirstName: "a", Password: "hash", IsActive: true}))
	err := repo.Update(context.Background(), &entity.User{ID: "u-2", Email: "a@b.c", FirstName: "a", Password: "hash", IsActive: true})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Activate_TouchesOnlyFlag(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET is_active = TRUE, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs("u-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.Activate(context.Background(), "u-1"))
	assert.ErrorIs(t, repo.Activate(context.Background(), "u-2"), repository.ErrNotFound)
}

func TestUserRepository_ReplaceCredential_RevokesInSameStatement(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`WITH revoked AS \(DELETE FROM auth_tokens WHERE user_id = \$1\)\s+UPDATE users SET password_hash = \$2`).
		WithArgs("u-1", "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`WITH revoked AS`).
		WithArgs("u-2", "new-hash").
		WillReturnError(errors.New("conn reset"))

	require.NoError(t, repo.ReplaceCredential(context.Background(), "u-1", "new-hash"))
	assert.EqualError(t, repo.ReplaceCredential(context.Background(), "u-2", "new-hash"), "conn reset")
}

func TestTokenRepository_GetOrCreate_ReturnsStoredKey(t *testing.T) {
	mock := newMock(t)
	repo := NewTokenRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO auth_tokens (.+) ON CONFLICT \(user_id\)`).
		WithArgs("candidate", "u-1").
		WillReturnRows(pgxmock.NewRows([]string{"key", "user_id", "created_at"}).AddRow("existing", "u-1", now))

	tok, err := repo.GetOrCreate(context.Background(), "u-1", "candidate")
	require.NoError(t, err)
	assert.Equal(t, "existing", tok.Key)
	assert.Equal(t, "u-1", tok.UserID)
}

func TestTokenRepository_GetUserByKey(t *testing.T) {
	mock := newMock(t)
	repo := NewTokenRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM auth_tokens t\s+JOIN users u`).
		WithArgs("k1").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u-1", "a@b.c", "a", "hash", true, true, now, now))
	mock.ExpectQuery(`FROM auth_tokens t\s+JOIN users u`).
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows(userCols))

	u, err := repo.GetUserByKey(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, u.IsStaff())

	_, err = repo.GetUserByKey(context.Background(), "gone")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepository_DeleteByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewTokenRepository(mock)

	mock.ExpectQuery(`DELETE FROM auth_tokens WHERE user_id = \$1 RETURNING key`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"key"}).AddRow("k1"))

	keys, err := repo.DeleteByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)
}

func TestTokenRepository_DeleteByUser_DBError(t *testing.T) {
	mock := newMock(t)
	repo := NewTokenRepository(mock)

	mock.ExpectQuery(`DELETE FROM auth_tokens`).
		WithArgs("u-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.DeleteByUser(context.Background(), "u-1")
	assert.EqualError(t, err, "db down")
}

func TestProfileRepository_CRUD(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)
	now := time.Now()
	dob := entity.NewDate(2022, time.November, 11)

	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs("u-1", "names", "last names", dob.Time, "kenya", "+254729446777", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("p-1", now, now))
	mock.ExpectQuery(`FROM profiles\s+WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "middle_name", "last_name", "dob", "nationality", "phone_number", "avatar_url", "created_at", "updated_at"}).
			AddRow("p-1", "u-1", "names", "last names", dob.Time, "kenya", "+254729446777", "", now, now))
	mock.ExpectExec(`UPDATE profiles`).
		WithArgs("names", "other", dob.Time, "kenya", "+254729446777", "", pgxmock.AnyArg(), "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM profiles WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM profiles WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ctx := context.Background()
	p := &entity.Profile{UserID: "u-1", MiddleName: "names", LastName: "last names", DOB: dob, Nationality: "kenya", PhoneNumber: "+254729446777"}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, "p-1", p.ID)

	got, err := repo.GetByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "2022-11-11", got.DOB.String())

	got.LastName = "other"
	require.NoError(t, repo.Update(ctx, got))
	require.NoError(t, repo.DeleteByUser(ctx, "u-1"))
	assert.ErrorIs(t, repo.DeleteByUser(ctx, "u-1"), repository.ErrNotFound)
}

func TestAddressRepository_UpdateIsScopedToOwner(t *testing.T) {
	mock := newMock(t)
	repo := NewAddressRepository(mock)

	mock.ExpectExec(`UPDATE residential_addresses`).
		WithArgs("kenya", "kanairo", "kanairo", "99988", pgxmock.AnyArg(), "a-1", "u-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &entity.ResidentialAddress{ID: "a-1", UserID: "u-2", Country: "kenya", City: "kanairo", State: "kanairo", Zip: "99988"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddressRepository_GetByUser_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewAddressRepository(mock)

	mock.ExpectQuery(`FROM residential_addresses`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "country", "city", "state", "zip", "created_at", "updated_at"}))

	_, err := repo.GetByUser(context.Background(), "u-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
