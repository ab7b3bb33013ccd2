package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

func seedUser(t *testing.T, s *Store, email string) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, FirstName: "x", Password: "hash"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUsers_EmailIsUnique(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "a@b.c")

	err := s.Users().Create(context.Background(), &entity.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUsers_ReturnsCopies(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@b.c")

	got, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	got.IsActive = true

	again, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
}

func TestTokens_GetOrCreateIsIdempotentUnderConcurrency(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@b.c")

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := s.Tokens().GetOrCreate(context.Background(), u.ID, string(rune('a'+i)))
			require.NoError(t, err)
			keys[i] = tok.Key
		}(i)
	}
	wg.Wait()

	for _, k := range keys {
		assert.Equal(t, keys[0], k)
	}
}

func TestTokens_DeleteByUser(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@b.c")
	ctx := context.Background()

	_, err := s.Tokens().GetOrCreate(ctx, u.ID, "k1")
	require.NoError(t, err)

	keys, err := s.Tokens().DeleteByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	_, err = s.Tokens().GetUserByKey(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUser_Cascades(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@b.c")
	ctx := context.Background()

	require.NoError(t, s.Profiles().Create(ctx, &entity.Profile{UserID: u.ID}))
	require.NoError(t, s.Addresses().Create(ctx, &entity.ResidentialAddress{UserID: u.ID}))
	_, err := s.Tokens().GetOrCreate(ctx, u.ID, "k1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	_, err = s.Profiles().GetByUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Addresses().GetByUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Tokens().GetUserByKey(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddresses_UpdateRequiresOwner(t *testing.T) {
	s := NewStore()
	a := seedUser(t, s, "a@b.c")
	b := seedUser(t, s, "b@b.c")
	ctx := context.Background()

	addr := &entity.ResidentialAddress{UserID: a.ID, Country: "kenya"}
	require.NoError(t, s.Addresses().Create(ctx, addr))

	hijack := *addr
	hijack.UserID = b.ID
	hijack.Country = "elsewhere"
	assert.ErrorIs(t, s.Addresses().Update(ctx, &hijack), repository.ErrNotFound)

	got, err := s.Addresses().GetByUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "kenya", got.Country)
}

func TestUsers_ActivateKeepsCredential(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@b.c")
	require.NoError(t, s.Users().ReplaceCredential(context.Background(), u.ID, "new-hash"))

	require.NoError(t, s.Users().Activate(context.Background(), u.ID))
	got, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "new-hash", got.Password)

	assert.ErrorIs(t, s.Users().Activate(context.Background(), "missing"), repository.ErrNotFound)
}

func TestUsers_ReplaceCredentialDropsTokens(t *testing.T) {
	s := NewStore()
	u := seedUser(t, s, "a@b.c")
	other := seedUser(t, s, "d@e.f")
	_, err := s.Tokens().GetOrCreate(context.Background(), u.ID, "k1")
	require.NoError(t, err)
	_, err = s.Tokens().GetOrCreate(context.Background(), other.ID, "k2")
	require.NoError(t, err)

	require.NoError(t, s.Users().ReplaceCredential(context.Background(), u.ID, "new-hash"))
	_, err = s.Tokens().GetUserByKey(context.Background(), "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Tokens().GetUserByKey(context.Background(), "k2")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Users().ReplaceCredential(context.Background(), "missing", "h"), repository.ErrNotFound)
}
