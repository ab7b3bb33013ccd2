// Package memory provides process-local repositories used when
// STORAGE_DRIVER=memory and by package tests. They honour the same
// uniqueness and cascade rules as the Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

// Store holds all tables behind one mutex so cascades stay consistent.
type Store struct {
	mu        sync.Mutex
	users     map[string]entity.User
	tokens    map[string]entity.SessionToken // key -> token
	profiles  map[string]entity.Profile      // user id -> profile
	addresses map[string]entity.ResidentialAddress
}

func NewStore() *Store {
	return &Store{
		users:     map[string]entity.User{},
		tokens:    map[string]entity.SessionToken{},
		profiles:  map[string]entity.Profile{},
		addresses: map[string]entity.ResidentialAddress{},
	}
}

func (s *Store) Users() *UserRepository        { return &UserRepository{s: s} }
func (s *Store) Tokens() *TokenRepository      { return &TokenRepository{s: s} }
func (s *Store) Profiles() *ProfileRepository  { return &ProfileRepository{s: s} }
func (s *Store) Addresses() *AddressRepository { return &AddressRepository{s: s} }

// DeleteUser removes a user and cascades to every dependent record.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	delete(s.profiles, id)
	for k, t := range s.tokens {
		if t.UserID == id {
			delete(s.tokens, k)
		}
	}
	for k, a := range s.addresses {
		if a.UserID == id {
			delete(s.addresses, k)
		}
	}
	return nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Activate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = true
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) ReplaceCredential(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	for k, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

type TokenRepository struct{ s *Store }

func (r *TokenRepository) GetOrCreate(_ context.Context, userID, candidateKey string) (*entity.SessionToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			return &t, nil
		}
	}
	if _, taken := r.s.tokens[candidateKey]; taken {
		return nil, repository.ErrDuplicate
	}
	t := entity.SessionToken{Key: candidateKey, UserID: userID, CreatedAt: time.Now()}
	r.s.tokens[candidateKey] = t
	return &t, nil
}

func (r *TokenRepository) GetUserByKey(_ context.Context, key string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u, ok := r.s.users[t.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *TokenRepository) DeleteByUser(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var keys []string
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			keys = append(keys, k)
			delete(r.s.tokens, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

type ProfileRepository struct{ s *Store }

func (r *ProfileRepository) GetByUser(_ context.Context, userID string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) Create(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.profiles[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.profiles[p.UserID] = *p
	return nil
}

func (r *ProfileRepository) Update(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.UserID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.s.profiles[p.UserID] = *p
	return nil
}

func (r *ProfileRepository) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.profiles, userID)
	return nil
}

// AddressRepository keys rows by address id, mirroring the one-to-many schema.
type AddressRepository struct{ s *Store }

func (r *AddressRepository) GetByUser(_ context.Context, userID string) (*entity.ResidentialAddress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *entity.ResidentialAddress
	for _, a := range r.s.addresses {
		if a.UserID != userID {
			continue
		}
		if found == nil || a.CreatedAt.Before(found.CreatedAt) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *AddressRepository) Create(_ context.Context, a *entity.ResidentialAddress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[a.UserID]; !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.addresses[a.ID] = *a
	return nil
}

func (r *AddressRepository) Update(_ context.Context, a *entity.ResidentialAddress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.addresses[a.ID]
	if !ok || existing.UserID != a.UserID {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	r.s.addresses[a.ID] = *a
	return nil
}

func (r *AddressRepository) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	deleted := false
	for k, a := range r.s.addresses {
		if a.UserID == userID {
			delete(r.s.addresses, k)
			deleted = true
		}
	}
	if !deleted {
		return repository.ErrNotFound
	}
	return nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.TokenRepository   = (*TokenRepository)(nil)
	_ repository.ProfileRepository = (*ProfileRepository)(nil)
	_ repository.AddressRepository = (*AddressRepository)(nil)
)
