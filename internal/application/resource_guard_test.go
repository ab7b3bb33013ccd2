package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/infrastructure/memory"
)

func strp(s string) *string { return &s }

func fullProfile() entity.ProfileFields {
	dob := entity.NewDate(2022, time.November, 11)
	return entity.ProfileFields{
		MiddleName:  strp("names"),
		LastName:    strp("last names"),
		DOB:         &dob,
		Nationality: strp("kenya"),
		PhoneNumber: strp("+254729446777"),
	}
}

func twoUsers(t *testing.T, store *memory.Store) (*entity.User, *entity.User) {
	t.Helper()
	a := &entity.User{Email: "a@example.com", FirstName: "a", IsActive: true}
	b := &entity.User{Email: "b@example.com", FirstName: "b", IsActive: true}
	require.NoError(t, store.Users().Create(context.Background(), a))
	require.NoError(t, store.Users().Create(context.Background(), b))
	return a, b
}

func TestProfileGuard_Lifecycle(t *testing.T) {
	store := memory.NewStore()
	a, _ := twoUsers(t, store)
	g := NewResourceGuard[entity.Profile, entity.ProfileFields](store.Profiles())
	ctx := context.Background()

	_, err := g.Get(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := g.Create(ctx, a, fullProfile())
	require.NoError(t, err)
	assert.Equal(t, a.ID, p.UserID)
	assert.Equal(t, "2022-11-11", p.DOB.String())

	_, err = g.Create(ctx, a, fullProfile())
	assert.ErrorIs(t, err, ErrAlreadyExists)

	p, err = g.Replace(ctx, a, entity.ProfileFields{LastName: strp("other")})
	require.NoError(t, err)
	assert.Equal(t, "other", p.LastName)
	assert.Equal(t, "names", p.MiddleName)

	got, err := g.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "other", got.LastName)

	require.NoError(t, g.Delete(ctx, a))
	assert.ErrorIs(t, g.Delete(ctx, a), ErrNotFound)
	_, err = g.Replace(ctx, a, fullProfile())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileGuard_CreateRequiresAllFields(t *testing.T) {
	store := memory.NewStore()
	a, _ := twoUsers(t, store)
	g := NewResourceGuard[entity.Profile, entity.ProfileFields](store.Profiles())

	_, err := g.Create(context.Background(), a, entity.ProfileFields{MiddleName: strp("names")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["last_name"])
	assert.Contains(t, verr.Fields, "dob")
	assert.NotContains(t, verr.Fields, "middle_name")

	_, err = g.Get(context.Background(), a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileGuard_ReplaceCannotBlankFields(t *testing.T) {
	store := memory.NewStore()
	a, _ := twoUsers(t, store)
	g := NewResourceGuard[entity.Profile, entity.ProfileFields](store.Profiles())
	ctx := context.Background()
	_, err := g.Create(ctx, a, fullProfile())
	require.NoError(t, err)

	_, err = g.Replace(ctx, a, entity.ProfileFields{Nationality: strp("  ")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "nationality")

	got, err := g.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "kenya", got.Nationality)
}

func TestAddressGuard_IsolatesOwners(t *testing.T) {
	store := memory.NewStore()
	a, b := twoUsers(t, store)
	g := NewResourceGuard[entity.ResidentialAddress, entity.AddressFields](store.Addresses())
	ctx := context.Background()

	fields := entity.AddressFields{Country: strp("kenya"), City: strp("kanairo"), State: strp("kanairo"), Zip: strp("99988")}
	_, err := g.Create(ctx, a, fields)
	require.NoError(t, err)

	// B cannot see or change A's record, even naming A in the body.
	_, err = g.Get(ctx, b)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.Replace(ctx, b, entity.AddressFields{UserID: strp(a.ID), Country: strp("elsewhere")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, g.Delete(ctx, b), ErrNotFound)

	// A body user_id never decides ownership.
	fields.UserID = strp(a.ID)
	created, err := g.Create(ctx, b, fields)
	require.NoError(t, err)
	assert.Equal(t, b.ID, created.UserID)

	got, err := g.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "kenya", got.Country)
	assert.Equal(t, a.ID, got.UserID)
}

type fakeObjectStore struct {
	path        string
	contentType string
	body        []byte
	err         error
}

func (f *fakeObjectStore) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path, f.contentType = objectPath, contentType
	f.body, _ = io.ReadAll(r)
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

func TestAvatarService_UploadAvatar(t *testing.T) {
	store := memory.NewStore()
	a, _ := twoUsers(t, store)
	profiles := NewResourceGuard[entity.Profile, entity.ProfileFields](store.Profiles())
	objects := &fakeObjectStore{}
	svc := NewAvatarService(profiles, objects)
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, a, "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = profiles.Create(ctx, a, fullProfile())
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.UploadAvatar(ctx, a, "application/pdf", strings.NewReader("pdf"))
	assert.ErrorAs(t, err, &verr)

	p, err := svc.UploadAvatar(ctx, a, "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(objects.path, "avatars/"+a.ID+"/"))
	assert.True(t, strings.HasSuffix(objects.path, ".png"))
	assert.Equal(t, []byte("png-bytes"), objects.body)
	assert.Equal(t, "https://storage.googleapis.com/bucket/"+objects.path, p.AvatarURL)

	got, err := profiles.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, p.AvatarURL, got.AvatarURL)

	objects.err = errors.New("bucket gone")
	_, err = svc.UploadAvatar(ctx, a, "image/png", strings.NewReader("png"))
	assert.ErrorContains(t, err, "bucket gone")
}

func TestAvatarService_StorageDisabled(t *testing.T) {
	store := memory.NewStore()
	a, _ := twoUsers(t, store)
	svc := NewAvatarService(NewResourceGuard[entity.Profile, entity.ProfileFields](store.Profiles()), nil)

	_, err := svc.UploadAvatar(context.Background(), a, "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func newTestES(t *testing.T, h http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestUserDirectory_IndexAndSearch(t *testing.T) {
	var indexedPath, indexedBody, searchBody string
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			searchBody = string(b)
			_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":"u-1","email":"dann@gail.com","first_name":"dann","is_active":true}}]}}`))
		default:
			indexedPath, indexedBody = r.URL.Path, string(b)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		}
	})
	logger, _ := test.NewNullLogger()
	dir := NewUserDirectory(es, "users", logger)

	dir.IndexUser(context.Background(), &entity.User{ID: "u-1", Email: "dann@gail.com", FirstName: "dann", Password: "secret-hash"})
	assert.Equal(t, "/users/_doc/u-1", indexedPath)
	assert.Contains(t, indexedBody, `"email":"dann@gail.com"`)
	assert.NotContains(t, indexedBody, "secret-hash")

	hits, err := dir.Search(context.Background(), "dann", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "u-1", hits[0].ID)
	assert.True(t, hits[0].IsActive)
	assert.Contains(t, searchBody, `"multi_match"`)
	assert.Contains(t, searchBody, `"size":10`)
}

func TestUserDirectory_IndexFailureIsLogged(t *testing.T) {
	es := newTestES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	logger, hook := test.NewNullLogger()
	dir := NewUserDirectory(es, "users", logger)

	dir.IndexUser(context.Background(), &entity.User{ID: "u-1"})
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestUserDirectory_DisabledIsNoop(t *testing.T) {
	var dir *UserDirectory
	dir.IndexUser(context.Background(), &entity.User{ID: "u-1"})

	hits, err := NewUserDirectory(nil, "users", nil).Search(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUserDirectory_EnsureIndex(t *testing.T) {
	var calls []string
	var created string
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b, _ := io.ReadAll(r.Body)
		created = string(b)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})
	dir := NewUserDirectory(es, "users", nil)

	require.NoError(t, dir.EnsureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /users", "PUT /users"}, calls)
	assert.Contains(t, created, `"email"`)
}

func TestUserDirectory_EnsureIndexExisting(t *testing.T) {
	var calls int
	es := newTestES(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, NewUserDirectory(es, "users", nil).EnsureIndex(context.Background()))
	assert.Equal(t, 1, calls)
}
