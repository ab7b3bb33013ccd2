package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

const directoryMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "first_name": {"type": "text"},
      "is_active":  {"type": "boolean"},
      "is_admin":   {"type": "boolean"},
      "created_at": {"type": "date"}
    }
  }
}`

// DirectoryEntry is the searchable projection of a user. It never carries
// the credential.
type DirectoryEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDirectory keeps an Elasticsearch index of accounts for admin search.
// A nil client turns it into a no-op.
type UserDirectory struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewUserDirectory(es *elasticsearch.Client, index string, logger *logrus.Logger) *UserDirectory {
	return &UserDirectory{ES: es, Index: index, Logger: logger}
}

func (d *UserDirectory) enabled() bool { return d != nil && d.ES != nil && d.Index != "" }

// EnsureIndex creates the directory index on first start.
func (d *UserDirectory) EnsureIndex(ctx context.Context) error {
	if !d.enabled() {
		return nil
	}
	return helpers.EnsureIndex(ctx, d.ES, d.Index, directoryMapping)
}

// IndexUser upserts u. Failures are logged only.
func (d *UserDirectory) IndexUser(ctx context.Context, u *entity.User) {
	if !d.enabled() {
		return
	}
	doc := DirectoryEntry{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: d.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, d.ES)
	if err != nil {
		d.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		d.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search runs a multi_match query over email and first name.
func (d *UserDirectory) Search(ctx context.Context, q string, size int) ([]DirectoryEntry, error) {
	if !d.enabled() {
		return []DirectoryEntry{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := d.ES.Search(
		d.ES.Search.WithContext(c),
		d.ES.Search.WithIndex(d.Index),
		d.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source DirectoryEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("es search decode: %w", err)
	}
	out := make([]DirectoryEntry, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
