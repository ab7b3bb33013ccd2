package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-account-service/pkg/mailer"
)

// Process-wide singletons built in main and read by the router when it wires
// modules. Optional backends (Redis, GCS, Elasticsearch) may stay nil; the
// components using them degrade to no-ops.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	memStore    *memory.Store
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client
	outbox      *mailer.Outbox
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return logger
}
func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

// GetMemoryStore lazily creates the in-process store for STORAGE_DRIVER=memory.
func GetMemoryStore() *memory.Store {
	if memStore == nil {
		memStore = memory.NewStore()
	}
	return memStore
}
func SetMemoryStore(s *memory.Store) { memStore = s }

func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetGCS(s *storage.Client)      { gcsClient = s }
func GetGCS() *storage.Client       { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetOutbox(o *mailer.Outbox)    { outbox = o }
func GetOutbox() *mailer.Outbox     { return outbox }

// Reset clears every singleton. Tests only.
func Reset() {
	cfg, logger, pgPool, memStore = nil, nil, nil, nil
	redisClient, gcsClient, esClient, outbox = nil, nil, nil, nil
}
