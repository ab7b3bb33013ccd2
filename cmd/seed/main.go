package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/application"
	pginfra "github.com/oksasatya/go-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// seed creates the administrator named by SEED_ADMIN_EMAIL. Running it
// again against an existing account is a no-op.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		logger.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Hour)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	store := application.NewCredentialStore(pginfra.NewUserRepository(pool), logger)
	u, err := store.CreateSuperuser(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if errors.Is(err, application.ErrDuplicateEmail) {
		logger.WithField("email", cfg.SeedAdminEmail).Info("admin already exists")
		return
	}
	if err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	helpers.LogInfo(logger, "seeded admin", map[string]any{"id": u.ID, "email": u.Email})
}
