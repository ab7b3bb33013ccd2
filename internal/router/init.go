package router

import (
	"context"
	"time"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/container"
	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	pginfra "github.com/oksasatya/go-account-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/router/modules"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	tpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

type repositories struct {
	Users     repo.UserRepository
	Tokens    repo.TokenRepository
	Profiles  repo.ProfileRepository
	Addresses repo.AddressRepository
}

// buildRepositories picks the storage backend named by STORAGE_DRIVER.
func buildRepositories() repositories {
	if container.GetConfig().StorageDriver == "memory" {
		s := container.GetMemoryStore()
		return repositories{Users: s.Users(), Tokens: s.Tokens(), Profiles: s.Profiles(), Addresses: s.Addresses()}
	}
	pool := container.GetPGPool()
	return repositories{
		Users:     pginfra.NewUserRepository(pool),
		Tokens:    pginfra.NewTokenRepository(pool),
		Profiles:  pginfra.NewProfileRepository(pool),
		Addresses: pginfra.NewAddressRepository(pool),
	}
}

// Services is the application layer built from the container.
type Services struct {
	Credentials *application.CredentialStore
	Auth        *application.AuthService
	Accounts    *application.AccountService
	Directory   *application.UserDirectory
	Profiles    *application.ProfileGuard
	Addresses   *application.AddressGuard
	Avatars     *application.AvatarService
}

func BuildServices() *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repos := buildRepositories()

	creds := application.NewCredentialStore(repos.Users, logger)
	auth := application.NewAuthService(creds, repos.Tokens, logger)
	directory := application.NewUserDirectory(container.GetES(), cfg.ESUsersIndex, logger)

	var mail application.EmailSender
	if ob := container.GetOutbox(); ob != nil {
		mail = ob
	}
	accounts := application.NewAccountService(
		creds,
		auth,
		helpers.NewActivationTokens(cfg.SecretKey, cfg.ActivationTokenTTL),
		helpers.NewResetTokenManager(cfg.ResetTokenSecret, cfg.ResetTokenTTL),
		mail,
		directory,
		cfg,
		logger,
	)
	if cfg.GeoLookupEnabled {
		accounts.Geo = tpl.IPAPIResolver{}
	}

	profiles := application.NewResourceGuard[entity.Profile, entity.ProfileFields](repos.Profiles)
	addresses := application.NewResourceGuard[entity.ResidentialAddress, entity.AddressFields](repos.Addresses)

	var objects application.ObjectStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		objects = application.GCSStore{Client: gcs, Bucket: cfg.GCSBucket}
	}

	return &Services{
		Credentials: creds,
		Auth:        auth,
		Accounts:    accounts,
		Directory:   directory,
		Profiles:    profiles,
		Addresses:   addresses,
		Avatars:     application.NewAvatarService(profiles, objects),
	}
}

// InitModules builds the services and registers every module. Call once at
// startup, after the container is populated.
func InitModules(r *Registry) *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildServices()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := svc.Directory.EnsureIndex(ctx); err != nil {
		logger.WithError(err).Warn("user directory index not ready")
	}
	cancel()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Accounts, svc.Auth, logger), svc.Auth))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Directory, logger), svc.Auth))
	r.Add(modules.NewResourceModule(
		handlers.NewResourceHandler(svc.Profiles, "Profile", logger),
		handlers.NewResourceHandler(svc.Addresses, "Address", logger),
		handlers.NewAvatarHandler(svc.Avatars, logger),
		svc.Auth,
	))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	return svc
}
