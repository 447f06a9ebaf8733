package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/clients"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/credentials"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/model"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store/drivers/dynamo"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store/drivers/sqlite"
	"github.com/aussiebroadwan/grantstore/pkg/cryptox"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"
)

// App holds the wired application graph: one storage driver, the typed
// repositories over it, and the grant model a protocol engine drives.
type App struct {
	Config Config
	Logger *slog.Logger

	Store  store.Store
	Hasher *cryptox.PasswordHasher

	Clients     *clients.Repository
	Credentials *credentials.Repository
	Model       *model.GrantModel
}

// New builds the application from cfg. The storage driver is chosen by
// cfg.StoreDriver; everything downstream only sees the store contract.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := slogx.New(slogx.Config{
		Service: "grantstore",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hasher := cryptox.NewPasswordHasher(cfg.Salt)
	clientRepo := clients.NewRepository(s, cfg.Tables, logger)
	credentialRepo := credentials.NewRepository(s, cfg.Tables, clientRepo, logger)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Store:       s,
		Hasher:      hasher,
		Clients:     clientRepo,
		Credentials: credentialRepo,
		Model:       model.New(s, cfg.Tables, hasher, logger),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

func openStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "dynamo", "":
		return dynamo.NewStore(ctx, dynamo.Options{
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		}, logger)

	case "sqlite":
		s, err := sqlite.NewStore(cfg.SQLitePath, cfg.Tables.KeySchema(), logger)
		if err != nil {
			return nil, err
		}
		if err := s.ApplyMigrations(); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
