package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bankapi/internal/domain/ledger"
	"bankapi/internal/domain/user"
	"bankapi/internal/infrastructure/memory"
	"bankapi/internal/infrastructure/postgres"
	httphandlers "bankapi/internal/interfaces/http"
	"bankapi/internal/shared/auth"
	"bankapi/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB // nil with the memory driver

	// Handlers
	AuthHandler    *httphandlers.AuthHandler
	AccountHandler *httphandlers.AccountHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	var (
		users user.Repository
		uows  ledger.UnitOfWorkFactory
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		users = store.Users()
		uows = store
		log.Warn().Msg("using in-memory storage; data is lost on restart")

	default:
		db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		deps.DB = db
		log.Info().Msg("connected to database")

		if cfg.Database.AutoMigrate {
			applied, err := postgres.Migrate(ctx, db, log)
			if err != nil {
				db.Close()
				return nil, fmt.Errorf("auto-migrate: %w", err)
			}
			log.Info().Int("applied", applied).Msg("schema migrations up to date")
		}

		users = postgres.NewUserRepository(db)
		uows = postgres.NewUnitOfWorkFactory(db)
	}

	// Initialize auth components
	deps.JWT = auth.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	hasher := auth.NewHasher(cfg.Password.BcryptCost)

	// Initialize domain services
	userService := user.NewService(users, hasher, deps.JWT)
	ledgerService := ledger.NewService(nil)

	// Initialize handlers
	deps.AuthHandler = httphandlers.NewAuthHandler(userService)
	deps.AccountHandler = httphandlers.NewAccountHandler(ledgerService, uows)

	return deps, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
