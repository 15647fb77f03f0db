package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/mongo"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// runtimeDependencies — хранилища и схема идентификаторов выбранного драйвера.
type runtimeDependencies struct {
	products       domain.ProductRepository
	orders         domain.OrderRepository
	outboxRepo     domain.OutboxRepository
	ids            domain.IdentityScheme
	storageChecker healthcheck.Checker
	closeFn        func(ctx context.Context) error
}

// close освобождает соединения хранилища.
func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(context.Background()); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case StorageDriverMemory:
		return initMemoryDependencies(logger), nil
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	case StorageDriverMongo:
		return initMongoDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}

func initMemoryDependencies(logger *log.Entry) *runtimeDependencies {
	products := memory.NewProductRepository()
	logger.Info("using in-memory storage")
	return &runtimeDependencies{
		products:       products,
		orders:         memory.NewOrderRepository(products),
		outboxRepo:     memory.NewOutboxRepository(),
		ids:            domain.UUIDScheme{},
		storageChecker: healthcheck.NewPingChecker("storage", products),
	}
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("postgres dsn is required for postgres storage driver")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		state, err := store.MigrationStatus(ctx)
		if err == nil {
			logger.WithFields(log.Fields{
				"version": state.Version,
				"applied": state.Applied,
			}).Info("postgres migrations applied")
		}
	}

	logger.Info("using postgres storage")
	return &runtimeDependencies{
		products:       postgres.NewProductRepository(store),
		orders:         postgres.NewOrderRepository(store),
		outboxRepo:     postgres.NewOutboxRepository(store),
		ids:            domain.UUIDScheme{},
		storageChecker: healthcheck.NewPingChecker("storage", store),
		closeFn:        func(context.Context) error { return store.Close() },
	}, nil
}

// initMongoDependencies подключает документное хранилище. Outbox для Mongo хранится в памяти процесса.
func initMongoDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	logger.WithField("database", cfg.MongoDatabase).Info("using mongo storage")
	return &runtimeDependencies{
		products:       mongo.NewProductRepository(store),
		orders:         mongo.NewOrderRepository(store),
		outboxRepo:     memory.NewOutboxRepository(),
		ids:            mongo.ObjectIDScheme{},
		storageChecker: healthcheck.NewPingChecker("storage", store),
		closeFn:        store.Close,
	}, nil
}
