package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/identity-core/internal/app"
	"github.com/sandeepkv93/identity-core/internal/config"
	"github.com/sandeepkv93/identity-core/internal/database"
	"github.com/sandeepkv93/identity-core/internal/health"
	"github.com/sandeepkv93/identity-core/internal/idgen"
	"github.com/sandeepkv93/identity-core/internal/observability"
	"github.com/sandeepkv93/identity-core/internal/repository"
	"github.com/sandeepkv93/identity-core/internal/security"
	"github.com/sandeepkv93/identity-core/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewStore,
	wire.Bind(new(repository.Store), new(*repository.GormStore)),
)

var SecuritySet = wire.NewSet(
	provideIDGenerator,
	providePasswordHasher,
	provideRandomService,
)

var ServiceSet = wire.NewSet(
	provideUserCacheStore,
	service.NewUserServiceConfig,
	service.NewUserService,
)

var AppSet = wire.NewSet(app.New)

// MigrationRunner applies the identity schema without starting the telemetry runtime.
type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

// Pending lists tables that Up would create.
func (m *MigrationRunner) Pending(ctx context.Context) ([]string, error) {
	return database.PendingTables(m.db.WithContext(ctx))
}

// Up migrates every model and returns the tables that did not exist before.
func (m *MigrationRunner) Up(ctx context.Context) ([]string, error) {
	created, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(m.db.WithContext(ctx)); err != nil {
		return nil, err
	}
	return created, nil
}

func (m *MigrationRunner) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if cfg.UserCacheBackend != "redis" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideUserCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.UserCacheStore {
	switch cfg.UserCacheBackend {
	case "redis":
		if redisClient != nil {
			return service.NewRedisUserCacheStore(redisClient)
		}
		return service.NewNoopUserCacheStore()
	case "memory":
		return service.NewInMemoryUserCacheStore()
	default:
		return service.NewNoopUserCacheStore()
	}
}

func provideIDGenerator(cfg *config.Config) (idgen.Generator, error) {
	return idgen.New(cfg.IdentityIDScheme)
}

func providePasswordHasher(cfg *config.Config) (security.PasswordHasher, error) {
	return security.NewPasswordHasher(cfg.IdentityPasswordHasher)
}

func provideRandomService() security.RandomService {
	return security.CryptoRandom{}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := []health.Checker{health.NewDBChecker(db)}
	if cfg.UserCacheBackend == "redis" {
		checkers = append(checkers, health.NewUserCacheChecker(redisClient))
	}
	return health.NewProbeRunner(cfg.HealthCheckTimeout, checkers...)
}
