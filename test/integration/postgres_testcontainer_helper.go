//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/sandeepkv93/identity-core/internal/config"
	"github.com/sandeepkv93/identity-core/internal/database"
	"github.com/sandeepkv93/identity-core/internal/domain"
	"github.com/sandeepkv93/identity-core/internal/idgen"
	"github.com/sandeepkv93/identity-core/internal/repository"
	"github.com/sandeepkv93/identity-core/internal/security"
	"github.com/sandeepkv93/identity-core/internal/service"
)

const (
	defaultPostgresTestImage = "docker.io/library/postgres:17-alpine"
	defaultRedisTestImage    = "docker.io/library/redis:7-alpine"
)

type identityIntegrationEnv struct {
	db    *gorm.DB
	redis redis.UniversalClient
	users *service.UserService
}

func newIdentityIntegrationEnv(t *testing.T) *identityIntegrationEnv {
	t.Helper()

	dsn := startPostgres(t)
	db, err := database.Open(&config.Config{DatabaseURL: dsn, DatabaseLogLevel: "silent"})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("postgres sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: startRedis(t)})
	t.Cleanup(func() { _ = client.Close() })

	users := service.NewUserService(
		repository.NewStore(db),
		service.NewRedisUserCacheStore(client),
		idgen.NewULIDGenerator(),
		security.HMACHasher{},
		security.CryptoRandom{},
		service.UserServiceConfig{
			CacheNamespace:     "_users",
			DefaultImageURL:    "https://img.example/default.png",
			SaltLength:         64,
			FederatedProviders: []domain.AuthProvider{domain.AuthProviderGitHub, domain.AuthProviderGoogle},
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &identityIntegrationEnv{db: db, redis: client, users: users}
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: imageFromEnv("POSTGRES_TEST_IMAGE", defaultPostgresTestImage),
			Env: map[string]string{
				"POSTGRES_USER":     "identity",
				"POSTGRES_PASSWORD": "identity",
				"POSTGRES_DB":       "identity",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres test container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint := containerEndpoint(t, container, "5432/tcp")
	return fmt.Sprintf("postgres://identity:identity@%s/identity?sslmode=disable", endpoint)
}

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        imageFromEnv("REDIS_TEST_IMAGE", defaultRedisTestImage),
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis test container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })
	return containerEndpoint(t, container, "6379/tcp")
}

func containerEndpoint(t *testing.T, container testcontainers.Container, port string) string {
	t.Helper()
	ctx := context.Background()
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("resolve container port %s: %v", port, err)
	}
	return net.JoinHostPort(host, mapped.Port())
}

func imageFromEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
