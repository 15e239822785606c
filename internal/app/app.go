package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/identity-core/internal/config"
	"github.com/sandeepkv93/identity-core/internal/health"
	"github.com/sandeepkv93/identity-core/internal/observability"
	"github.com/sandeepkv93/identity-core/internal/service"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Users         *service.UserService
	Readiness     *health.ProbeRunner
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	users *service.UserService,
	readiness *health.ProbeRunner,
) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Observability: runtime,
		DB:            db,
		Redis:         redisClient,
		Users:         users,
		Readiness:     readiness,
	}
}

// Close flushes telemetry before releasing the cache and store connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Observability != nil {
		if err := a.Observability.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
