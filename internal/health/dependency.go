package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/identity-core/internal/database"
)

// DBChecker pings the identity store and verifies its tables exist.
type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Name() string { return "identity_store" }

func (c *DBChecker) Check(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	pending, err := database.PendingTables(c.db.WithContext(ctx))
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("schema not migrated, missing tables: %v", pending)
	}
	return nil
}

// UserCacheChecker pings the redis instance backing the user cache.
type UserCacheChecker struct {
	client redis.UniversalClient
}

func NewUserCacheChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &UserCacheChecker{client: client}
}

func (c *UserCacheChecker) Name() string { return "user_cache" }

func (c *UserCacheChecker) Check(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("ping timed out: %w", err)
		}
		return err
	}
	return nil
}
