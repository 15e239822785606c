package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sandeepkv93/identity-core/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&domain.User{}, &domain.LocalCredential{}, &domain.FederatedCredential{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, repo UserRepository, id, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:       id,
		Email:    email,
		Name:     "user " + id,
		ImageURL: "https://img.example/" + id,
		Role:     domain.RoleSubscriber,
	}
	if err := repo.Create(t.Context(), u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return u
}
