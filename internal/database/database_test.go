package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sandeepkv93/identity-core/internal/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	dsn := fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Open(&config.Config{DatabaseURL: dsn, DatabaseLogLevel: "silent"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	pending, err := PendingTables(db)
	if err != nil {
		t.Fatalf("pending tables: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending tables before migrate, got %v", pending)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pending, err = PendingTables(db)
	if err != nil {
		t.Fatalf("pending tables after migrate: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending tables, got %v", pending)
	}
}

func TestDialectorFor(t *testing.T) {
	cases := map[string]string{
		"sqlite:identity.db":                  "sqlite",
		"file:identity.db?cache=shared":       "sqlite",
		"postgres://u:p@localhost:5432/ident": "postgres",
		"host=localhost user=u dbname=ident":  "postgres",
	}
	for dsn, want := range cases {
		if _, got := dialectorFor(dsn); got != want {
			t.Fatalf("dialectorFor(%q) = %q, want %q", dsn, got, want)
		}
	}
}
