package database

import (
	"github.com/sandeepkv93/identity-core/internal/domain"

	"gorm.io/gorm"
)

// Models lists every table owned by the identity store, in creation order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.LocalCredential{},
		&domain.FederatedCredential{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// PendingTables returns the model tables that do not exist yet.
func PendingTables(db *gorm.DB) ([]string, error) {
	var pending []string
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		if !db.Migrator().HasTable(m) {
			pending = append(pending, stmt.Schema.Table)
		}
	}
	return pending, nil
}
