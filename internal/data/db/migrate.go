package db

import (
	types "github.com/odnalezione/odnalezione-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.ImportDraft{},
	)
}
