package db

import (
	"github.com/yungbote/devcamper-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Bootcamp{},
		&domain.Course{},
		&domain.Review{},
	)
}
