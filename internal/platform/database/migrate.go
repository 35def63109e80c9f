// File: internal/platform/database/migrate.go
package database

import (
	"fmt"

	"barter_backend/internal/category"
	"barter_backend/internal/message"
	"barter_backend/internal/notification"
	"barter_backend/internal/offer"
	"barter_backend/internal/review"
	"barter_backend/internal/trade"
	"barter_backend/internal/user"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all models. Order follows
// foreign key dependencies.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("creating uuid-ossp extension: %w", err)
	}

	err := db.AutoMigrate(
		&user.User{},
		&category.Category{},
		&offer.Offer{},
		&trade.Trade{},
		&message.Message{},
		&review.Review{},
		&notification.Notification{},
	)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
