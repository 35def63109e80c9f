// File: cmd/server/providers.go
package main

import (
	"log"

	"barter_backend/internal/config"
	"barter_backend/internal/filestorage"
	"barter_backend/internal/offer"
	"barter_backend/internal/platform/database"
	"barter_backend/internal/review"
	"barter_backend/internal/trade"
	"barter_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideFileStorage(cfg *config.Config, logger *zap.Logger) (*filestorage.Service, error) {
	return filestorage.NewService(cfg.ImageStoragePath, logger)
}

// provideStatsSources assembles the per-domain counters behind the public
// profile statistics from the repositories, keeping the user package free
// of imports on the other domains.
func provideStatsSources(
	offerRepo offer.Repository,
	tradeRepo trade.Repository,
	reviewRepo review.Repository,
) user.StatsSources {
	return user.StatsSources{
		Offers:  offerRepo,
		Trades:  tradeRepo,
		Reviews: reviewRepo,
	}
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
}
