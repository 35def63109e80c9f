// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"barter_backend/internal/app"
	"barter_backend/internal/auth"
	"barter_backend/internal/category"
	"barter_backend/internal/config"
	"barter_backend/internal/jobs"
	"barter_backend/internal/message"
	"barter_backend/internal/notification"
	"barter_backend/internal/offer"
	"barter_backend/internal/offer/esutil"
	"barter_backend/internal/platform/database"
	platformES "barter_backend/internal/platform/elasticsearch"
	"barter_backend/internal/platform/logger"
	"barter_backend/internal/review"
	"barter_backend/internal/shared"
	"barter_backend/internal/trade"
	"barter_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform layer
		logger.New,
		database.NewGORM,
		platformES.NewClient,
		provideFileStorage,
		provideCleanup,

		// Auth
		auth.NewJWTService,
		auth.NewOAuthService,
		auth.NewHandler,

		// Users
		user.NewGORMRepository,
		user.NewService,
		user.NewHandler,
		provideStatsSources,
		wire.Bind(new(shared.Service), new(user.Service)),
		wire.Bind(new(shared.OAuthUserProvider), new(user.Service)),
		wire.Bind(new(auth.UserLoginService), new(user.Service)),

		// Categories
		category.NewGORMRepository,
		category.NewService,
		category.NewHandler,

		// Offers
		offer.NewGORMRepository,
		offer.NewService,
		offer.NewHandler,
		esutil.NewIndexer,
		wire.Bind(new(offer.Indexer), new(*esutil.Indexer)),

		// Trades
		trade.NewGORMRepository,
		trade.NewService,
		trade.NewHandler,

		// Messages
		message.NewGORMRepository,
		message.NewService,
		message.NewHandler,

		// Reviews
		review.NewGORMRepository,
		review.NewService,
		review.NewHandler,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		// Jobs
		jobs.NewTradeExpiryJob,

		// Application layer
		app.NewServer,
	)
	return nil, nil, nil
}
