// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"strings"
	"syscall"

	"barter_backend/internal/config"
	"barter_backend/internal/offer"
	"barter_backend/internal/offer/esutil"
	"barter_backend/internal/platform/database"
	platformES "barter_backend/internal/platform/elasticsearch"
	"barter_backend/internal/platform/logger"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

func main() {
	syncOffersCmd := flag.NewFlagSet("sync-offers", flag.ExitOnError)
	batchSize := syncOffersCmd.Int("batch-size", 100, "Batch size for syncing offers")
	esRefresh := syncOffersCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-offers" {
		syncOffersCmd.Parse(os.Args[2:])
		runSyncCommand(*batchSize, *esRefresh)
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient.Enabled() {
		if err := platformES.CreateOffersIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch offers index", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runSyncCommand bulk-indexes every offer into Elasticsearch.
func runSyncCommand(batchSize int, esRefresh string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
	}
	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	esClient, err := platformES.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	if !esClient.Enabled() {
		appLogger.Fatal("FATAL: ELASTICSEARCH_URL must be set for sync-offers.")
	}

	if err := platformES.CreateOffersIndexIfNotExists(esClient, appLogger); err != nil {
		appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
	}

	offerRepo := offer.NewGORMRepository(db)
	if err := runOfferSync(offerRepo, esClient, appLogger, batchSize, esRefresh); err != nil {
		appLogger.Fatal("FATAL: Offer synchronization failed", zap.Error(err))
	}
	appLogger.Info("Offer synchronization completed successfully.")
}

// runOfferSync pages through the offers table and bulk-indexes each batch.
func runOfferSync(
	offerRepo offer.Repository,
	esClient *platformES.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting offer synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalSynced := 0
	totalFailed := 0

	for {
		offers, err := offerRepo.FindAllForSync(context.Background(), offset, batchSize)
		if err != nil {
			return fmt.Errorf("fetching batch at offset %d: %w", offset, err)
		}
		if len(offers) == 0 {
			break
		}

		var bulkRequestBody strings.Builder
		indexed := 0
		for i := range offers {
			o := &offers[i]
			docJSON, errDoc := esutil.OfferToElasticsearchDoc(o)
			if errDoc != nil {
				logger.Error("Failed to convert offer to Elasticsearch document",
					zap.String("offerID", o.ID.String()), zap.Error(errDoc))
				totalFailed++
				continue
			}
			fmt.Fprintf(&bulkRequestBody, "{ \"index\" : { \"_index\" : %q, \"_id\" : %q } }\n",
				platformES.OffersIndexName, o.ID.String())
			bulkRequestBody.WriteString(docJSON)
			bulkRequestBody.WriteString("\n")
			indexed++
		}

		if bulkRequestBody.Len() > 0 {
			req := esapi.BulkRequest{
				Body:    strings.NewReader(bulkRequestBody.String()),
				Refresh: esRefresh,
			}
			res, errBulk := req.Do(context.Background(), esClient.Client)
			if errBulk != nil {
				return fmt.Errorf("bulk request at offset %d: %w", offset, errBulk)
			}
			if res.IsError() {
				res.Body.Close()
				return fmt.Errorf("bulk request at offset %d returned %s", offset, res.Status())
			}
			res.Body.Close()
			totalSynced += indexed
		}

		offset += len(offers)
	}

	logger.Info("Offer sync finished",
		zap.Int("synced", totalSynced),
		zap.Int("failed", totalFailed),
	)
	return nil
}
