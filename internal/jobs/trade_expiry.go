// File: internal/jobs/trade_expiry.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"barter_backend/internal/config"
	"barter_backend/internal/trade"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TradeExpiryJob periodically closes pending trades nobody responded to.
type TradeExpiryJob struct {
	tradeService  trade.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewTradeExpiryJob creates a new TradeExpiryJob.
func NewTradeExpiryJob(
	tradeService trade.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *TradeExpiryJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &TradeExpiryJob{
		tradeService:  tradeService,
		logger:        logger.Named("TradeExpiryJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *TradeExpiryJob) SetupAndStart() error {
	jobSpec := j.cfg.TradeExpiryJobSchedule // e.g. "@daily", "0 2 * * *"
	if jobSpec == "" {
		j.logger.Warn("Trade expiry job schedule not defined (TRADE_EXPIRY_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule trade expiry job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Trade expiry job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *TradeExpiryJob) runJob() {
	j.logger.Info("Starting trade expiry job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	expiredCount, err := j.tradeService.ExpireStalePending(ctx)
	if err != nil {
		j.logger.Error("Trade expiry job run failed", zap.Error(err))
	} else {
		j.logger.Info("Trade expiry job run completed", zap.Int("trades_expired", expiredCount))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *TradeExpiryJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping trade expiry job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Trade expiry job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Trade expiry job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger adapts a zap.Logger to the cron.Logger interface.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
