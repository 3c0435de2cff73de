package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka/producer"
	"github.com/faisallbhr/simple-hris/internal/shared/connection"
	"github.com/faisallbhr/simple-hris/internal/userimport"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const outboxPollInterval = 3 * time.Second

// RunWorker relays outbox rows to Kafka and runs the import reaper on its
// cron schedule until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := connection.ConnectBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	reaper := userimport.NewReaper(store, outboxRepo, cfg.ImportReaperMaxAge(), logger)
	scheduler := cron.New()
	if _, err := reaper.Schedule(scheduler, cfg.Import.ReaperSchedule); err != nil {
		return errors.Wrapf(err, "schedule import reaper %q", cfg.Import.ReaperSchedule)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		outboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
