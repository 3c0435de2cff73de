package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/events"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka/consumer"
	"github.com/faisallbhr/simple-hris/internal/shared/connection"
	"github.com/faisallbhr/simple-hris/internal/shared/notify"
	"github.com/faisallbhr/simple-hris/internal/user"
	"github.com/faisallbhr/simple-hris/internal/userimport"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RunConsumer processes user import requests from Kafka until SIGINT or
// SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := connection.ConnectBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	pipeline := userimport.NewPipeline(
		sqlDB,
		userimport.NewRepository(gormDB),
		store,
		notify.NewRedisNotifier(rdb, logger),
		user.NewOptionsCache(rdb, logger),
		logger,
	)

	reader := connection.NewKafkaReader(cfg.Kafka.Broker, events.UserImportRequestedTopic, cfg.Kafka.ConsumerGroup)
	defer reader.Close()

	go consumer.ConsumeUserImportRequested(ctx, reader, pipeline, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
