package producer

import (
	"context"
	"time"

	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"

	"go.uber.org/zap"
)

const outboxBatchSize = 50

// ProcessOutboxEvents relays pending outbox rows to Kafka until ctx is done.
// A full batch is followed by another claim right away instead of waiting
// for the next tick.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.relay")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox relay started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			for {
				n, err := relayBatch(ctx, repo, writer, log)
				if err != nil {
					log.Error("relay outbox batch failed", zap.Error(err))
					break
				}
				if n < outboxBatchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// relayBatch claims one batch and settles every row as sent or failed. It
// returns the number of rows claimed.
func relayBatch(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	log *zap.Logger,
) (int, error) {
	events, err := repo.ClaimPending(ctx, outboxBatchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	results := publishBatch(ctx, writer, events)

	sent := 0
	for i, event := range events {
		l := log.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)

		if pubErr := results[i]; pubErr != nil {
			dead, err := repo.MarkFailed(ctx, event.ID, pubErr.Error())
			switch {
			case err != nil:
				l.Error("mark outbox failed failed", zap.NamedError("publish_error", pubErr), zap.Error(err))
			case dead:
				l.Error("outbox event dead after max attempts", zap.Int("attempts", event.RetryCount+1), zap.Error(pubErr))
			default:
				l.Warn("publish outbox event failed, will retry", zap.Int("attempt", event.RetryCount+1), zap.Error(pubErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			// The lease expires and the event is published again; consumers
			// see it twice.
			l.Error("mark outbox sent failed", zap.Error(err))
			continue
		}
		sent++
	}

	log.Info("outbox batch relayed", zap.Int("claimed", len(events)), zap.Int("sent", sent))
	return len(events), nil
}
