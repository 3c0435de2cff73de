package consumer

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// HandleFunc processes one message. Returning false leaves the message
// uncommitted so it is redelivered after a restart.
type HandleFunc func(ctx context.Context, msg kafkago.Message) (commit bool)

func consume(ctx context.Context, reader MessageReader, name string, handle HandleFunc, log *zap.Logger) {
	log.Info(name + " consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info(name + " consumer stopped")
				return
			}
			log.Error("fetch "+name+" message failed", zap.Error(err))
			continue
		}

		if !handle(ctx, msg) {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit "+name+" message failed", zap.Error(err))
		}
	}
}
