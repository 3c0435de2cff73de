package consumer

import (
	"context"
	"encoding/json"

	"github.com/faisallbhr/simple-hris/internal/events"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/userimport"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type UserImporter interface {
	Run(ctx context.Context, job userimport.Job) userimport.Result
}

// ConsumeUserImportRequested runs one import per message. Messages are
// committed whatever the outcome; the submitter learns about failures from
// the import notification.
func ConsumeUserImportRequested(
	ctx context.Context,
	reader MessageReader,
	importer UserImporter,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.user_import")
	consume(ctx, reader, "user import", func(ctx context.Context, msg kafkago.Message) bool {
		var event events.UserImportRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode user import event failed", zap.Error(err))
			return true
		}

		l := log.With(
			zap.String("request_id", event.RequestID),
			zap.String("user_id", event.UserID),
		)
		jobCtx := contextutil.WithRequestID(ctx, event.RequestID)
		jobCtx = contextutil.WithLogger(jobCtx, l)

		result := importer.Run(jobCtx, userimport.Job{
			FileRef:   event.FileRef,
			Format:    event.Format,
			UserID:    event.UserID,
			RequestID: event.RequestID,
		})

		l.Info("user import finished",
			zap.String("file_ref", event.FileRef),
			zap.String("status", result.Status),
			zap.Int("total_rows", result.TotalRows),
			zap.Int("errors", len(result.Errors)),
		)
		return true
	}, log)
}
