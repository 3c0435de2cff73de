package user

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/faisallbhr/simple-hris/internal/events"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/spreadsheet"
	usererrors "github.com/faisallbhr/simple-hris/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxImportSize = 10 * 1024 * 1024
	ImportPrefix  = "imports"

	ImportQueuedMessage = "Import is being processed in the background. You will be notified when it's complete."
)

// RequestImport stores the upload and queues it for the consumer. The actual
// rows are processed later and the outcome is pushed to the submitter.
func (s *service) RequestImport(ctx context.Context, actorID string, file ImportFile) (audit.Entry, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if len(file.Content) == 0 {
		return audit.Entry{}, usererrors.ErrImportFileRequired
	}
	format, err := spreadsheet.NormalizeFormat(file.FileName)
	if err != nil {
		return audit.Entry{}, usererrors.ErrImportFileType
	}
	size := file.Size
	if size < int64(len(file.Content)) {
		size = int64(len(file.Content))
	}
	if size > MaxImportSize {
		return audit.Entry{}, usererrors.ErrImportFileTooLarge
	}

	// The uuid keeps same-named uploads in one second from sharing an object.
	path := fmt.Sprintf("%s/import_%d_%s_%s", ImportPrefix, s.now().Unix(), uuid.NewString(), filepath.Base(file.FileName))
	ref, err := s.store.Put(ctx, path, file.Content, contentTypeFor(format))
	if err != nil {
		l.Error("store import file failed", zap.String("path", path), zap.Error(err))
		return audit.Entry{}, usererrors.ErrImportQueueFailed.WithCause(err)
	}

	if err := s.enqueueImport(ctx, actorID, ref, format); err != nil {
		l.Error("queue import failed", zap.String("file_ref", ref), zap.Error(err))
		if _, derr := s.store.Delete(context.WithoutCancel(ctx), ref); derr != nil {
			l.Warn("remove orphaned import file failed", zap.String("file_ref", ref), zap.Error(derr))
		}
		return audit.Entry{}, usererrors.ErrImportQueueFailed.WithCause(err)
	}

	l.Info("user import queued", zap.String("file_ref", ref), zap.String("format", format))
	return audit.Entry{
		Action:  "imported",
		Message: "User import requested",
		ActorID: actorID,
		Subject: "user",
		Meta:    map[string]any{"file_ref": ref, "format": format},
	}, nil
}

func (s *service) enqueueImport(ctx context.Context, actorID, ref, format string) error {
	payload, err := json.Marshal(events.UserImportRequestedEvent{
		EventType:  events.UserImportRequestedType,
		FileRef:    ref,
		Format:     format,
		UserID:     actorID,
		RequestID:  contextutil.GetRequestID(ctx),
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "user_import",
		AggregateID:   actorID,
		EventType:     events.UserImportRequestedType,
		Topic:         events.UserImportRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return err
	}
	return tx.Commit()
}

func contentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case spreadsheet.FormatCSV:
		return "text/csv"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}
