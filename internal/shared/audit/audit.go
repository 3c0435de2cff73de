package audit

import (
	"context"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"

	"go.uber.org/zap"
)

// Entry is the note a mutation hands back to its caller. Services build it,
// handlers forward it; nothing in the domain layer stores it.
type Entry struct {
	Action    string
	Message   string
	ActorID   string
	Subject   string
	SubjectID string
	Meta      map[string]any
}

func (e Entry) IsZero() bool {
	return e.Action == ""
}

type Logger interface {
	Log(ctx context.Context, entry Entry)
}

type zapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(logger ...*zap.Logger) Logger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &zapLogger{logger: l}
}

func (l *zapLogger) Log(ctx context.Context, entry Entry) {
	if entry.IsZero() {
		return
	}
	fields := append(contextutil.Fields(ctx),
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.String("actor_id", entry.ActorID),
		zap.String("subject", entry.Subject),
		zap.String("subject_id", entry.SubjectID),
	)
	if len(entry.Meta) > 0 {
		fields = append(fields, zap.Any("meta", entry.Meta))
	}
	l.logger.Info("audit event", fields...)
}

// Discard drops every entry.
type Discard struct{}

func (Discard) Log(context.Context, Entry) {}
