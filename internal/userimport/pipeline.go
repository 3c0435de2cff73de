package userimport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/notify"
	"github.com/faisallbhr/simple-hris/internal/shared/spreadsheet"
	"github.com/faisallbhr/simple-hris/internal/shared/storage"
	userimporterrors "github.com/faisallbhr/simple-hris/internal/userimport/errors"

	"go.uber.org/zap"
)

const (
	NotificationEvent = "import.users"

	StatusSuccess = "success"
	StatusFailed  = "failed"

	MessageCompleted        = "Import completed successfully"
	MessageValidationFailed = "Import failed due to validation errors"

	// MaxNotifiedErrors caps the error preview pushed to the client.
	MaxNotifiedErrors = 10
)

type Job struct {
	FileRef   string
	Format    string
	UserID    string
	RequestID string
}

type Result struct {
	Status    string
	TotalRows int
	Imported  int
	Errors    []RowError
	Err       error
}

// Notification is the payload published on the submitter's private channel.
// TotalRows is set on success, FilePath on failure.
type Notification struct {
	UserID    string     `json:"userId"`
	Status    string     `json:"status"`
	TotalRows *int       `json:"totalRows,omitempty"`
	FilePath  string     `json:"filePath,omitempty"`
	Message   string     `json:"message"`
	Errors    []RowError `json:"errors"`
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Pipeline imports one uploaded file per Run inside a single transaction.
// Any row error discards the whole file.
type Pipeline struct {
	db        *sql.DB
	repo      Repository
	store     storage.BlobStore
	notifier  notify.Publisher
	cache     CacheInvalidator
	chunkSize int
	logger    *zap.Logger
}

func NewPipeline(
	db *sql.DB,
	repo Repository,
	store storage.BlobStore,
	notifier notify.Publisher,
	cache CacheInvalidator,
	logger ...*zap.Logger,
) *Pipeline {
	l := zap.L().Named("userimport.pipeline")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("userimport.pipeline")
	}
	return &Pipeline{
		db:        db,
		repo:      repo,
		store:     store,
		notifier:  notifier,
		cache:     cache,
		chunkSize: spreadsheet.DefaultChunkSize,
		logger:    l,
	}
}

type run struct {
	job      Job
	total    int
	imported int
	errs     []RowError
}

// Run never returns before the submitter has been notified and the uploaded
// file has been removed, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, job Job) (result Result) {
	l := contextutil.GetLogger(ctx, p.logger).With(
		zap.String("file", job.FileRef),
		zap.String("user_id", job.UserID),
		zap.String("request_id", job.RequestID),
	)
	state := &run{job: job}

	defer p.cleanup(ctx, job, l)
	defer func() {
		if rec := recover(); rec != nil {
			l.Error("import job panicked", zap.Any("panic", rec), zap.Stack("stack"))
			result = p.fail(ctx, state, fmt.Errorf("import panicked: %v", rec), l)
		}
	}()

	if err := p.process(ctx, state, l); err != nil {
		l.Error("import job failed with exception", zap.Error(err))
		return p.fail(ctx, state, err, l)
	}

	if len(state.errs) > 0 {
		l.Warn(MessageValidationFailed,
			zap.Int("errors_count", len(state.errs)),
			zap.Any("errors", preview(state.errs)),
		)
		p.publish(ctx, job.UserID, Notification{
			UserID:   job.UserID,
			Status:   StatusFailed,
			FilePath: job.FileRef,
			Message:  MessageValidationFailed,
			Errors:   preview(state.errs),
		}, l)
		return Result{Status: StatusFailed, TotalRows: state.total, Errors: state.errs}
	}

	if p.cache != nil {
		p.cache.Invalidate(context.WithoutCancel(ctx))
	}
	l.Info(MessageCompleted, zap.Int("rows_processed", state.total))

	total := state.total
	p.publish(ctx, job.UserID, Notification{
		UserID:    job.UserID,
		Status:    StatusSuccess,
		TotalRows: &total,
		Message:   MessageCompleted,
		Errors:    []RowError{},
	}, l)
	return Result{Status: StatusSuccess, TotalRows: state.total, Imported: state.imported}
}

// process commits only when every row was imported. A nil error with
// collected row errors means the transaction was rolled back.
func (p *Pipeline) process(ctx context.Context, state *run, l *zap.Logger) error {
	job := state.job
	if job.FileRef == "" || job.UserID == "" {
		return userimporterrors.ErrInvalidJob
	}

	format := job.Format
	if format == "" {
		format = job.FileRef
	}
	format, err := spreadsheet.NormalizeFormat(format)
	if err != nil {
		return err
	}

	data, err := p.store.Get(ctx, job.FileRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return userimporterrors.ErrImportFileMissing.WithMessage("Import file not found: %s", job.FileRef)
		}
		return err
	}

	rows, err := spreadsheet.Open(data, format, p.chunkSize)
	if err != nil {
		return err
	}
	defer rows.Close()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	validator := NewRowValidator(p.repo.WithTx(tx))

	for {
		chunk, err := rows.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		state.total += len(chunk)

		for _, row := range chunk {
			resolved, rowErrs, err := validator.Validate(ctx, row)
			if err != nil {
				return fmt.Errorf("validate row %d: %w", row.Number, err)
			}
			if len(rowErrs) > 0 {
				state.errs = append(state.errs, rowErrs...)
				continue
			}

			created, rowErr := validator.Persist(ctx, row, resolved)
			if rowErr != nil {
				l.Error("failed to create user", zap.Int("row", row.Number), zap.String("error", rowErr.Message))
				state.errs = append(state.errs, *rowErr)
				continue
			}
			state.imported++
			l.Debug("user created", zap.Int("row", row.Number), zap.String("email", created.Email))
		}
		l.Debug("chunk processed", zap.Int("rows", len(chunk)), zap.Int("total", state.total))
	}

	if len(state.errs) > 0 {
		return tx.Rollback()
	}
	return tx.Commit()
}

func (p *Pipeline) fail(ctx context.Context, state *run, err error, l *zap.Logger) Result {
	message := "Import failed: " + err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	errs := state.errs
	if errs == nil {
		errs = []RowError{}
	}
	p.publish(ctx, state.job.UserID, Notification{
		UserID:   state.job.UserID,
		Status:   StatusFailed,
		FilePath: state.job.FileRef,
		Message:  message,
		Errors:   preview(errs),
	}, l)
	return Result{Status: StatusFailed, TotalRows: state.total, Errors: errs, Err: err}
}

func (p *Pipeline) publish(ctx context.Context, userID string, n Notification, l *zap.Logger) {
	if userID == "" || p.notifier == nil {
		return
	}
	if err := p.notifier.Publish(context.WithoutCancel(ctx), notify.UserChannel(userID), NotificationEvent, n); err != nil {
		l.Error("publish import notification failed", zap.Error(err))
	}
}

func (p *Pipeline) cleanup(ctx context.Context, job Job, l *zap.Logger) {
	if job.FileRef == "" {
		return
	}
	removed, err := p.store.Delete(context.WithoutCancel(ctx), job.FileRef)
	if err != nil {
		l.Warn("failed to cleanup import file", zap.Error(err))
		return
	}
	if removed {
		l.Info("cleaned up import file")
	}
}

func preview(errs []RowError) []RowError {
	if len(errs) > MaxNotifiedErrors {
		return errs[:MaxNotifiedErrors]
	}
	return errs
}
