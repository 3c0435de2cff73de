package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	// OutboxStatusDead rows exhausted their attempts and are never claimed again.
	OutboxStatusDead = "dead"

	OutboxMaxAttempts = 10

	// claimLease keeps a claimed row invisible to other relays while it is
	// being published. A relay that dies mid batch releases it on expiry.
	claimLease = time.Minute
)

type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ClaimPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) (dead bool, err error)
	PurgeSent(ctx context.Context, before time.Time) (int64, error)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) conn() execQuerier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Create must run on the transaction that writes the state the event
// describes, otherwise the event can outlive a rollback.
func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	var requestID *string
	if event.RequestID != "" {
		requestID = &event.RequestID
	}

	_, err := r.conn().ExecContext(ctx, `
INSERT INTO outbox_events
	(id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status, created_at, updated_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
		event.ID, requestID, event.AggregateType, event.AggregateID,
		event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

// ClaimPending leases up to limit publishable rows, oldest first. Rows locked
// by a concurrent relay are skipped rather than waited on.
func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.conn().QueryContext(ctx, `
WITH claimable AS (
	SELECT id
	FROM outbox_events
	WHERE status IN ($1, $2)
		AND (next_retry_at IS NULL OR next_retry_at <= NOW())
	ORDER BY created_at ASC
	LIMIT $3
	FOR UPDATE SKIP LOCKED
)
UPDATE outbox_events o
SET next_retry_at = NOW() + make_interval(secs => $4), updated_at = NOW()
FROM claimable
WHERE o.id = claimable.id
RETURNING o.id::text, COALESCE(o.request_id, ''), o.aggregate_type, o.aggregate_id::text,
	o.event_type, o.topic, o.payload, o.status, o.retry_count, o.created_at`,
		OutboxStatusPending, OutboxStatusFailed, limit, claimLease.Seconds(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type claimed struct {
		event     OutboxEvent
		createdAt time.Time
	}
	var batch []claimed
	for rows.Next() {
		var c claimed
		if err := rows.Scan(
			&c.event.ID, &c.event.RequestID, &c.event.AggregateType, &c.event.AggregateID,
			&c.event.EventType, &c.event.Topic, &c.event.Payload, &c.event.Status,
			&c.event.RetryCount, &c.createdAt,
		); err != nil {
			return nil, err
		}
		batch = append(batch, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// RETURNING carries no order; keep per aggregate ordering for the writer.
	events := make([]OutboxEvent, len(batch))
	sort.Slice(batch, func(i, j int) bool { return batch[i].createdAt.Before(batch[j].createdAt) })
	for i, c := range batch {
		events[i] = c.event
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.conn().ExecContext(ctx, `
UPDATE outbox_events
SET status = $2, processed_at = NOW(), error_message = NULL, next_retry_at = NULL, updated_at = NOW()
WHERE id = $1`,
		id, OutboxStatusSent,
	)
	return err
}

// MarkFailed records the failure and schedules a linear backoff retry. The
// row is buried as dead once it reaches OutboxMaxAttempts.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) (bool, error) {
	var status string
	err := r.conn().QueryRowContext(ctx, `
UPDATE outbox_events
SET
	retry_count = retry_count + 1,
	status = CASE WHEN retry_count + 1 >= $4 THEN $3 ELSE $2 END,
	error_message = LEFT($5, 500),
	next_retry_at = NOW() + (retry_count + 1) * INTERVAL '15 seconds',
	updated_at = NOW()
WHERE id = $1
RETURNING status`,
		id, OutboxStatusFailed, OutboxStatusDead, OutboxMaxAttempts, reason,
	).Scan(&status)
	if err != nil {
		return false, err
	}
	return status == OutboxStatusDead, nil
}

// PurgeSent deletes relayed rows processed before the given time.
func (r *outboxRepository) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.conn().ExecContext(ctx,
		`DELETE FROM outbox_events WHERE status = $1 AND processed_at < $2`,
		OutboxStatusSent, before,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.AggregateID == "" {
		return errors.New("outbox aggregate id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	if event.Status != OutboxStatusPending {
		return fmt.Errorf("new outbox events must be %s, got %q", OutboxStatusPending, event.Status)
	}
	return nil
}
