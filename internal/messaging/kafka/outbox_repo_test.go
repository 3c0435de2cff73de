package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_CreateUsesTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := kafka.OutboxEvent{
		ID:            "0c6c7f39-3df6-4a43-9f3e-6f0b2a4f6d11",
		RequestID:     "req-1",
		AggregateType: "user_import",
		AggregateID:   "7b0d3f52-8f1e-4a57-9d57-2f3f1b7f0a11",
		EventType:     "user.import.requested",
		Topic:         "hr.user.import.requested.v1",
		Payload:       []byte(`{"file_ref":"imports/a.csv"}`),
		Status:        kafka.OutboxStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs(event.ID, event.RequestID, event.AggregateType, event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), event))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ClaimPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	older := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	newer := older.Add(time.Second)
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50, float64(60)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "created_at",
		}).
			AddRow("id-2", "", "user_import", "agg-1", "user.import.requested", "hr.user.import.requested.v1", []byte(`{}`), "failed", 2, newer).
			AddRow("id-1", "req-1", "user_import", "agg-1", "user.import.requested", "hr.user.import.requested.v1", []byte(`{}`), "pending", 0, older))

	events, err := kafka.NewOutboxRepository(db).ClaimPending(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "id-1", events[0].ID)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "id-2", events[1].ID)
	assert.Equal(t, 2, events[1].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantDead bool
	}{
		{"retry scheduled", kafka.OutboxStatusFailed, false},
		{"attempts exhausted", kafka.OutboxStatusDead, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`UPDATE outbox_events`).
				WithArgs("id-1", kafka.OutboxStatusFailed, kafka.OutboxStatusDead, kafka.OutboxMaxAttempts, "broker unavailable").
				WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(tt.status))

			dead, err := kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "id-1", "broker unavailable")

			require.NoError(t, err)
			assert.Equal(t, tt.wantDead, dead)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOutboxRepository_PurgeSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM outbox_events WHERE status = \$1 AND processed_at < \$2`).
		WithArgs(kafka.OutboxStatusSent, before).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := kafka.NewOutboxRepository(db).PurgeSent(context.Background(), before)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{ID: "id", AggregateID: "agg", Topic: "t", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending}
	assert.NoError(t, kafka.ValidateOutboxEvent(valid))

	noTopic := valid
	noTopic.Topic = ""
	assert.Error(t, kafka.ValidateOutboxEvent(noTopic))

	noAggregate := valid
	noAggregate.AggregateID = ""
	assert.Error(t, kafka.ValidateOutboxEvent(noAggregate))

	alreadySent := valid
	alreadySent.Status = kafka.OutboxStatusSent
	assert.Error(t, kafka.ValidateOutboxEvent(alreadySent))
}
