package producer

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOutbox struct {
	pending  []kafka.OutboxEvent
	claimErr error
	sent     []string
	failed   map[string]string
	deadAt   int
}

func (f *fakeOutbox) WithTx(_ *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error { return nil }

func (f *fakeOutbox) ClaimPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	n := min(limit, len(f.pending))
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return batch, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) (bool, error) {
	f.failed[id] = reason
	return f.deadAt > 0, nil
}

func (f *fakeOutbox) PurgeSent(ctx context.Context, before time.Time) (int64, error) { return 0, nil }

// fakeWriter acknowledges every message except the ones keyed failOn, the way
// a kafka-go writer reports per message errors.
type fakeWriter struct {
	mu      sync.Mutex
	written []kafkago.Message
	failOn  string
	err     error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	var errs kafkago.WriteErrors
	failed := false
	for _, m := range msgs {
		if string(m.Key) == w.failOn {
			errs = append(errs, errors.New("broker unavailable"))
			failed = true
			continue
		}
		errs = append(errs, nil)
		w.written = append(w.written, m)
	}
	if failed {
		return errs
	}
	return nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.written)
}

func importEvent(id, aggregateID string) kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            id,
		AggregateType: "user_import",
		AggregateID:   aggregateID,
		EventType:     "user.import.requested",
		Topic:         "hr.user.import.requested.v1",
		Payload:       []byte(`{}`),
	}
}

func TestRelayBatch(t *testing.T) {
	first := importEvent("e-1", "u-1")
	first.RequestID = "req-1"
	outbox := &fakeOutbox{
		failed:  map[string]string{},
		pending: []kafka.OutboxEvent{first, importEvent("e-2", "u-2")},
	}
	writer := &fakeWriter{failOn: "u-2"}

	n, err := relayBatch(context.Background(), outbox, writer, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"e-1"}, outbox.sent)
	assert.Equal(t, "broker unavailable", outbox.failed["e-2"])

	require.Len(t, writer.written, 1)
	msg := writer.written[0]
	assert.Equal(t, "hr.user.import.requested.v1", msg.Topic)
	assert.Equal(t, []byte("u-1"), msg.Key)
	assert.Contains(t, msg.Headers, kafkago.Header{Key: "request_id", Value: []byte("req-1")})
	assert.Contains(t, msg.Headers, kafkago.Header{Key: "outbox_id", Value: []byte("e-1")})
	assert.Contains(t, msg.Headers, kafkago.Header{Key: "event_type", Value: []byte("user.import.requested")})
}

func TestRelayBatch_WholeBatchError(t *testing.T) {
	outbox := &fakeOutbox{
		failed:  map[string]string{},
		pending: []kafka.OutboxEvent{importEvent("e-1", "u-1"), importEvent("e-2", "u-2")},
		deadAt:  1,
	}
	writer := &fakeWriter{err: errors.New("dial tcp: connection refused")}

	n, err := relayBatch(context.Background(), outbox, writer, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, outbox.sent)
	assert.Equal(t, map[string]string{
		"e-1": "dial tcp: connection refused",
		"e-2": "dial tcp: connection refused",
	}, outbox.failed)
}

func TestRelayBatch_ClaimError(t *testing.T) {
	outbox := &fakeOutbox{claimErr: errors.New("db down")}

	n, err := relayBatch(context.Background(), outbox, &fakeWriter{}, zap.NewNop())

	assert.EqualError(t, err, "db down")
	assert.Zero(t, n)
}

func TestProcessOutboxEvents_DrainsFullBatches(t *testing.T) {
	outbox := &fakeOutbox{failed: map[string]string{}}
	for i := 0; i < outboxBatchSize+5; i++ {
		outbox.pending = append(outbox.pending, importEvent("e", "u"))
	}
	writer := &fakeWriter{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ProcessOutboxEvents(ctx, outbox, writer, zap.NewNop(), 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return writer.count() == outboxBatchSize+5 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Len(t, outbox.sent, outboxBatchSize+5)
}
