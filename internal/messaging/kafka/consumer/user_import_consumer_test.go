package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/events"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka/consumer"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/userimport"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []kafkago.Message
	drained   chan struct{}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case r.drained <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

type recordingImporter struct {
	jobs       []userimport.Job
	requestIDs []string
}

func (i *recordingImporter) Run(ctx context.Context, job userimport.Job) userimport.Result {
	i.jobs = append(i.jobs, job)
	i.requestIDs = append(i.requestIDs, contextutil.GetRequestID(ctx))
	return userimport.Result{Status: userimport.StatusFailed, Err: errors.New("row errors")}
}

func TestConsumeUserImportRequested(t *testing.T) {
	payload, err := json.Marshal(events.UserImportRequestedEvent{
		EventType:  events.UserImportRequestedType,
		FileRef:    "imports/import_1_users.xlsx",
		Format:     "xlsx",
		UserID:     "u-1",
		RequestID:  "req-9",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	reader := &fakeReader{
		messages: []kafkago.Message{
			{Offset: 1, Value: []byte("{not json")},
			{Offset: 2, Value: payload},
		},
		drained: make(chan struct{}, 1),
	}
	importer := &recordingImporter{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.ConsumeUserImportRequested(ctx, reader, importer, zap.NewNop())
		close(done)
	}()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the reader")
	}
	cancel()
	<-done

	require.Len(t, importer.jobs, 1)
	assert.Equal(t, userimport.Job{
		FileRef:   "imports/import_1_users.xlsx",
		Format:    "xlsx",
		UserID:    "u-1",
		RequestID: "req-9",
	}, importer.jobs[0])
	assert.Equal(t, []string{"req-9"}, importer.requestIDs)

	require.Len(t, reader.committed, 2)
	assert.Equal(t, int64(1), reader.committed[0].Offset)
	assert.Equal(t, int64(2), reader.committed[1].Offset)
}
