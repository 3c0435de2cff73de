package producer

import (
	"context"

	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafkago.Writer the relay uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// toMessage keys by aggregate so one user's imports stay on one partition.
func toMessage(event kafka.OutboxEvent) kafkago.Message {
	headers := []kafkago.Header{
		{Key: "outbox_id", Value: []byte(event.ID)},
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	return kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
}

// publishBatch writes every event in one call and returns the error of each
// message, nil for the ones the broker acknowledged.
func publishBatch(ctx context.Context, writer MessageWriter, events []kafka.OutboxEvent) []error {
	msgs := make([]kafkago.Message, len(events))
	for i, e := range events {
		msgs[i] = toMessage(e)
	}

	results := make([]error, len(events))
	err := writer.WriteMessages(ctx, msgs...)
	if err == nil {
		return results
	}

	if writeErrs, ok := err.(kafkago.WriteErrors); ok && len(writeErrs) == len(events) {
		copy(results, writeErrs)
		return results
	}
	for i := range results {
		results[i] = err
	}
	return results
}
