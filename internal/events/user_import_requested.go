package events

import "time"

const (
	UserImportRequestedTopic = "hr.user.import.requested.v1"
	UserImportRequestedType  = "user.import.requested"
)

// UserImportRequestedEvent points the consumer at an uploaded spreadsheet in
// the blob store. UserID is the submitter and receives the outcome.
type UserImportRequestedEvent struct {
	EventType  string    `json:"event_type"`
	FileRef    string    `json:"file_ref"`
	Format     string    `json:"format"`
	UserID     string    `json:"user_id"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
