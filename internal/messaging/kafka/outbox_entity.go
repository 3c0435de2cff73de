package kafka

import (
	"time"

	"github.com/google/uuid"
)

// OutboxRecord is the migration model of outbox_events. The repository
// itself talks to the table with plain SQL.
type OutboxRecord struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestID     *string    `gorm:"type:varchar(64)"`
	AggregateType string     `gorm:"type:varchar(64);not null"`
	AggregateID   uuid.UUID  `gorm:"type:uuid;not null"`
	EventType     string     `gorm:"type:varchar(128);not null"`
	Topic         string     `gorm:"type:varchar(255);not null"`
	Payload       []byte     `gorm:"type:jsonb;not null"`
	Status        string     `gorm:"type:varchar(16);not null;default:pending;index:idx_outbox_status_created,priority:1"`
	RetryCount    int        `gorm:"not null;default:0"`
	ErrorMessage  *string    `gorm:"type:varchar(500)"`
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (OutboxRecord) TableName() string {
	return "outbox_events"
}
