package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential view of the users table. The user module owns
// the schema.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
}

func (User) TableName() string {
	return "users"
}
