package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeSick     = "sick"
	TypeVacation = "vacation"
	TypePersonal = "personal"
	TypeOther    = "other"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Leave struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_user_dates"`

	Type      string    `gorm:"type:varchar(20);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_user_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_user_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    *string   `gorm:"type:text"`

	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes      *string    `gorm:"type:text"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	User *LeaveUser `gorm:"foreignKey:UserID"`
}

// LeaveUser is the slice of users a leave listing shows.
type LeaveUser struct {
	ID   uuid.UUID
	Name string
}

func (LeaveUser) TableName() string { return "users" }

func (l Leave) IsPending() bool {
	return l.Status == StatusPending
}
