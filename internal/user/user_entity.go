package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns the users table. Email is unique among active rows; the service
// also refuses emails held by trashed users.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"column:name;type:varchar(255);not null;index"`
	Email        string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_users_email_active,where:deleted_at IS NULL"`
	Password     string         `gorm:"column:password;type:text;not null"`
	DepartmentID *uuid.UUID     `gorm:"column:department_id;type:uuid;index"`
	ManagerID    *uuid.UUID     `gorm:"column:manager_id;type:uuid;index"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`

	Department *UserDepartment `gorm:"foreignKey:DepartmentID;references:ID;-:migration"`
	Manager    *UserManager    `gorm:"foreignKey:ManagerID;references:ID;-:migration"`
	Roles      []Role          `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID;-:migration"`
}

func (u User) IsTrashed() bool {
	return u.DeletedAt.Valid
}

func (u User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

type UserDepartment struct {
	ID   uuid.UUID `gorm:"primaryKey"`
	Name string
}

func (UserDepartment) TableName() string {
	return "departments"
}

type UserManager struct {
	ID   uuid.UUID `gorm:"primaryKey"`
	Name string
}

func (UserManager) TableName() string {
	return "users"
}

type Role struct {
	ID   uuid.UUID `gorm:"primaryKey"`
	Name string
}

func (Role) TableName() string {
	return "roles"
}
