package payroll

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Payroll struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_payrolls_employee_period"`
	Employee    *PayrollEmployee `gorm:"foreignKey:EmployeeID;references:ID;-:migration"`
	ProcessedBy uuid.UUID        `gorm:"type:uuid;not null;index"`
	Processor   *PayrollEmployee `gorm:"foreignKey:ProcessedBy;references:ID;-:migration"`

	PeriodStart time.Time `gorm:"type:date;not null;index:idx_payrolls_employee_period"`
	PeriodEnd   time.Time `gorm:"type:date;not null;index:idx_payrolls_employee_period"`

	// Amounts are whole rupiah.
	BaseSalary int64          `gorm:"type:bigint;not null;default:0"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	NetSalary  int64          `gorm:"type:bigint;not null;default:0"`

	Status       string  `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes        *string `gorm:"type:text"`
	PaymentProof *string `gorm:"type:varchar(255)"`
	PaidAt       *time.Time
	IsGenerated  bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Lifecycle derives the trash state from the soft-delete marker.
func (p Payroll) Lifecycle() Lifecycle {
	if p.DeletedAt.Valid {
		return LifecycleTrashed
	}
	return LifecycleActive
}

// PayrollEmployee is a read-only view of users for eager loading.
type PayrollEmployee struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name         string             `gorm:"column:name"`
	Email        string             `gorm:"column:email"`
	DepartmentID *uuid.UUID         `gorm:"column:department_id"`
	Department   *PayrollDepartment `gorm:"foreignKey:DepartmentID;references:ID;-:migration"`
}

func (PayrollEmployee) TableName() string {
	return "users"
}

type PayrollDepartment struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (PayrollDepartment) TableName() string {
	return "departments"
}
