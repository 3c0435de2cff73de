package salaryslip

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SlipData is the immutable snapshot taken when a slip is generated. Amounts
// are whole rupiah.
type SlipData struct {
	Period     Period           `json:"period"`
	BaseSalary int64            `json:"base_salary"`
	Bonus      int64            `json:"bonus"`
	Allowances map[string]int64 `json:"allowances"`
	Deductions map[string]int64 `json:"deductions"`
	NetSalary  int64            `json:"net_salary"`
}

type SalarySlip struct {
	ID         uuid.UUID                    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayrollID  uuid.UUID                    `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Employee   *SlipEmployee                `gorm:"foreignKey:EmployeeID;references:ID;-:migration"`
	SlipData   datatypes.JSONType[SlipData] `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time                    `gorm:"index"`
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (SalarySlip) TableName() string {
	return "salary_slips"
}

type SlipEmployee struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name         string          `gorm:"column:name"`
	Email        string          `gorm:"column:email"`
	DepartmentID *uuid.UUID      `gorm:"column:department_id"`
	Department   *SlipDepartment `gorm:"foreignKey:DepartmentID;references:ID;-:migration"`
}

func (SlipEmployee) TableName() string {
	return "users"
}

type SlipDepartment struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (SlipDepartment) TableName() string {
	return "departments"
}
