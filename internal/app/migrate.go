package app

import (
	"github.com/faisallbhr/simple-hris/internal/department"
	"github.com/faisallbhr/simple-hris/internal/leave"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"
	"github.com/faisallbhr/simple-hris/internal/payroll"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/salaryslip"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// models are migrated in order; later tables reference earlier ones.
var models = []struct {
	name  string
	model any
}{
	{"departments", &department.Department{}},
	{"permissions", &rbac.Permission{}},
	{"roles", &rbac.Role{}},
	{"users", &user.User{}},
	{"user_roles", &rbac.UserRole{}},
	{"leaves", &leave.Leave{}},
	{"payrolls", &payroll.Payroll{}},
	{"salary_slips", &salaryslip.SalarySlip{}},
	{"outbox_events", &kafka.OutboxRecord{}},
}

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return errors.Wrap(err, "create extension pgcrypto")
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return errors.Wrapf(err, "auto migrate %s", m.name)
		}
	}
	return nil
}
