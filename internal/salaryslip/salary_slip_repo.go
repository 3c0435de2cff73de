package salaryslip

import (
	"context"
	"database/sql"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_slip_repo.go -destination=mock/salary_slip_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, slip *SalarySlip) error
	DeleteByPayrollID(ctx context.Context, payrollID string) error
	FindByID(ctx context.Context, id string) (*SalarySlip, error)
	FindByEmployee(ctx context.Context, employeeID string, page, pageSize int) ([]SalarySlip, int64, error)
	FindByEmployeeSince(ctx context.Context, employeeID string, since time.Time) ([]SalarySlip, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, slip *SalarySlip) error {
	return r.conn(ctx).Create(slip).Error
}

// DeleteByPayrollID removes slips permanently; it runs when the payroll they
// were generated from is destroyed.
func (r *repository) DeleteByPayrollID(ctx context.Context, payrollID string) error {
	return r.conn(ctx).
		Unscoped().
		Where("payroll_id = ?", payrollID).
		Delete(&SalarySlip{}).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*SalarySlip, error) {
	var slip SalarySlip
	err := r.conn(ctx).
		Preload("Employee.Department").
		First(&slip, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &slip, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, page, pageSize int) ([]SalarySlip, int64, error) {
	var (
		slips []SalarySlip
		total int64
	)

	base := r.conn(ctx).Model(&SalarySlip{}).Where("employee_id = ?", employeeID)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Employee").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&slips).Error
	return slips, total, err
}

func (r *repository) FindByEmployeeSince(ctx context.Context, employeeID string, since time.Time) ([]SalarySlip, error) {
	var slips []SalarySlip
	err := r.conn(ctx).
		Where("employee_id = ? AND created_at >= ?", employeeID, since).
		Order("created_at DESC").
		Find(&slips).Error
	return slips, err
}
