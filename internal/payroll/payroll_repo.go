package payroll

import (
	"context"
	"database/sql"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindOptions selects which lifecycle a lookup may see and whether the row is
// locked for the rest of the transaction.
type FindOptions struct {
	WithTrashed bool
	OnlyTrashed bool
	ForUpdate   bool
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, payroll *Payroll) error
	FindAll(ctx context.Context, filter ListFilter) ([]Payroll, int64, error)
	FindByID(ctx context.Context, id string, opts FindOptions) (*Payroll, error)
	Update(ctx context.Context, payroll *Payroll) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error
	LockEmployee(ctx context.Context, employeeID string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, periodStart, periodEnd time.Time, excludePayrollID *string) (bool, error)
	FindUserName(ctx context.Context, id string) (string, error)
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

func (r *repository) Create(ctx context.Context, payroll *Payroll) error {
	return r.conn(ctx).Omit(clause.Associations).Create(payroll).Error
}

var sortColumns = map[string]string{
	"created_at":          "payrolls.created_at",
	"updated_at":          "payrolls.updated_at",
	"period_start":        "payrolls.period_start",
	"period_end":          "payrolls.period_end",
	"base_salary":         "payrolls.base_salary",
	"net_salary":          "payrolls.net_salary",
	"status":              "payrolls.status",
	"paid_at":             "payrolls.paid_at",
	"employee_name":       "employees.name",
	"employee_department": "departments.name",
}

// IsSortable reports whether key is an accepted sort column.
func IsSortable(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Payroll, int64, error) {
	db := r.conn(ctx).
		Model(&Payroll{}).
		Joins("JOIN users AS employees ON employees.id = payrolls.employee_id").
		Joins("LEFT JOIN departments ON departments.id = employees.department_id")

	if filter.Trashed {
		db = db.Unscoped().Where("payrolls.deleted_at IS NOT NULL")
	}
	if filter.ProcessedBy != "" {
		db = db.Where("payrolls.processed_by = ?", filter.ProcessedBy)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(employees.name ILIKE ? OR employees.email ILIKE ?)", like, like)
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("payrolls.status IN ?", filter.Statuses)
	}
	if filter.DateFrom != nil {
		db = db.Where("payrolls.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("payrolls.created_at < ?", filter.DateTo.AddDate(0, 0, 1))
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns["created_at"]
	}
	direction := "DESC"
	if filter.Direction == "asc" {
		direction = "ASC"
	}

	db = db.
		Select("payrolls.*").
		Preload("Employee.Department").
		Preload("Processor").
		Order(column + " " + direction).
		Order("payrolls.id")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var payrolls []Payroll
	err := db.Find(&payrolls).Error
	return payrolls, total, err
}

func (r *repository) FindByID(ctx context.Context, id string, opts FindOptions) (*Payroll, error) {
	db := r.conn(ctx)
	switch {
	case opts.OnlyTrashed:
		db = db.Unscoped().Where("deleted_at IS NOT NULL")
	case opts.WithTrashed:
		db = db.Unscoped()
	}
	if opts.ForUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var payroll Payroll
	err := db.
		Preload("Employee.Department").
		Preload("Processor").
		First(&payroll, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payroll, nil
}

func (r *repository) Update(ctx context.Context, payroll *Payroll) error {
	return r.conn(ctx).Omit(clause.Associations).Save(payroll).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Payroll{}, "id = ?", id).Error
}

// Restore clears the soft-delete marker and resets the status to pending.
func (r *repository) Restore(ctx context.Context, id string) error {
	return r.conn(ctx).
		Unscoped().
		Model(&Payroll{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": nil,
			"status":     StatusPending,
			"updated_at": time.Now(),
		}).Error
}

func (r *repository) ForceDelete(ctx context.Context, id string) error {
	return r.conn(ctx).Unscoped().Delete(&Payroll{}, "id = ?", id).Error
}

// LockEmployee takes a row lock on the employee so that concurrent payroll
// writes for the same employee serialize on it. It reports whether the
// employee exists.
func (r *repository) LockEmployee(ctx context.Context, employeeID string) (bool, error) {
	var ids []string
	err := r.conn(ctx).
		Table("users").
		Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).
		Where("id = ? AND deleted_at IS NULL", employeeID).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

// HasOverlappingPeriod looks for active payrolls of the employee whose period
// intersects [periodStart, periodEnd], locking every match.
func (r *repository) HasOverlappingPeriod(
	ctx context.Context,
	employeeID string,
	periodStart time.Time,
	periodEnd time.Time,
	excludePayrollID *string,
) (bool, error) {
	db := r.conn(ctx).
		Model(&Payroll{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		Where("period_start <= ? AND period_end >= ?", periodEnd, periodStart)

	if excludePayrollID != nil && *excludePayrollID != "" {
		db = db.Where("id <> ?", *excludePayrollID)
	}

	var ids []string
	err := db.Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (r *repository) FindUserName(ctx context.Context, id string) (string, error) {
	var names []string
	err := r.conn(ctx).
		Table("users").
		Where("id = ?", id).
		Limit(1).
		Pluck("name", &names).Error
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}
