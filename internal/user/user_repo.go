package user

import (
	"context"
	"database/sql"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FindOptions struct {
	WithTrashed bool
	OnlyTrashed bool
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindAll(ctx context.Context, filter ListFilter) ([]User, int64, error)
	FindOptions(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string, opts FindOptions) (*User, error)
	EmailExists(ctx context.Context, email string, excludeID string, withTrashed bool) (bool, error)
	DepartmentExists(ctx context.Context, id string) (bool, error)
	FindRolesByNames(ctx context.Context, names []string) ([]Role, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

var sortColumns = map[string]string{
	"name":            "users.name",
	"email":           "users.email",
	"created_at":      "users.created_at",
	"updated_at":      "users.updated_at",
	"department_name": "departments.name",
	"manager_name":    "managers.name",
}

func IsSortable(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]User, int64, error) {
	db := r.conn(ctx).
		Model(&User{}).
		Joins("LEFT JOIN departments ON departments.id = users.department_id").
		Joins("LEFT JOIN users AS managers ON managers.id = users.manager_id")

	if filter.Trashed {
		db = db.Unscoped().Where("users.deleted_at IS NOT NULL")
	}
	if filter.ExcludeID != "" {
		db = db.Where("users.id <> ?", filter.ExcludeID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(users.name ILIKE ? OR users.email ILIKE ?)", like, like)
	}
	if filter.DateFrom != nil {
		db = db.Where("users.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("users.created_at < ?", filter.DateTo.AddDate(0, 0, 1))
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
		Select("users.*").
		Preload("Department").
		Preload("Manager").
		Preload("Roles").
		Order(column + " " + direction).
		Order("users.id")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var users []User
	err := db.Find(&users).Error
	return users, total, err
}

func (r *repository) FindOptions(ctx context.Context) ([]User, error) {
	var users []User
	err := r.conn(ctx).
		Select("id", "name", "email", "department_id").
		Preload("Department").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindByID(ctx context.Context, id string, opts FindOptions) (*User, error) {
	db := r.conn(ctx)
	switch {
	case opts.OnlyTrashed:
		db = db.Unscoped().Where("deleted_at IS NOT NULL")
	case opts.WithTrashed:
		db = db.Unscoped()
	}

	var u User
	err := db.
		Preload("Department").
		Preload("Manager").
		Preload("Roles").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists compares case-insensitively. With withTrashed the lookup also
// sees soft-deleted users.
func (r *repository) EmailExists(ctx context.Context, email string, excludeID string, withTrashed bool) (bool, error) {
	db := r.conn(ctx).Model(&User{})
	if withTrashed {
		db = db.Unscoped()
	}
	db = db.Where("LOWER(email) = LOWER(?)", email)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) DepartmentExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("departments").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindRolesByNames(ctx context.Context, names []string) ([]Role, error) {
	var roles []Role
	if len(names) == 0 {
		return roles, nil
	}
	err := r.conn(ctx).Where("name IN ?", names).Find(&roles).Error
	return roles, err
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.conn(ctx).Omit(clause.Associations).Save(u).Error
}

type userRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (userRole) TableName() string {
	return "user_roles"
}

func (r *repository) ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	db := r.conn(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&userRole{}).Error; err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]userRole, len(roleIDs))
	for i, id := range roleIDs {
		rows[i] = userRole{UserID: userID, RoleID: id}
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&User{}, "id = ?", id).Error
}

func (r *repository) Restore(ctx context.Context, id string) error {
	return r.conn(ctx).
		Unscoped().
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": nil,
			"updated_at": time.Now(),
		}).Error
}

// ForceDelete removes the user, their role links, and detaches their
// subordinates.
func (r *repository) ForceDelete(ctx context.Context, id string) error {
	db := r.conn(ctx)
	if err := db.Where("user_id = ?", id).Delete(&userRole{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().
		Model(&User{}).
		Where("manager_id = ?", id).
		Update("manager_id", nil).Error; err != nil {
		return err
	}
	return db.Unscoped().Delete(&User{}, "id = ?", id).Error
}
