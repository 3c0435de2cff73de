package userimport

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=import_repo.go -destination=mock/import_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	EmailExists(ctx context.Context, email string) (bool, error)
	ListRoles(ctx context.Context) ([]user.Role, error)
	FindDepartmentIDByName(ctx context.Context, name string) (*uuid.UUID, error)
	FindManagerIDByName(ctx context.Context, name string) (*uuid.UUID, error)
	CreateUser(ctx context.Context, u *user.User, roleIDs []uuid.UUID) error
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

// EmailExists also sees soft-deleted users and users inserted earlier in the
// same transaction.
func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var ids []uuid.UUID
	err := r.conn(ctx).
		Unscoped().
		Model(&user.User{}).
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (r *repository) ListRoles(ctx context.Context) ([]user.Role, error) {
	var roles []user.Role
	err := r.conn(ctx).Order("name").Find(&roles).Error
	return roles, err
}

func (r *repository) FindDepartmentIDByName(ctx context.Context, name string) (*uuid.UUID, error) {
	return r.firstID(r.conn(ctx).Table("departments").Where("deleted_at IS NULL"), name)
}

func (r *repository) FindManagerIDByName(ctx context.Context, name string) (*uuid.UUID, error) {
	return r.firstID(r.conn(ctx).Model(&user.User{}), name)
}

func (r *repository) firstID(db *gorm.DB, name string) (*uuid.UUID, error) {
	var row struct{ ID uuid.UUID }
	err := db.Select("id").Where("name = ?", strings.TrimSpace(name)).Order("created_at").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.ID, nil
}

// CreateUser runs inside a savepoint so a failed insert leaves the outer
// transaction usable for the remaining rows.
func (r *repository) CreateUser(ctx context.Context, u *user.User, roleIDs []uuid.UUID) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}
		links := make([]rbac.UserRole, len(roleIDs))
		for i, id := range roleIDs {
			links[i] = rbac.UserRole{UserID: u.ID, RoleID: id}
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}
