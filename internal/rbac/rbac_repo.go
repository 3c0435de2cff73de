package rbac

import (
	"context"
	"database/sql"
	"errors"

	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	GetRoleNamesForUser(ctx context.Context, userID string) ([]string, error)
	GetRolePermissions(ctx context.Context, roleNames []string) ([]RolePermissionRow, error)

	// Management
	ListRoles(ctx context.Context) ([]Role, error)
	FindRoleByID(ctx context.Context, id string) (*Role, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id uuid.UUID) error
	ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error

	ListPermissions(ctx context.Context) ([]Permission, error)
	FindPermissionsByNames(ctx context.Context, names []string) ([]Permission, error)

	// Seeding
	EnsurePermission(ctx context.Context, name string) (*Permission, error)
	EnsureRole(ctx context.Context, name string) (*Role, bool, error)
	GrantPermissions(ctx context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error
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

type rolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (rolePermission) TableName() string {
	return "role_permissions"
}

func (r *repository) GetRoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.conn(ctx).
		Table("user_roles").
		Select("roles.name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	return names, err
}

func (r *repository) GetRolePermissions(ctx context.Context, roleNames []string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	if len(roleNames) == 0 {
		return result, nil
	}

	err := r.conn(ctx).
		Table("role_permissions").
		Select("roles.name AS role_name, permissions.name AS permission").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.name IN ?", roleNames).
		Scan(&result).Error

	return result, err
}

func (r *repository) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	err := r.conn(ctx).Preload("Permissions").Order("name").Find(&roles).Error
	return roles, err
}

func (r *repository) FindRoleByID(ctx context.Context, id string) (*Role, error) {
	var role Role
	if err := r.conn(ctx).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	if err := r.conn(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) CreateRole(ctx context.Context, role *Role) error {
	return r.conn(ctx).Omit("Permissions").Create(role).Error
}

func (r *repository) UpdateRole(ctx context.Context, role *Role) error {
	return r.conn(ctx).Model(role).Omit("Permissions").Updates(map[string]any{"name": role.Name}).Error
}

func (r *repository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	db := r.conn(ctx)
	if err := db.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&Role{}, "id = ?", id).Error
}

func (r *repository) ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error {
	if err := r.conn(ctx).Exec("DELETE FROM role_permissions WHERE role_id = ?", roleID).Error; err != nil {
		return err
	}
	return r.GrantPermissions(ctx, roleID, permIDs)
}

func (r *repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	err := r.conn(ctx).Order("name").Find(&perms).Error
	return perms, err
}

func (r *repository) FindPermissionsByNames(ctx context.Context, names []string) ([]Permission, error) {
	var perms []Permission
	if len(names) == 0 {
		return perms, nil
	}
	err := r.conn(ctx).Where("name IN ?", names).Find(&perms).Error
	return perms, err
}

func (r *repository) EnsurePermission(ctx context.Context, name string) (*Permission, error) {
	perm := Permission{Name: name}
	err := r.conn(ctx).Where(Permission{Name: name}).FirstOrCreate(&perm).Error
	return &perm, err
}

// EnsureRole returns the named role, creating it when missing. The boolean
// reports whether it was created.
func (r *repository) EnsureRole(ctx context.Context, name string) (*Role, bool, error) {
	var role Role
	err := r.conn(ctx).Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	role = Role{Name: name}
	if err := r.conn(ctx).Omit("Permissions").Create(&role).Error; err != nil {
		return nil, false, err
	}
	return &role, true, nil
}

func (r *repository) GrantPermissions(ctx context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error {
	if len(permIDs) == 0 {
		return nil
	}
	rows := make([]rolePermission, 0, len(permIDs))
	for _, id := range permIDs {
		rows = append(rows, rolePermission{RoleID: roleID, PermissionID: id})
	}
	return r.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
