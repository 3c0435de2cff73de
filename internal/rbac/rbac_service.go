package rbac

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/faisallbhr/simple-hris/internal/domain"
	rbacerrors "github.com/faisallbhr/simple-hris/internal/rbac/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)
	CanPerform(ctx context.Context, userID, permission string) (bool, error)
	PermissionsForUser(ctx context.Context, userID string) ([]string, error)

	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)

	Seed(ctx context.Context) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) loadUserPolicyUnlocked(ctx context.Context, userID string) error {
	s.enforcer.ClearPolicy()

	roles, err := s.repo.GetRoleNamesForUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, role := range roles {
		if _, err := s.enforcer.AddGroupingPolicy(userID, role); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(ctx, roles)
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleName, rp.Permission); err != nil {
			return err
		}
	}

	contextutil.GetLogger(ctx, s.logger).Debug("rbac policy loaded",
		zap.String("user_id", userID),
		zap.Int("roles", len(roles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadUserPolicyUnlocked(ctx, req.UserID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.Permission)
	if err != nil {
		return false, err
	}

	contextutil.GetLogger(ctx, s.logger).Debug("rbac enforce result",
		zap.String("user_id", req.UserID),
		zap.String("permission", req.Permission),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) CanPerform(ctx context.Context, userID, permission string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.Enforce(ctx, domain.EnforceRequest{UserID: userID, Permission: permission})
}

func (s *service) PermissionsForUser(ctx context.Context, userID string) ([]string, error) {
	roles, err := s.repo.GetRoleNamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rolePerms, err := s.repo.GetRolePermissions(ctx, roles)
	if err != nil {
		return nil, err
	}

	perms := make([]string, 0, len(rolePerms))
	for _, rp := range rolePerms {
		if !slices.Contains(perms, rp.Permission) {
			perms = append(perms, rp.Permission)
		}
	}
	slices.Sort(perms)
	return perms, nil
}

func (s *service) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	return mapToRoleListResponse(roles), nil
}

func (s *service) GetRole(ctx context.Context, id string) (RoleResponse, error) {
	role, err := s.findRole(ctx, s.repo, id)
	if err != nil {
		return RoleResponse{}, err
	}
	return mapToRoleResponse(*role), nil
}

func (s *service) CreateRole(ctx context.Context, req CreateRoleRequest) (RoleResponse, error) {
	name := strings.TrimSpace(req.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RoleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	perms, err := s.resolvePermissions(ctx, qtx, req.Permissions)
	if err != nil {
		return RoleResponse{}, err
	}

	role := &Role{ID: uuid.New(), Name: name}
	if err := qtx.CreateRole(ctx, role); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return RoleResponse{}, rbacerrors.ErrRoleNameTaken
		}
		return RoleResponse{}, err
	}

	if err := qtx.ReplaceRolePermissions(ctx, role.ID, permissionIDs(perms)); err != nil {
		return RoleResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RoleResponse{}, err
	}

	role.Permissions = perms
	return mapToRoleResponse(*role), nil
}

func (s *service) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (RoleResponse, error) {
	name := strings.TrimSpace(req.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RoleResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	role, err := s.findRole(ctx, qtx, id)
	if err != nil {
		return RoleResponse{}, err
	}
	if isBuiltInRole(role.Name) && role.Name != name {
		return RoleResponse{}, rbacerrors.ErrProtectedRole
	}

	perms, err := s.resolvePermissions(ctx, qtx, req.Permissions)
	if err != nil {
		return RoleResponse{}, err
	}

	role.Name = name
	if err := qtx.UpdateRole(ctx, role); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return RoleResponse{}, rbacerrors.ErrRoleNameTaken
		}
		return RoleResponse{}, err
	}

	if err := qtx.ReplaceRolePermissions(ctx, role.ID, permissionIDs(perms)); err != nil {
		return RoleResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RoleResponse{}, err
	}

	role.Permissions = perms
	return mapToRoleResponse(*role), nil
}

func (s *service) DeleteRole(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	role, err := s.findRole(ctx, qtx, id)
	if err != nil {
		return err
	}
	if isBuiltInRole(role.Name) {
		return rbacerrors.ErrProtectedRole
	}

	if err := qtx.DeleteRole(ctx, role.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		resp = append(resp, PermissionResponse{ID: p.ID.String(), Name: p.Name})
	}
	return resp, nil
}

// Seed creates every known permission and the built-in roles. Freshly
// created roles receive their default grants. The admin role is always
// topped up with every permission.
func (s *service) Seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	byName := make(map[string]uuid.UUID, len(AllPermissions))
	for _, name := range AllPermissions {
		perm, err := qtx.EnsurePermission(ctx, name)
		if err != nil {
			return err
		}
		byName[name] = perm.ID
	}

	for _, roleName := range []string{RoleAdmin, RoleHR, RoleEmployee} {
		role, created, err := qtx.EnsureRole(ctx, roleName)
		if err != nil {
			return err
		}
		if !created && roleName != RoleAdmin {
			continue
		}

		ids := make([]uuid.UUID, 0, len(DefaultRolePermissions[roleName]))
		for _, name := range DefaultRolePermissions[roleName] {
			ids = append(ids, byName[name])
		}
		if err := qtx.GrantPermissions(ctx, role.ID, ids); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("rbac seed completed", zap.Int("permissions", len(byName)))
	return nil
}

func (s *service) findRole(ctx context.Context, repo Repository, id string) (*Role, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, rbacerrors.ErrRoleNotFound
	}
	role, err := repo.FindRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func (s *service) resolvePermissions(ctx context.Context, repo Repository, names []string) ([]Permission, error) {
	unique := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && !slices.Contains(unique, n) {
			unique = append(unique, n)
		}
	}

	perms, err := repo.FindPermissionsByNames(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(perms) != len(unique) {
		return nil, rbacerrors.ErrUnknownPermission
	}
	return perms, nil
}

func permissionIDs(perms []Permission) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids
}

func isBuiltInRole(name string) bool {
	return name == RoleAdmin || name == RoleHR || name == RoleEmployee
}

func mapToRoleResponse(r Role) RoleResponse {
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, p.Name)
	}
	slices.Sort(perms)

	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func mapToRoleListResponse(roles []Role) []RoleResponse {
	resp := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, mapToRoleResponse(r))
	}
	return resp
}
