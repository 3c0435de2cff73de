package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"
	"github.com/faisallbhr/simple-hris/internal/shared/storage"
	usererrors "github.com/faisallbhr/simple-hris/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	dateLayout        = "2006-01-02"
	maxOptionsMatches = 10
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, actorID string, filter ListFilter) ([]UserResponse, int64, error)
	GetByID(ctx context.Context, id string, trashed bool) (UserResponse, error)
	GetOptions(ctx context.Context, query string) ([]OptionResponse, error)
	Create(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, audit.Entry, error)
	Update(ctx context.Context, actorID, id string, req UpdateUserRequest) (UserResponse, audit.Entry, error)
	Delete(ctx context.Context, actorID, id string) (audit.Entry, error)
	Restore(ctx context.Context, actorID, id string) (UserResponse, audit.Entry, error)
	ForceDelete(ctx context.Context, actorID, id string) (audit.Entry, error)
	Export(ctx context.Context, req ExportRequest) (FileDownload, error)
	RequestImport(ctx context.Context, actorID string, file ImportFile) (audit.Entry, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	store  storage.BlobStore
	cache  *OptionsCache
	now    func() time.Time
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	store storage.BlobStore,
	cache *OptionsCache,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		store:  store,
		cache:  cache,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) GetAll(ctx context.Context, actorID string, filter ListFilter) ([]UserResponse, int64, error) {
	if filter.Sort != "" && !IsSortable(filter.Sort) {
		return nil, 0, usererrors.ErrInvalidSort
	}
	filter.ExcludeID = actorID

	users, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string, trashed bool) (UserResponse, error) {
	u, err := s.find(ctx, s.repo, id, FindOptions{OnlyTrashed: trashed})
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

// GetOptions serves pickers. The full list comes from the cache; a query
// narrows it to the first few name or email matches.
func (s *service) GetOptions(ctx context.Context, query string) ([]OptionResponse, error) {
	options, err := s.cache.Get(ctx, s.loadOptions)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return options, nil
	}

	matches := make([]OptionResponse, 0, maxOptionsMatches)
	for _, o := range options {
		if strings.Contains(strings.ToLower(o.Name), query) || strings.Contains(strings.ToLower(o.Email), query) {
			matches = append(matches, o)
			if len(matches) == maxOptionsMatches {
				break
			}
		}
	}
	return matches, nil
}

func (s *service) loadOptions(ctx context.Context) ([]OptionResponse, error) {
	users, err := s.repo.FindOptions(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]OptionResponse, len(users))
	for i, u := range users {
		resp[i] = OptionResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email}
		if u.Department != nil {
			resp[i].Department = u.Department.Name
		}
	}
	return resp, nil
}

func (s *service) Create(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, audit.Entry, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	taken, err := qtx.EmailExists(ctx, email, "", true)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	if taken {
		return UserResponse{}, audit.Entry{}, usererrors.ErrEmailTaken
	}

	departmentID, managerID, err := s.resolveRefs(ctx, qtx, req.DepartmentID, req.ManagerID, "")
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	roles, err := s.resolveRoles(ctx, qtx, req.Roles)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return UserResponse{}, audit.Entry{}, err
	}

	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Password:     string(hashed),
		DepartmentID: departmentID,
		ManagerID:    managerID,
	}
	if err := qtx.Create(ctx, u); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return UserResponse{}, audit.Entry{}, usererrors.ErrEmailTaken
		}
		return UserResponse{}, audit.Entry{}, err
	}
	if err := qtx.ReplaceRoles(ctx, u.ID, roleIDs(roles)); err != nil {
		return UserResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "created", "User created by", actorID, u)

	if err := tx.Commit(); err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	s.cache.Invalidate(ctx)

	l.Info("user created", zap.String("user_id", u.ID.String()))
	u.Roles = roles
	return s.reload(ctx, u), entry, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateUserRequest) (UserResponse, audit.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u, err := s.find(ctx, qtx, id, FindOptions{})
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := qtx.EmailExists(ctx, email, u.ID.String(), true)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	if taken {
		return UserResponse{}, audit.Entry{}, usererrors.ErrEmailTaken
	}

	departmentID, managerID, err := s.resolveRefs(ctx, qtx, req.DepartmentID, req.ManagerID, u.ID.String())
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}

	var before []string
	if req.Roles != nil {
		before = u.RoleNames()
		roles, err := s.resolveRoles(ctx, qtx, req.Roles)
		if err != nil {
			return UserResponse{}, audit.Entry{}, err
		}
		if err := qtx.ReplaceRoles(ctx, u.ID, roleIDs(roles)); err != nil {
			return UserResponse{}, audit.Entry{}, err
		}
		u.Roles = roles
	}

	u.Name = strings.TrimSpace(req.Name)
	u.Email = email
	u.DepartmentID = departmentID
	u.ManagerID = managerID
	u.Department, u.Manager = nil, nil

	if err := qtx.Update(ctx, u); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return UserResponse{}, audit.Entry{}, usererrors.ErrEmailTaken
		}
		return UserResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "updated", "User updated by", actorID, u)
	if req.Roles != nil {
		entry.Meta = map[string]any{"old_roles": before, "new_roles": u.RoleNames()}
	}

	if err := tx.Commit(); err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	s.cache.Invalidate(ctx)

	return s.reload(ctx, u), entry, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) (audit.Entry, error) {
	if id == actorID {
		return audit.Entry{}, usererrors.ErrCannotDeleteSelf
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u, err := s.find(ctx, qtx, id, FindOptions{})
	if err != nil {
		return audit.Entry{}, err
	}
	if err := qtx.Delete(ctx, u.ID.String()); err != nil {
		return audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "deleted", "User deleted by", actorID, u)

	if err := tx.Commit(); err != nil {
		return audit.Entry{}, err
	}
	s.cache.Invalidate(ctx)

	return entry, nil
}

// Restore brings a trashed user back unless an active user took the email in
// the meantime.
func (s *service) Restore(ctx context.Context, actorID, id string) (UserResponse, audit.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u, err := s.find(ctx, qtx, id, FindOptions{WithTrashed: true})
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	if !u.IsTrashed() {
		return UserResponse{}, audit.Entry{}, usererrors.ErrUserNotTrashed
	}

	taken, err := qtx.EmailExists(ctx, u.Email, u.ID.String(), false)
	if err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	if taken {
		return UserResponse{}, audit.Entry{}, usererrors.ErrRestoreEmailTaken
	}

	if err := qtx.Restore(ctx, u.ID.String()); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return UserResponse{}, audit.Entry{}, usererrors.ErrRestoreEmailTaken
		}
		return UserResponse{}, audit.Entry{}, err
	}
	u.DeletedAt = gorm.DeletedAt{}

	entry := s.entry(ctx, qtx, "restored", "User restored by", actorID, u)

	if err := tx.Commit(); err != nil {
		return UserResponse{}, audit.Entry{}, err
	}
	s.cache.Invalidate(ctx)

	return s.reload(ctx, u), entry, nil
}

func (s *service) ForceDelete(ctx context.Context, actorID, id string) (audit.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u, err := s.find(ctx, qtx, id, FindOptions{WithTrashed: true})
	if err != nil {
		return audit.Entry{}, err
	}
	if !u.IsTrashed() {
		return audit.Entry{}, usererrors.ErrUserNotTrashed
	}

	entry := s.entry(ctx, qtx, "force_deleted", "User deleted permanently by", actorID, u)

	if err := qtx.ForceDelete(ctx, u.ID.String()); err != nil {
		return audit.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return audit.Entry{}, err
	}
	s.cache.Invalidate(ctx)

	return entry, nil
}

func (s *service) find(ctx context.Context, repo Repository, id string, opts FindOptions) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrUserNotFound
	}
	u, err := repo.FindByID(ctx, id, opts)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) reload(ctx context.Context, u *User) UserResponse {
	fresh, err := s.repo.FindByID(ctx, u.ID.String(), FindOptions{WithTrashed: true})
	if err != nil || fresh == nil {
		return mapToResponse(*u)
	}
	return mapToResponse(*fresh)
}

func (s *service) entry(ctx context.Context, repo Repository, action, message, actorID string, u *User) audit.Entry {
	name := actorID
	if actor, err := repo.FindByID(ctx, actorID, FindOptions{WithTrashed: true}); err == nil && actor != nil {
		name = actor.Name
	}
	return audit.Entry{
		Action:    action,
		Message:   message + " " + name,
		ActorID:   actorID,
		Subject:   "user",
		SubjectID: u.ID.String(),
	}
}

// resolveRefs checks the optional department and manager. selfID prevents a
// user from managing themselves.
func (s *service) resolveRefs(ctx context.Context, repo Repository, departmentID, managerID *string, selfID string) (*uuid.UUID, *uuid.UUID, error) {
	var dept, mgr *uuid.UUID

	if departmentID != nil && strings.TrimSpace(*departmentID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*departmentID))
		if err != nil {
			return nil, nil, usererrors.ErrDepartmentNotFound
		}
		ok, err := repo.DepartmentExists(ctx, id.String())
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, usererrors.ErrDepartmentNotFound
		}
		dept = &id
	}

	if managerID != nil && strings.TrimSpace(*managerID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*managerID))
		if err != nil {
			return nil, nil, usererrors.ErrManagerNotFound
		}
		if id.String() == selfID {
			return nil, nil, usererrors.ErrSelfManager
		}
		if _, err := repo.FindByID(ctx, id.String(), FindOptions{}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, usererrors.ErrManagerNotFound
			}
			return nil, nil, err
		}
		mgr = &id
	}

	return dept, mgr, nil
}

func (s *service) resolveRoles(ctx context.Context, repo Repository, names []string) ([]Role, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		unique = append(unique, n)
	}

	roles, err := repo.FindRolesByNames(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(unique) {
		return nil, usererrors.ErrInvalidRole
	}
	return roles, nil
}

func roleIDs(roles []Role) []uuid.UUID {
	ids := make([]uuid.UUID, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if u.Department != nil {
		resp.Department = &RefResponse{ID: u.Department.ID.String(), Name: u.Department.Name}
	}
	if u.Manager != nil {
		resp.Manager = &RefResponse{ID: u.Manager.ID.String(), Name: u.Manager.Name}
	}
	if u.DeletedAt.Valid {
		deletedAt := u.DeletedAt.Time.UTC().Format(time.RFC3339)
		resp.DeletedAt = &deletedAt
	}
	return resp
}
