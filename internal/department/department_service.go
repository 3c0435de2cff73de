package department

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	departmenterrors "github.com/faisallbhr/simple-hris/internal/department/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CacheKey = "departments:all"
	cacheTTL = 30 * time.Minute
)

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateDepartmentRequest) (DepartmentResponse, audit.Entry, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateDepartmentRequest) (DepartmentResponse, audit.Entry, error)
	Delete(ctx context.Context, actorID, id string) (audit.Entry, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	actorID string,
	req CreateDepartmentRequest,
) (DepartmentResponse, audit.Entry, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	name := strings.TrimSpace(req.Name)
	taken, err := qtx.NameExists(ctx, name, "")
	if err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}
	if taken {
		return DepartmentResponse{}, audit.Entry{}, departmenterrors.ErrDepartmentNameTaken
	}

	dept := &Department{
		ID:          uuid.New(),
		Name:        name,
		Description: trimmed(req.Description),
	}

	if err := qtx.Create(ctx, dept); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return DepartmentResponse{}, audit.Entry{}, departmenterrors.ErrDepartmentNameTaken
		}
		return DepartmentResponse{}, audit.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}
	s.invalidate(ctx)

	return mapToResponse(*dept), entryFor("created", actorID, dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, CacheKey).Result(); err == nil {
			var resp []DepartmentResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := mapToListResponse(depts)

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, CacheKey, data, cacheTTL)
		}
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	dept, err := s.find(ctx, s.repo, id)
	if err != nil {
		return DepartmentResponse{}, err
	}
	return mapToResponse(*dept), nil
}

func (s *service) Update(
	ctx context.Context,
	actorID, id string,
	req UpdateDepartmentRequest,
) (DepartmentResponse, audit.Entry, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := s.find(ctx, qtx, id)
	if err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}

	name := strings.TrimSpace(req.Name)
	taken, err := qtx.NameExists(ctx, name, dept.ID.String())
	if err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}
	if taken {
		return DepartmentResponse{}, audit.Entry{}, departmenterrors.ErrDepartmentNameTaken
	}

	dept.Name = name
	dept.Description = trimmed(req.Description)

	if err := qtx.Update(ctx, dept); err != nil {
		if dbtx.IsUniqueViolation(err) {
			return DepartmentResponse{}, audit.Entry{}, departmenterrors.ErrDepartmentNameTaken
		}
		return DepartmentResponse{}, audit.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, audit.Entry{}, err
	}
	s.invalidate(ctx)

	return mapToResponse(*dept), entryFor("updated", actorID, dept), nil
}

// Delete soft deletes a department nobody belongs to anymore.
func (s *service) Delete(ctx context.Context, actorID, id string) (audit.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := s.find(ctx, qtx, id)
	if err != nil {
		return audit.Entry{}, err
	}

	members, err := qtx.CountUsers(ctx, dept.ID.String())
	if err != nil {
		return audit.Entry{}, err
	}
	if members > 0 {
		return audit.Entry{}, departmenterrors.ErrDepartmentInUse
	}

	if err := qtx.Delete(ctx, dept.ID.String()); err != nil {
		return audit.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return audit.Entry{}, err
	}
	s.invalidate(ctx)

	contextutil.GetLogger(ctx, s.logger).Info("department deleted", zap.String("department_id", dept.ID.String()))
	return entryFor("deleted", actorID, dept), nil
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*Department, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, departmenterrors.ErrInvalidDepartmentID
	}
	dept, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, departmenterrors.ErrDepartmentNotFound
		}
		return nil, err
	}
	return dept, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, CacheKey).Err(); err != nil {
		s.logger.Warn("invalidate departments cache failed", zap.Error(err))
	}
}

func entryFor(action, actorID string, dept *Department) audit.Entry {
	return audit.Entry{
		Action:    action,
		Message:   "Department " + dept.Name + " " + action,
		ActorID:   actorID,
		Subject:   "department",
		SubjectID: dept.ID.String(),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          dept.ID.String(),
		Name:        dept.Name,
		Description: dept.Description,
		CreatedAt:   dept.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
