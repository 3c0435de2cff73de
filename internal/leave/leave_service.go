package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	leaveerrors "github.com/faisallbhr/simple-hris/internal/leave/errors"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Authorizer answers whether a user holds a permission.
type Authorizer interface {
	CanPerform(ctx context.Context, userID, permission string) (bool, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, audit.Entry, error)
	GetAll(ctx context.Context, actorID string, filter ListFilter) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveResponse, audit.Entry, error)
	UpdateStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (LeaveResponse, audit.Entry, error)
	Delete(ctx context.Context, actorID, id string) (audit.Entry, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	authz  Authorizer
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authz Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, authz: authz, now: time.Now, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, audit.Entry, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	userID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, apperror.ErrUnauthorized
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, actorID, startDate, endDate, "")
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	if overlap {
		l.Warn("leave overlap detected",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, audit.Entry{}, leaveerrors.ErrLeaveOverlap
	}

	lv := &Leave{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      req.Type,
		StartDate: startDate,
		EndDate:   endDate,
		TotalDays: totalDays(startDate, endDate),
		Reason:    trimmed(req.Reason),
		Status:    StatusPending,
	}
	if err := qtx.Create(ctx, lv); err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}

	l.Info("leave requested", zap.String("leave_id", lv.ID.String()))
	return mapToResponse(*lv), entryFor("created", "Leave request submitted", actorID, lv), nil
}

// GetAll lists every leave for reviewers and the caller's own otherwise.
func (s *service) GetAll(ctx context.Context, actorID string, filter ListFilter) ([]LeaveResponse, int64, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, 0, leaveerrors.ErrInvalidStatus
	}

	reviewer, err := s.isReviewer(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !reviewer {
		filter.UserID = actorID
	}

	leaves, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	lv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if lv.UserID.String() != actorID {
		reviewer, err := s.isReviewer(ctx, actorID)
		if err != nil {
			return LeaveResponse{}, err
		}
		if !reviewer {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
	}
	return mapToResponse(*lv), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveResponse, audit.Entry, error) {
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lv, err := s.find(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	if !lv.IsPending() {
		return LeaveResponse{}, audit.Entry{}, leaveerrors.ErrUpdateOnlyPending
	}
	if lv.UserID.String() != actorID {
		return LeaveResponse{}, audit.Entry{}, leaveerrors.ErrNotOwner
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, actorID, startDate, endDate, lv.ID.String())
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	if overlap {
		return LeaveResponse{}, audit.Entry{}, leaveerrors.ErrLeaveOverlap
	}

	lv.Type = req.Type
	lv.StartDate = startDate
	lv.EndDate = endDate
	lv.TotalDays = totalDays(startDate, endDate)
	lv.Reason = trimmed(req.Reason)

	if err := qtx.Update(ctx, lv); err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}

	return mapToResponse(*lv), entryFor("updated", "Leave request updated", actorID, lv), nil
}

func (s *service) UpdateStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (LeaveResponse, audit.Entry, error) {
	if req.Status != StatusApproved && req.Status != StatusRejected {
		return LeaveResponse{}, audit.Entry{}, leaveerrors.ErrInvalidStatus
	}
	reviewerID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lv, err := s.find(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	if !lv.IsPending() {
		return LeaveResponse{}, audit.Entry{}, leaveerrors.ErrUpdateOnlyPending
	}

	now := s.now().UTC()
	lv.Status = req.Status
	lv.Notes = trimmed(req.Notes)
	lv.ReviewedBy = &reviewerID
	lv.ReviewedAt = &now

	if err := qtx.Update(ctx, lv); err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, audit.Entry{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("leave reviewed",
		zap.String("leave_id", lv.ID.String()),
		zap.String("status", lv.Status),
	)
	entry := entryFor(req.Status, "Leave request "+req.Status, actorID, lv)
	return mapToResponse(*lv), entry, nil
}

// Delete removes a pending leave. Requesters may delete their own; reviewers
// may delete any.
func (s *service) Delete(ctx context.Context, actorID, id string) (audit.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lv, err := s.find(ctx, qtx, id)
	if err != nil {
		return audit.Entry{}, err
	}
	if lv.UserID.String() != actorID {
		reviewer, err := s.isReviewer(ctx, actorID)
		if err != nil {
			return audit.Entry{}, err
		}
		if !reviewer {
			return audit.Entry{}, leaveerrors.ErrLeaveNotFound
		}
	}
	if !lv.IsPending() {
		return audit.Entry{}, leaveerrors.ErrDeleteOnlyPending
	}

	if err := qtx.Delete(ctx, lv.ID.String()); err != nil {
		return audit.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return audit.Entry{}, err
	}

	return entryFor("deleted", "Leave request deleted", actorID, lv), nil
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*Leave, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	lv, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return lv, nil
}

func (s *service) isReviewer(ctx context.Context, actorID string) (bool, error) {
	if s.authz == nil {
		return false, nil
	}
	return s.authz.CanPerform(ctx, actorID, rbac.PermUpdateStatusLeaves)
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func totalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
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

func entryFor(action, message, actorID string, lv *Leave) audit.Entry {
	return audit.Entry{
		Action:    action,
		Message:   message,
		ActorID:   actorID,
		Subject:   "leave",
		SubjectID: lv.ID.String(),
		Meta: map[string]any{
			"user_id":    lv.UserID.String(),
			"start_date": lv.StartDate.Format(dateLayout),
			"end_date":   lv.EndDate.Format(dateLayout),
		},
	}
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:        l.ID.String(),
		UserID:    l.UserID.String(),
		Type:      l.Type,
		StartDate: l.StartDate.Format(dateLayout),
		EndDate:   l.EndDate.Format(dateLayout),
		TotalDays: l.TotalDays,
		Reason:    l.Reason,
		Status:    l.Status,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if l.User != nil {
		resp.UserName = l.User.Name
	}
	if l.ReviewedBy != nil {
		v := l.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if l.ReviewedAt != nil {
		v := l.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
