package salaryslip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faisallbhr/simple-hris/internal/rbac"
	salarysliperrors "github.com/faisallbhr/simple-hris/internal/salaryslip/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/pdf"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Authorizer answers whether a user holds a permission.
type Authorizer interface {
	CanPerform(ctx context.Context, userID, permission string) (bool, error)
}

//go:generate mockgen -source=salary_slip_service.go -destination=mock/salary_slip_service_mock.go -package=mock
type Service interface {
	ListMine(ctx context.Context, actorID string, page, pageSize int) (ListResponse, error)
	Download(ctx context.Context, actorID, id string) (FileDownload, audit.Entry, error)
}

type service struct {
	repo     Repository
	authz    Authorizer
	renderer pdf.Renderer
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, authz Authorizer, renderer pdf.Renderer, logger ...*zap.Logger) Service {
	l := zap.L().Named("salaryslip.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salaryslip.service")
	}
	return &service{
		repo:     repo,
		authz:    authz,
		renderer: renderer,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) authorize(ctx context.Context, actorID, permission string) error {
	ok, err := s.authz.CanPerform(ctx, actorID, permission)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, actorID string, page, pageSize int) (ListResponse, error) {
	if err := s.authorize(ctx, actorID, rbac.PermViewSalarySlips); err != nil {
		return ListResponse{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	slips, total, err := s.repo.FindByEmployee(ctx, actorID, page, pageSize)
	if err != nil {
		return ListResponse{}, err
	}

	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	yearly, err := s.repo.FindByEmployeeSince(ctx, actorID, yearStart)
	if err != nil {
		return ListResponse{}, err
	}

	resp := ListResponse{
		Slips:       make([]SlipResponse, len(slips)),
		YearlyStats: yearlyStats(yearly),
		Total:       total,
	}
	for i, slip := range slips {
		resp.Slips[i] = mapToResponse(slip)
	}
	return resp, nil
}

// Download renders a slip from its snapshot. Employees may download their own
// slips; anyone else needs payroll read access too.
func (s *service) Download(ctx context.Context, actorID, id string) (FileDownload, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermDownloadPaySlip); err != nil {
		return FileDownload{}, audit.Entry{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return FileDownload{}, audit.Entry{}, salarysliperrors.ErrInvalidSalarySlipID
	}

	slip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FileDownload{}, audit.Entry{}, salarysliperrors.ErrSalarySlipNotFound
		}
		return FileDownload{}, audit.Entry{}, err
	}

	if slip.EmployeeID.String() != actorID {
		if err := s.authorize(ctx, actorID, rbac.PermViewPayrolls); err != nil {
			return FileDownload{}, audit.Entry{}, err
		}
	}

	content, err := s.renderer.Render(pdf.TemplatePayslip, PayslipData(*slip, s.now()))
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("render salary slip failed",
			zap.String("salary_slip_id", id),
			zap.Error(err),
		)
		return FileDownload{}, audit.Entry{}, salarysliperrors.ErrRenderFailed.WithCause(err)
	}

	return FileDownload{
			FileName:    fmt.Sprintf("salary-slip-%s.pdf", slip.ID),
			ContentType: "application/pdf",
			Content:     content,
		}, audit.Entry{
			Action:    "downloaded",
			Message:   "Salary slip downloaded",
			ActorID:   actorID,
			Subject:   "salary_slip",
			SubjectID: slip.ID.String(),
		}, nil
}

// yearlyStats expects slips ordered newest first.
func yearlyStats(slips []SalarySlip) YearlyStats {
	stats := YearlyStats{TotalSlips: len(slips)}
	for i, slip := range slips {
		net := slip.SlipData.Data().NetSalary
		stats.TotalEarned += net
		if i == 0 {
			stats.LastPayment = net
		}
	}
	return stats
}

func mapToResponse(slip SalarySlip) SlipResponse {
	resp := SlipResponse{
		ID:        slip.ID.String(),
		PayrollID: slip.PayrollID.String(),
		SlipData:  slip.SlipData.Data(),
		CreatedAt: slip.CreatedAt.UTC().Format(time.RFC3339),
	}
	if slip.Employee != nil {
		resp.EmployeeName = slip.Employee.Name
	}
	return resp
}
