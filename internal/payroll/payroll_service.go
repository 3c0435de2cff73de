package payroll

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	payrollerrors "github.com/faisallbhr/simple-hris/internal/payroll/errors"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/salaryslip"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/pdf"
	"github.com/faisallbhr/simple-hris/internal/shared/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"

	maxNotesLength = 1000

	minPaymentProofSize = 100 * 1024
	maxPaymentProofSize = 500 * 1024

	paymentProofPrefix = "payment_proofs"
)

// Authorizer answers whether a user holds a permission.
type Authorizer interface {
	CanPerform(ctx context.Context, userID, permission string) (bool, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, actorID string, filter ListFilter) ([]PayrollResponse, int64, error)
	GetByID(ctx context.Context, actorID, id string, trashed bool) (PayrollResponse, error)
	Create(ctx context.Context, actorID string, req CreatePayrollRequest) (PayrollResponse, audit.Entry, error)
	Update(ctx context.Context, actorID, id string, req UpdatePayrollRequest) (PayrollResponse, audit.Entry, error)
	UpdateStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (PayrollResponse, audit.Entry, error)
	GenerateSlip(ctx context.Context, actorID, id string) (FileDownload, audit.Entry, error)
	UploadPaymentProof(ctx context.Context, actorID, id string, file PaymentProofFile) (PayrollResponse, audit.Entry, error)
	DownloadPaymentProof(ctx context.Context, actorID, id string) (FileDownload, audit.Entry, error)
	Delete(ctx context.Context, actorID, id string) (DeleteResponse, audit.Entry, error)
	Restore(ctx context.Context, actorID, id string) (PayrollResponse, audit.Entry, error)
	ForceDelete(ctx context.Context, actorID, id string) (DeleteResponse, audit.Entry, error)
	Export(ctx context.Context, actorID string, req ExportRequest) (FileDownload, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	slips    salaryslip.Repository
	authz    Authorizer
	renderer pdf.Renderer
	store    storage.BlobStore
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	slips salaryslip.Repository,
	authz Authorizer,
	renderer pdf.Renderer,
	store storage.BlobStore,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		slips:    slips,
		authz:    authz,
		renderer: renderer,
		store:    store,
		now:      time.Now,
		logger:   l,
	}
}

// authorize runs before any lookup or guard so that a denied actor learns
// nothing about the payroll.
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

// scopeToProcessor limits a listing to the payrolls the actor processed
// unless they may see every payroll.
func (s *service) scopeToProcessor(ctx context.Context, actorID string, filter *ListFilter) error {
	all, err := s.authz.CanPerform(ctx, actorID, rbac.PermViewAllPayrolls)
	if err != nil {
		return err
	}
	filter.ProcessedBy = ""
	if !all {
		filter.ProcessedBy = actorID
	}
	return nil
}

func (s *service) GetAll(ctx context.Context, actorID string, filter ListFilter) ([]PayrollResponse, int64, error) {
	permission := rbac.PermViewPayrolls
	if filter.Trashed {
		permission = rbac.PermViewPayrollsTrash
	}
	if err := s.authorize(ctx, actorID, permission); err != nil {
		return nil, 0, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	if err := s.scopeToProcessor(ctx, actorID, &filter); err != nil {
		return nil, 0, err
	}

	payrolls, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(payrolls), total, nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string, trashed bool) (PayrollResponse, error) {
	permission := rbac.PermViewPayrolls
	if trashed {
		permission = rbac.PermViewPayrollsTrash
	}
	if err := s.authorize(ctx, actorID, permission); err != nil {
		return PayrollResponse{}, err
	}

	payroll, err := s.find(ctx, s.repo, id, FindOptions{OnlyTrashed: trashed})
	if err != nil {
		return PayrollResponse{}, err
	}
	return mapToResponse(*payroll), nil
}

func (s *service) Create(ctx context.Context, actorID string, req CreatePayrollRequest) (PayrollResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermCreatePayrolls); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	processorID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, apperror.ErrUnauthorized
	}
	in, err := parsePayrollInput(req)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.guardOverlap(ctx, qtx, in, nil, payrollerrors.ErrPayrollOverlap); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	payroll := &Payroll{
		ID:          uuid.New(),
		EmployeeID:  in.employeeID,
		ProcessedBy: processorID,
		PeriodStart: in.periodStart,
		PeriodEnd:   in.periodEnd,
		BaseSalary:  in.baseSalary,
		Details:     in.details,
		NetSalary:   ComputeNetSalary(in.baseSalary, in.details),
		Status:      StatusPending,
	}

	if err := qtx.Create(ctx, payroll); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "created", "Payroll created by", actorID, payroll)

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	return s.reload(ctx, payroll), entry, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdatePayrollRequest) (PayrollResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermEditPayrolls); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	in, err := parsePayrollInput(req)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{ForUpdate: true})
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	if _, err := CheckTransition(payroll, EventUpdate); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	if payroll.ProcessedBy.String() != actorID {
		return PayrollResponse{}, audit.Entry{}, payrollerrors.ErrNotProcessor
	}

	self := payroll.ID.String()
	if err := s.guardOverlap(ctx, qtx, in, &self, payrollerrors.ErrUpdateOverlap); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	payroll.EmployeeID = in.employeeID
	payroll.Employee = nil
	payroll.PeriodStart = in.periodStart
	payroll.PeriodEnd = in.periodEnd
	payroll.BaseSalary = in.baseSalary
	payroll.Details = in.details
	payroll.NetSalary = ComputeNetSalary(in.baseSalary, in.details)

	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "updated", "Payroll updated by", actorID, payroll)

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	return s.reload(ctx, payroll), entry, nil
}

// UpdateStatus records an approve or reject decision. The notes column holds
// the approver's note and is cleared when none is given.
func (s *service) UpdateStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (PayrollResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermUpdateStatusPayrolls); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	event, ok := EventForStatus(req.Status)
	if !ok {
		return PayrollResponse{}, audit.Entry{}, payrollerrors.ErrInvalidStatusTransition
	}

	var notes *string
	if req.Notes != nil {
		trimmed := strings.TrimSpace(*req.Notes)
		if len([]rune(trimmed)) > maxNotesLength {
			fe := &apperror.FieldErrors{}
			fe.Add("notes", fmt.Sprintf("The notes field must not be greater than %d characters.", maxNotesLength))
			return PayrollResponse{}, audit.Entry{}, fe
		}
		if trimmed != "" {
			notes = &trimmed
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{ForUpdate: true})
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	next, err := CheckTransition(payroll, event)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	previous := payroll.Status
	payroll.Status = next
	payroll.Notes = notes

	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "updated", "Payroll status updated by", actorID, payroll)
	entry.Meta = map[string]any{"from": previous, "to": next}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	return s.reload(ctx, payroll), entry, nil
}

// GenerateSlip snapshots the payroll into a salary slip and renders it. The
// slip row, the generated flag and the PDF succeed together or not at all.
func (s *service) GenerateSlip(ctx context.Context, actorID, id string) (FileDownload, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermCreatePayrolls); err != nil {
		return FileDownload{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return FileDownload{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{ForUpdate: true})
	if err != nil {
		return FileDownload{}, audit.Entry{}, err
	}
	if _, err := CheckTransition(payroll, EventGenerateSlip); err != nil {
		return FileDownload{}, audit.Entry{}, err
	}

	logger := contextutil.GetLogger(ctx, s.logger).With(zap.String("payroll_id", id))
	fail := func(step string, err error) (FileDownload, audit.Entry, error) {
		logger.Error("generate pay slip failed", zap.String("step", step), zap.Error(err))
		return FileDownload{}, audit.Entry{}, payrollerrors.ErrSlipGenerationFailed.WithCause(err)
	}

	slip := &salaryslip.SalarySlip{
		ID:         uuid.New(),
		PayrollID:  payroll.ID,
		EmployeeID: payroll.EmployeeID,
		SlipData:   datatypes.NewJSONType(snapshot(payroll)),
	}
	if err := s.slips.WithTx(tx).Create(ctx, slip); err != nil {
		return fail("create slip", err)
	}

	payroll.IsGenerated = true
	if err := qtx.Update(ctx, payroll); err != nil {
		return fail("mark generated", err)
	}

	if payroll.Employee != nil {
		slip.Employee = &salaryslip.SlipEmployee{
			ID:    payroll.Employee.ID,
			Name:  payroll.Employee.Name,
			Email: payroll.Employee.Email,
		}
		if payroll.Employee.Department != nil {
			slip.Employee.Department = &salaryslip.SlipDepartment{
				ID:   payroll.Employee.Department.ID,
				Name: payroll.Employee.Department.Name,
			}
		}
	}
	content, err := s.renderer.Render(pdf.TemplatePayslip, salaryslip.PayslipData(*slip, s.now()))
	if err != nil {
		return fail("render", err)
	}

	entry := s.entry(ctx, qtx, "generated", "Payroll generated by", actorID, payroll)
	entry.Meta = map[string]any{"salary_slip_id": slip.ID.String()}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}

	return FileDownload{
		FileName:    fmt.Sprintf("payslip-%s.pdf", payroll.ID),
		ContentType: "application/pdf",
		Content:     content,
	}, entry, nil
}

// UploadPaymentProof stores the proof and marks the payroll paid. A stored
// blob is removed again when the database write does not commit.
func (s *service) UploadPaymentProof(ctx context.Context, actorID, id string, file PaymentProofFile) (PayrollResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermEditPayrolls); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	if err := validatePaymentProof(file); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{ForUpdate: true})
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	next, err := CheckTransition(payroll, EventUploadProof)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	now := s.now()
	path := fmt.Sprintf("%s/%s-%d.pdf", paymentProofPrefix, payroll.ID, now.Unix())
	ref, err := s.store.Put(ctx, path, file.Content, "application/pdf")
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, payrollerrors.ErrProofStorageFailed.WithCause(err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if _, err := s.store.Delete(context.WithoutCancel(ctx), ref); err != nil {
			contextutil.GetLogger(ctx, s.logger).Warn("remove orphaned payment proof failed",
				zap.String("path", ref),
				zap.Error(err),
			)
		}
	}()

	payroll.PaymentProof = &ref
	payroll.Status = next
	payroll.PaidAt = &now

	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "updated", "Payment proof uploaded by", actorID, payroll)

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	committed = true

	return s.reload(ctx, payroll), entry, nil
}

func (s *service) DownloadPaymentProof(ctx context.Context, actorID, id string) (FileDownload, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermViewPayrolls); err != nil {
		return FileDownload{}, audit.Entry{}, err
	}

	payroll, err := s.find(ctx, s.repo, id, FindOptions{})
	if err != nil {
		return FileDownload{}, audit.Entry{}, err
	}
	if payroll.PaymentProof == nil || *payroll.PaymentProof == "" {
		return FileDownload{}, audit.Entry{}, payrollerrors.ErrPaymentProofNotFound
	}

	content, err := s.store.Get(ctx, *payroll.PaymentProof)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return FileDownload{}, audit.Entry{}, payrollerrors.ErrPaymentProofNotFound
		}
		return FileDownload{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, s.repo, "downloaded", "Payment proof downloaded by", actorID, payroll)

	return FileDownload{
		FileName:    filepath.Base(*payroll.PaymentProof),
		ContentType: "application/pdf",
		Content:     content,
	}, entry, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) (DeleteResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermDeletePayrolls); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{ForUpdate: true})
	if err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}
	if _, err := CheckTransition(payroll, EventDelete); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "deleted", "Payroll deleted by", actorID, payroll)

	if err := tx.Commit(); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	return DeleteResponse{ID: payroll.ID.String(), Lifecycle: LifecycleTrashed}, entry, nil
}

// Restore brings a trashed payroll back as pending. Its period is checked
// again against the active payrolls of the same employee.
func (s *service) Restore(ctx context.Context, actorID, id string) (PayrollResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermRestorePayrolls); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{WithTrashed: true, ForUpdate: true})
	if err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	if _, err := CheckTransition(payroll, EventRestore); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	in := payrollInput{
		employeeID:  payroll.EmployeeID,
		periodStart: payroll.PeriodStart,
		periodEnd:   payroll.PeriodEnd,
	}
	self := payroll.ID.String()
	if err := s.guardOverlap(ctx, qtx, in, &self, payrollerrors.ErrRestoreOverlap); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	if err := qtx.Restore(ctx, id); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}
	payroll.DeletedAt = gorm.DeletedAt{}
	payroll.Status = StatusPending

	entry := s.entry(ctx, qtx, "restored", "Payroll restored by", actorID, payroll)

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, audit.Entry{}, err
	}

	return s.reload(ctx, payroll), entry, nil
}

// ForceDelete destroys a trashed payroll with its salary slips. The proof blob
// goes only after the rows are gone.
func (s *service) ForceDelete(ctx context.Context, actorID, id string) (DeleteResponse, audit.Entry, error) {
	if err := s.authorize(ctx, actorID, rbac.PermDeletePayrollsTrash); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := s.find(ctx, qtx, id, FindOptions{WithTrashed: true, ForUpdate: true})
	if err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}
	if _, err := CheckTransition(payroll, EventForceDelete); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	if err := s.slips.WithTx(tx).DeleteByPayrollID(ctx, id); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}
	if err := qtx.ForceDelete(ctx, id); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	entry := s.entry(ctx, qtx, "force_deleted", "Payroll deleted permanently by", actorID, payroll)

	if err := tx.Commit(); err != nil {
		return DeleteResponse{}, audit.Entry{}, err
	}

	if payroll.PaymentProof != nil && *payroll.PaymentProof != "" {
		if _, err := s.store.Delete(ctx, *payroll.PaymentProof); err != nil {
			contextutil.GetLogger(ctx, s.logger).Warn("remove payment proof failed",
				zap.String("payroll_id", id),
				zap.String("path", *payroll.PaymentProof),
				zap.Error(err),
			)
		}
	}

	return DeleteResponse{ID: payroll.ID.String(), Lifecycle: LifecycleDestroyed}, entry, nil
}

// guardOverlap locks the employee, then refuses the period when another
// active payroll of that employee intersects it. conflict is the error
// reported to the caller.
func (s *service) guardOverlap(ctx context.Context, qtx Repository, in payrollInput, excludeID *string, conflict error) error {
	exists, err := qtx.LockEmployee(ctx, in.employeeID.String())
	if err != nil {
		return err
	}
	if !exists {
		return payrollerrors.ErrEmployeeNotFound
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, in.employeeID.String(), in.periodStart, in.periodEnd, excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return conflict
	}
	return nil
}

func (s *service) find(ctx context.Context, repo Repository, id string, opts FindOptions) (*Payroll, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrPayrollNotFound
	}
	payroll, err := repo.FindByID(ctx, id, opts)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrPayrollNotFound
		}
		return nil, err
	}
	return payroll, nil
}

// reload reads the committed row with its relations, falling back to what is
// already in memory.
func (s *service) reload(ctx context.Context, payroll *Payroll) PayrollResponse {
	fresh, err := s.repo.FindByID(ctx, payroll.ID.String(), FindOptions{WithTrashed: true})
	if err != nil || fresh == nil {
		return mapToResponse(*payroll)
	}
	return mapToResponse(*fresh)
}

func (s *service) entry(ctx context.Context, repo Repository, action, message, actorID string, payroll *Payroll) audit.Entry {
	name, err := repo.FindUserName(ctx, actorID)
	if err != nil || name == "" {
		name = actorID
	}
	return audit.Entry{
		Action:    action,
		Message:   message + " " + name,
		ActorID:   actorID,
		Subject:   "payroll",
		SubjectID: payroll.ID.String(),
	}
}

type payrollInput struct {
	employeeID  uuid.UUID
	periodStart time.Time
	periodEnd   time.Time
	baseSalary  int64
	details     datatypes.JSON
}

func parsePayrollInput(req CreatePayrollRequest) (payrollInput, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return payrollInput{}, payrollerrors.ErrInvalidEmployeeID
	}

	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		return payrollInput{}, err
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		return payrollInput{}, err
	}
	if periodEnd.Before(periodStart) {
		return payrollInput{}, payrollerrors.ErrInvalidDateRange
	}

	if req.BaseSalary == nil || *req.BaseSalary < 0 {
		return payrollInput{}, payrollerrors.ErrNegativeBaseSalary
	}

	details, err := normalizeDetails(req.Details)
	if err != nil {
		return payrollInput{}, err
	}

	return payrollInput{
		employeeID:  employeeID,
		periodStart: periodStart,
		periodEnd:   periodEnd,
		baseSalary:  *req.BaseSalary,
		details:     details,
	}, nil
}

// normalizeDetails accepts a JSON value or a string holding one. Null and
// blank input store NULL.
func normalizeDetails(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return nil, payrollerrors.ErrInvalidDetails
		}
		trimmed = bytes.TrimSpace([]byte(encoded))
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return nil, nil
		}
	}

	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, payrollerrors.ErrInvalidDetails
	}
	return datatypes.JSON(trimmed), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func validatePaymentProof(file PaymentProofFile) error {
	if len(file.Content) == 0 {
		return payrollerrors.ErrPaymentProofRequired
	}
	if !strings.EqualFold(filepath.Ext(file.FileName), ".pdf") ||
		http.DetectContentType(file.Content) != "application/pdf" {
		return payrollerrors.ErrPaymentProofNotPDF
	}

	size := file.Size
	if size == 0 {
		size = int64(len(file.Content))
	}
	if size < minPaymentProofSize {
		return payrollerrors.ErrPaymentProofTooSmall
	}
	if size > maxPaymentProofSize {
		return payrollerrors.ErrPaymentProofTooLarge
	}
	return nil
}

func validateFilter(filter ListFilter) error {
	for _, status := range filter.Statuses {
		valid := false
		for _, known := range Statuses {
			if status == known {
				valid = true
				break
			}
		}
		if !valid {
			return payrollerrors.ErrInvalidStatusFilter
		}
	}
	if filter.Sort != "" && !IsSortable(filter.Sort) {
		return payrollerrors.ErrInvalidSort
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return payrollerrors.ErrInvalidDateRange
	}
	return nil
}

// snapshot freezes the breakdown in whole rupiah.
func snapshot(p *Payroll) salaryslip.SlipData {
	data := salaryslip.SlipData{
		Period: salaryslip.Period{
			Start: p.PeriodStart.Format(dateLayout),
			End:   p.PeriodEnd.Format(dateLayout),
		},
		BaseSalary: p.BaseSalary,
		Allowances: map[string]int64{},
		Deductions: map[string]int64{},
		NetSalary:  p.NetSalary,
	}

	b, ok := ParseBreakdown(p.Details)
	if !ok {
		return data
	}
	data.Bonus = b.Bonus.Round(0).IntPart()
	for _, c := range b.Allowances {
		data.Allowances[c.Name] = c.Amount.Round(0).IntPart()
	}
	for _, c := range b.Deductions {
		data.Deductions[c.Name] = c.Amount.Round(0).IntPart()
	}
	return data
}

func mapToResponse(p Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:              p.ID.String(),
		Employee:        PersonResponse{ID: p.EmployeeID.String()},
		ProcessedBy:     PersonResponse{ID: p.ProcessedBy.String()},
		PeriodStart:     p.PeriodStart.Format(dateLayout),
		PeriodEnd:       p.PeriodEnd.Format(dateLayout),
		BaseSalary:      p.BaseSalary,
		Details:         json.RawMessage(p.Details),
		NetSalary:       p.NetSalary,
		Status:          p.Status,
		Notes:           p.Notes,
		HasPaymentProof: p.PaymentProof != nil && *p.PaymentProof != "",
		IsGenerated:     p.IsGenerated,
		Lifecycle:       p.Lifecycle(),
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if len(p.Details) == 0 {
		resp.Details = nil
	}

	if p.Employee != nil {
		resp.Employee.Name = p.Employee.Name
		resp.Employee.Email = p.Employee.Email
		if p.Employee.Department != nil {
			resp.Employee.Department = p.Employee.Department.Name
		}
	}
	if p.Processor != nil {
		resp.ProcessedBy.Name = p.Processor.Name
		resp.ProcessedBy.Email = p.Processor.Email
	}

	if b, ok := ParseBreakdown(p.Details); ok {
		resp.Breakdown = &BreakdownResponse{
			Bonus:           b.Bonus.String(),
			Allowances:      mapComponents(b.Allowances),
			Deductions:      mapComponents(b.Deductions),
			TotalAllowances: b.TotalAllowances().String(),
			TotalDeductions: b.TotalDeductions().String(),
		}
	}

	if p.PaidAt != nil {
		v := p.PaidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &v
	}
	if p.DeletedAt.Valid {
		v := p.DeletedAt.Time.UTC().Format(time.RFC3339)
		resp.DeletedAt = &v
	}

	return resp
}

func mapComponents(items []Component) []ComponentResponse {
	out := make([]ComponentResponse, len(items))
	for i, c := range items {
		out[i] = ComponentResponse{Name: c.Name, Amount: c.Amount.String()}
	}
	return out
}

func mapToListResponse(payrolls []Payroll) []PayrollResponse {
	resp := make([]PayrollResponse, len(payrolls))
	for i, payroll := range payrolls {
		resp[i] = mapToResponse(payroll)
	}
	return resp
}
