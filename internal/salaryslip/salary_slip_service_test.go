package salaryslip_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/salaryslip"
	salarysliperrors "github.com/faisallbhr/simple-hris/internal/salaryslip/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/pdf"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeRepository struct {
	findByIDFn            func(ctx context.Context, id string) (*salaryslip.SalarySlip, error)
	findByEmployeeFn      func(ctx context.Context, employeeID string, page, pageSize int) ([]salaryslip.SalarySlip, int64, error)
	findByEmployeeSinceFn func(ctx context.Context, employeeID string, since time.Time) ([]salaryslip.SalarySlip, error)
}

func (f *fakeRepository) WithTx(tx *sql.Tx) salaryslip.Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, slip *salaryslip.SalarySlip) error { return nil }

func (f *fakeRepository) DeleteByPayrollID(ctx context.Context, payrollID string) error { return nil }

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*salaryslip.SalarySlip, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByEmployee(ctx context.Context, employeeID string, page, pageSize int) ([]salaryslip.SalarySlip, int64, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID, page, pageSize)
	}
	return nil, 0, nil
}

func (f *fakeRepository) FindByEmployeeSince(ctx context.Context, employeeID string, since time.Time) ([]salaryslip.SalarySlip, error) {
	if f.findByEmployeeSinceFn != nil {
		return f.findByEmployeeSinceFn(ctx, employeeID, since)
	}
	return nil, nil
}

type fakeAuthorizer struct {
	denied map[string]bool
}

func (f fakeAuthorizer) CanPerform(ctx context.Context, userID, permission string) (bool, error) {
	return !f.denied[permission], nil
}

type captureRenderer struct {
	data any
	err  error
}

func (r *captureRenderer) Render(templateName string, data any) ([]byte, error) {
	r.data = data
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF"), nil
}

func slipFor(employeeID uuid.UUID, net int64) salaryslip.SalarySlip {
	return salaryslip.SalarySlip{
		ID:         uuid.New(),
		PayrollID:  uuid.New(),
		EmployeeID: employeeID,
		SlipData: datatypes.NewJSONType(salaryslip.SlipData{
			Period:     salaryslip.Period{Start: "2026-01-01", End: "2026-01-31"},
			BaseSalary: 5000000,
			Bonus:      100000,
			Allowances: map[string]int64{"transport": 200000, "meal": 50000},
			Deductions: map[string]int64{"tax": 150000},
			NetSalary:  net,
		}),
		Employee: &salaryslip.SlipEmployee{ID: employeeID, Name: "Budi"},
	}
}

func TestService_ListMine(t *testing.T) {
	employeeID := uuid.New()
	repo := &fakeRepository{
		findByEmployeeFn: func(ctx context.Context, id string, page, pageSize int) ([]salaryslip.SalarySlip, int64, error) {
			assert.Equal(t, employeeID.String(), id)
			return []salaryslip.SalarySlip{slipFor(employeeID, 5200000)}, 3, nil
		},
		findByEmployeeSinceFn: func(ctx context.Context, id string, since time.Time) ([]salaryslip.SalarySlip, error) {
			assert.Equal(t, time.January, since.Month())
			assert.Equal(t, 1, since.Day())
			return []salaryslip.SalarySlip{slipFor(employeeID, 5200000), slipFor(employeeID, 5000000)}, nil
		},
	}
	svc := salaryslip.NewService(repo, fakeAuthorizer{}, &captureRenderer{})

	resp, err := svc.ListMine(context.Background(), employeeID.String(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Slips, 1)
	assert.Equal(t, "Budi", resp.Slips[0].EmployeeName)
	assert.Equal(t, salaryslip.YearlyStats{TotalEarned: 10200000, TotalSlips: 2, LastPayment: 5200000}, resp.YearlyStats)
}

func TestService_Download(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("owner downloads", func(t *testing.T) {
		slip := slipFor(owner, 5150000)
		renderer := &captureRenderer{}
		svc := salaryslip.NewService(&fakeRepository{
			findByIDFn: func(ctx context.Context, id string) (*salaryslip.SalarySlip, error) { return &slip, nil },
		}, fakeAuthorizer{denied: map[string]bool{rbac.PermViewPayrolls: true}}, renderer)

		file, entry, err := svc.Download(ctx, owner.String(), slip.ID.String())

		require.NoError(t, err)
		assert.Equal(t, "salary-slip-"+slip.ID.String()+".pdf", file.FileName)
		assert.Equal(t, "downloaded", entry.Action)

		data, ok := renderer.data.(pdf.PayslipData)
		require.True(t, ok)
		assert.Equal(t, "Budi", data.EmployeeName)
		assert.Equal(t, []pdf.PayslipLine{{Name: "meal", Amount: 50000}, {Name: "transport", Amount: 200000}}, data.Allowances)
		assert.Equal(t, int64(5150000), data.NetSalary)
	})

	t.Run("someone else's slip needs payroll access", func(t *testing.T) {
		slip := slipFor(owner, 5150000)
		svc := salaryslip.NewService(&fakeRepository{
			findByIDFn: func(ctx context.Context, id string) (*salaryslip.SalarySlip, error) { return &slip, nil },
		}, fakeAuthorizer{denied: map[string]bool{rbac.PermViewPayrolls: true}}, &captureRenderer{})

		_, _, err := svc.Download(ctx, uuid.NewString(), slip.ID.String())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("missing slip", func(t *testing.T) {
		svc := salaryslip.NewService(&fakeRepository{}, fakeAuthorizer{}, &captureRenderer{})

		_, _, err := svc.Download(ctx, owner.String(), uuid.NewString())

		assert.ErrorIs(t, err, salarysliperrors.ErrSalarySlipNotFound)
	})

	t.Run("render failure", func(t *testing.T) {
		slip := slipFor(owner, 1)
		svc := salaryslip.NewService(&fakeRepository{
			findByIDFn: func(ctx context.Context, id string) (*salaryslip.SalarySlip, error) { return &slip, nil },
		}, fakeAuthorizer{}, &captureRenderer{err: errors.New("boom")})

		_, _, err := svc.Download(ctx, owner.String(), slip.ID.String())

		assert.ErrorIs(t, err, salarysliperrors.ErrRenderFailed)
	})
}
