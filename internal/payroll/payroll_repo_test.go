package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/payroll"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPayrollRepoTest(t *testing.T) (payroll.Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return payroll.NewRepository(gdb), mock
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// Both bounds are inclusive, trashed rows are out of scope and every match is
// locked until the transaction ends.
const overlapQuery = `SELECT "id" FROM "payrolls" WHERE employee_id = \$1 AND \(period_start <= \$2 AND period_end >= \$3\) AND "payrolls"."deleted_at" IS NULL FOR UPDATE$`

func TestRepository_HasOverlappingPeriod(t *testing.T) {
	ctx := context.Background()
	employeeID := "e-1"

	// An active payroll covers 2025-01-01..2025-01-31; the rows below are what
	// the database returns for each requested period.
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		rows  *sqlmock.Rows
		want  bool
	}{
		{
			name:  "straddles the end of the stored period",
			start: day("2025-01-15"),
			end:   day("2025-02-15"),
			rows:  sqlmock.NewRows([]string{"id"}).AddRow("p-1"),
			want:  true,
		},
		{
			name:  "starts on the last stored day",
			start: day("2025-01-31"),
			end:   day("2025-02-27"),
			rows:  sqlmock.NewRows([]string{"id"}).AddRow("p-1"),
			want:  true,
		},
		{
			name:  "the following month",
			start: day("2025-02-01"),
			end:   day("2025-02-28"),
			rows:  sqlmock.NewRows([]string{"id"}),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupPayrollRepoTest(t)
			mock.ExpectQuery(overlapQuery).
				WithArgs(employeeID, tt.end, tt.start).
				WillReturnRows(tt.rows)

			overlap, err := repo.HasOverlappingPeriod(ctx, employeeID, tt.start, tt.end, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.want, overlap)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_HasOverlappingPeriod_ExcludesSelf(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPayrollRepoTest(t)
	self := "p-1"
	start, end := day("2025-01-01"), day("2025-01-31")

	mock.ExpectQuery(`SELECT "id" FROM "payrolls" WHERE employee_id = \$1 AND \(period_start <= \$2 AND period_end >= \$3\) AND id <> \$4 AND "payrolls"."deleted_at" IS NULL FOR UPDATE$`).
		WithArgs("e-1", end, start, self).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	overlap, err := repo.HasOverlappingPeriod(ctx, "e-1", start, end, &self)

	require.NoError(t, err)
	assert.False(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasOverlappingPeriod_EmptyExcludeIgnored(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPayrollRepoTest(t)
	empty := ""
	start, end := day("2025-01-01"), day("2025-01-31")

	mock.ExpectQuery(overlapQuery).
		WithArgs("e-1", end, start).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-9"))

	overlap, err := repo.HasOverlappingPeriod(ctx, "e-1", start, end, &empty)

	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockEmployee(t *testing.T) {
	ctx := context.Background()
	query := `SELECT "id" FROM "users" WHERE id = \$1 AND deleted_at IS NULL FOR NO KEY UPDATE$`

	t.Run("existing employee", func(t *testing.T) {
		repo, mock := setupPayrollRepoTest(t)
		mock.ExpectQuery(query).
			WithArgs("e-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("e-1"))

		ok, err := repo.LockEmployee(ctx, "e-1")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or trashed employee", func(t *testing.T) {
		repo, mock := setupPayrollRepoTest(t)
		mock.ExpectQuery(query).
			WithArgs("e-2").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		ok, err := repo.LockEmployee(ctx, "e-2")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindAll_ProcessedBy(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPayrollRepoTest(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payrolls" JOIN users AS employees .* WHERE payrolls\.processed_by = \$1 AND "payrolls"."deleted_at" IS NULL`).
		WithArgs("hr-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT payrolls\.\* FROM "payrolls" JOIN users AS employees .* WHERE payrolls\.processed_by = \$1 AND "payrolls"."deleted_at" IS NULL ORDER BY payrolls\.created_at DESC,payrolls\.id`).
		WithArgs("hr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, total, err := repo.FindAll(ctx, payroll.ListFilter{ProcessedBy: "hr-1"})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
