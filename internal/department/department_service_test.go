package department_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/department"
	departmenterrors "github.com/faisallbhr/simple-hris/internal/department/errors"
	departmentMock "github.com/faisallbhr/simple-hris/internal/department/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   department.Service
	repo      *departmentMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dbRedis, redisMock := redismock.NewClientMock()
	repo := departmentMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   department.NewService(db, repo, dbRedis),
		repo:      repo,
		redismock: redisMock,
	}
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestDepartmentService_GetAll(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	id := uuid.MustParse("c56a4180-65aa-42ec-a945-5fd21dec0538")

	expected := []department.DepartmentResponse{{
		ID:        id.String(),
		Name:      "Finance",
		CreatedAt: stamp.Format(time.RFC3339),
		UpdatedAt: stamp.Format(time.RFC3339),
	}}
	raw, err := json.Marshal(expected)
	require.NoError(t, err)

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(department.CacheKey).SetVal(string(raw))

		resp, err := deps.service.GetAll(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(department.CacheKey).RedisNil()
		deps.repo.EXPECT().FindAll(ctx).Return([]department.Department{
			{ID: id, Name: "Finance", CreatedAt: stamp, UpdatedAt: stamp},
		}, nil)
		deps.redismock.ExpectSet(department.CacheKey, raw, 30*time.Minute).SetVal("OK")

		resp, err := deps.service.GetAll(ctx)

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(department.CacheKey).RedisNil()
		deps.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx)

		assert.EqualError(t, err, "db down")
	})
}

func TestDepartmentService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, departmenterrors.ErrInvalidDepartmentID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id)

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNotFound)
	})
}

func TestDepartmentService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.NewString()

	t.Run("success trims and invalidates the cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		desc := "  Money matters "

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().NameExists(ctx, "Finance", "").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, d *department.Department) error {
			assert.Equal(t, "Finance", d.Name)
			require.NotNil(t, d.Description)
			assert.Equal(t, "Money matters", *d.Description)
			assert.NotEqual(t, uuid.Nil, d.ID)
			return nil
		})
		deps.redismock.ExpectDel(department.CacheKey).SetVal(1)

		resp, entry, err := deps.service.Create(ctx, actorID, department.CreateDepartmentRequest{Name: " Finance ", Description: &desc})

		require.NoError(t, err)
		assert.Equal(t, "Finance", resp.Name)
		assert.Equal(t, "created", entry.Action)
		assert.Equal(t, "Department Finance created", entry.Message)
		assert.Equal(t, actorID, entry.ActorID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("name taken", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().NameExists(ctx, "Finance", "").Return(true, nil)

		_, _, err := deps.service.Create(ctx, actorID, department.CreateDepartmentRequest{Name: "Finance"})

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNameTaken)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate key from the database", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().NameExists(ctx, "Finance", "").Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(gorm.ErrDuplicatedKey)

		_, _, err := deps.service.Create(ctx, actorID, department.CreateDepartmentRequest{Name: "Finance"})

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNameTaken)
	})
}

func TestDepartmentService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, Name: "Fin"}, nil)
		deps.repo.EXPECT().NameExists(ctx, "Finance", id.String()).Return(false, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(department.CacheKey).SetVal(1)

		resp, entry, err := deps.service.Update(ctx, "actor", id.String(), department.UpdateDepartmentRequest{Name: "Finance"})

		require.NoError(t, err)
		assert.Equal(t, "Finance", resp.Name)
		assert.Nil(t, resp.Description)
		assert.Equal(t, "updated", entry.Action)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("name taken by another department", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, Name: "Fin"}, nil)
		deps.repo.EXPECT().NameExists(ctx, "IT", id.String()).Return(true, nil)

		_, _, err := deps.service.Update(ctx, "actor", id.String(), department.UpdateDepartmentRequest{Name: "IT"})

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNameTaken)
	})
}

func TestDepartmentService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, Name: "Ops"}, nil)
		deps.repo.EXPECT().CountUsers(ctx, id.String()).Return(int64(0), nil)
		deps.repo.EXPECT().Delete(ctx, id.String()).Return(nil)
		deps.redismock.ExpectDel(department.CacheKey).SetVal(1)

		entry, err := deps.service.Delete(ctx, "actor", id.String())

		require.NoError(t, err)
		assert.Equal(t, "deleted", entry.Action)
		assert.Equal(t, id.String(), entry.SubjectID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("department still has users", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&department.Department{ID: id, Name: "Ops"}, nil)
		deps.repo.EXPECT().CountUsers(ctx, id.String()).Return(int64(2), nil)

		_, err := deps.service.Delete(ctx, "actor", id.String())

		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentInUse)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
