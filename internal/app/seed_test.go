package app

import (
	"context"
	"database/sql"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	user.Repository

	exists  bool
	roles   []user.Role
	created *user.User
	granted []uuid.UUID
}

func (f *fakeUserRepo) WithTx(tx *sql.Tx) user.Repository { return f }

func (f *fakeUserRepo) EmailExists(ctx context.Context, email, excludeID string, withTrashed bool) (bool, error) {
	return f.exists, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.created = u
	return nil
}

func (f *fakeUserRepo) FindRolesByNames(ctx context.Context, names []string) ([]user.Role, error) {
	return f.roles, nil
}

func (f *fakeUserRepo) ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	f.granted = roleIDs
	return nil
}

func newSeedDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func seedConfig(email, password string) *config.Config {
	cfg := &config.Config{}
	cfg.Seed.AdminName = "Administrator"
	cfg.Seed.AdminEmail = email
	cfg.Seed.AdminPassword = password
	return cfg
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("skipped without credentials", func(t *testing.T) {
		gdb, mock := newSeedDB(t)
		repo := &fakeUserRepo{}

		err := seedAdmin(ctx, gdb, repo, seedConfig("", ""), zap.NewNop())

		require.NoError(t, err)
		assert.Nil(t, repo.created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing email is left alone", func(t *testing.T) {
		gdb, mock := newSeedDB(t)
		repo := &fakeUserRepo{exists: true}

		err := seedAdmin(ctx, gdb, repo, seedConfig("admin@example.com", "secret123"), zap.NewNop())

		require.NoError(t, err)
		assert.Nil(t, repo.created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates admin with role", func(t *testing.T) {
		gdb, mock := newSeedDB(t)
		roleID := uuid.New()
		repo := &fakeUserRepo{roles: []user.Role{{ID: roleID, Name: rbac.RoleAdmin}}}
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := seedAdmin(ctx, gdb, repo, seedConfig(" Admin@Example.com ", "secret123"), zap.NewNop())

		require.NoError(t, err)
		require.NotNil(t, repo.created)
		assert.Equal(t, "admin@example.com", repo.created.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.Password), []byte("secret123")))
		assert.Equal(t, []uuid.UUID{roleID}, repo.granted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing admin role rolls back", func(t *testing.T) {
		gdb, mock := newSeedDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := seedAdmin(ctx, gdb, &fakeUserRepo{}, seedConfig("admin@example.com", "secret123"), zap.NewNop())

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
