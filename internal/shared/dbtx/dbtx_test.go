package dbtx_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/shared/dbtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestConn_RunsOnGivenTx(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE things").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := sqlDB.Begin()
	require.NoError(t, err)

	err = dbtx.Conn(context.Background(), gdb, tx).Exec("UPDATE things SET x = 1").Error
	assert.NoError(t, err)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	wrapped := fmt.Errorf("insert user: %w", pgErr)

	assert.True(t, dbtx.IsUniqueViolation(wrapped))
	assert.True(t, dbtx.IsUniqueViolation(wrapped, "idx_users_email"))
	assert.False(t, dbtx.IsUniqueViolation(wrapped, "other"))
	assert.False(t, dbtx.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, dbtx.IsUniqueViolation(gorm.ErrDuplicatedKey))
}
