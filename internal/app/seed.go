package app

import (
	"context"
	"strings"

	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedAdmin creates the first administrator when SEED_ADMIN_EMAIL is set and
// no user (active or trashed) holds that email yet.
func seedAdmin(ctx context.Context, db *gorm.DB, repo user.Repository, cfg *config.Config, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Seed.AdminEmail))
	if email == "" || cfg.Seed.AdminPassword == "" {
		logger.Info("admin seed skipped")
		return nil
	}

	exists, err := repo.EmailExists(ctx, email, "", true)
	if err != nil {
		return errors.Wrap(err, "check admin email")
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := repo.WithTx(tx)
	admin := &user.User{
		ID:       uuid.New(),
		Name:     cfg.Seed.AdminName,
		Email:    email,
		Password: string(hashed),
	}
	if err := qtx.Create(ctx, admin); err != nil {
		return errors.Wrap(err, "create admin")
	}

	roles, err := qtx.FindRolesByNames(ctx, []string{rbac.RoleAdmin})
	if err != nil {
		return errors.Wrap(err, "find admin role")
	}
	if len(roles) == 0 {
		return errors.New("admin role missing, run rbac seed first")
	}
	if err := qtx.ReplaceRoles(ctx, admin.ID, []uuid.UUID{roles[0].ID}); err != nil {
		return errors.Wrap(err, "assign admin role")
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Info("admin seeded", zap.String("email", email))
	return nil
}
