package app

import (
	"context"
	"time"

	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/middleware"
	"github.com/faisallbhr/simple-hris/internal/rbac/infra"
	"github.com/faisallbhr/simple-hris/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure, migrates and seeds the schema, then
// mounts every module on router. The returned func releases connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		rdb.Close()
		sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := connection.ConnectBlobStore(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	enforcer, err := infra.NewEnforcer()
	if err != nil {
		cleanup()
		return nil, errors.Wrap(err, "casbin enforcer")
	}

	// 2. Schema
	if err := Migrate(gormDB); err != nil {
		cleanup()
		return nil, err
	}

	router.Use(middleware.ContextLogger(logger), middleware.AccessLog(logger))

	// 3. Register Modules & Routes
	rbacService, userRepo := registerModules(router, infrastructure{
		cfg:      cfg,
		db:       sqlDB,
		gormDB:   gormDB,
		rdb:      rdb,
		store:    store,
		enforcer: enforcer,
		logger:   logger,
	})

	// 4. Seed
	if err := rbacService.Seed(ctx); err != nil {
		cleanup()
		return nil, errors.Wrap(err, "seed rbac")
	}
	if err := seedAdmin(ctx, gormDB, userRepo, cfg, logger); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
