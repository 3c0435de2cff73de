package app

import (
	"database/sql"

	"github.com/faisallbhr/simple-hris/internal/auth"
	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/department"
	"github.com/faisallbhr/simple-hris/internal/leave"
	"github.com/faisallbhr/simple-hris/internal/messaging/kafka"
	"github.com/faisallbhr/simple-hris/internal/notification"
	"github.com/faisallbhr/simple-hris/internal/payroll"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/salaryslip"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/notify"
	"github.com/faisallbhr/simple-hris/internal/shared/pdf"
	"github.com/faisallbhr/simple-hris/internal/shared/storage"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type infrastructure struct {
	cfg      *config.Config
	db       *sql.DB
	gormDB   *gorm.DB
	rdb      *redis.Client
	store    storage.BlobStore
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func registerModules(router *gin.Engine, infra infrastructure) (rbac.Service, user.Repository) {
	logger := infra.logger
	auditLogger := audit.NewZapLogger(logger)
	renderer := pdf.NewRenderer()
	notifier := notify.NewRedisNotifier(infra.rdb, logger)

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(infra.gormDB)
	authRepo := auth.NewRepository(infra.gormDB)
	userRepo := user.NewRepository(infra.gormDB)
	departmentRepo := department.NewRepository(infra.gormDB)
	leaveRepo := leave.NewRepository(infra.gormDB)
	payrollRepo := payroll.NewRepository(infra.gormDB)
	slipRepo := salaryslip.NewRepository(infra.gormDB)
	outboxRepo := kafka.NewOutboxRepository(infra.db)

	// --- RBAC Core ---
	rbacService := rbac.NewService(infra.db, rbacRepo, infra.enforcer, logger)

	// --- Services ---
	ttl := auth.TokenTTL{Access: infra.cfg.AccessTokenTTL(), Refresh: infra.cfg.RefreshTokenTTL()}
	authService := auth.NewService(authRepo, rbacService, rbacRepo, ttl, logger)
	optionsCache := user.NewOptionsCache(infra.rdb, logger)
	userService := user.NewService(infra.db, userRepo, outboxRepo, infra.store, optionsCache, logger)
	departmentService := department.NewService(infra.db, departmentRepo, infra.rdb, logger)
	leaveService := leave.NewService(infra.db, leaveRepo, rbacService, logger)
	payrollService := payroll.NewService(infra.db, payrollRepo, slipRepo, rbacService, renderer, infra.store, logger)
	slipService := salaryslip.NewService(slipRepo, rbacService, renderer, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, infra.cfg.IsProduction(), ttl, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	userHandler := user.NewHandler(userService, auditLogger, logger)
	departmentHandler := department.NewHandler(departmentService, auditLogger, logger)
	leaveHandler := leave.NewHandler(leaveService, auditLogger, logger)
	payrollHandler := payroll.NewHandler(payrollService, auditLogger, logger)
	slipHandler := salaryslip.NewHandler(slipService, auditLogger, logger)
	notificationHandler := notification.NewHandler(notifier, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
		user.RegisterRoutes(api, userHandler, rbacService, infra.rdb)
		department.RegisterRoutes(api, departmentHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, infra.rdb)
		salaryslip.RegisterRoutes(api, slipHandler)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return rbacService, userRepo
}
