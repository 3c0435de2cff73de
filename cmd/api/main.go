package main

import (
	"time"

	"github.com/faisallbhr/simple-hris/internal/app"
	"github.com/faisallbhr/simple-hris/internal/bootstrap"
	"github.com/faisallbhr/simple-hris/internal/config"
	"github.com/faisallbhr/simple-hris/internal/shared/apperror"
	"github.com/faisallbhr/simple-hris/internal/shared/audit"
	"github.com/faisallbhr/simple-hris/internal/shared/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	token.SetSecret(cfg.Auth.JWTSecret)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	err = bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.App.Port,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		audit.NewZapLogger(logger),
	)
	if err != nil {
		logger.Error("http server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
