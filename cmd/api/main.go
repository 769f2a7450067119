package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gestao-escolar-api/api/swagger"
	"github.com/noah-isme/gestao-escolar-api/internal/handler"
	"github.com/noah-isme/gestao-escolar-api/internal/repository"
	"github.com/noah-isme/gestao-escolar-api/internal/service"
	"github.com/noah-isme/gestao-escolar-api/pkg/cache"
	"github.com/noah-isme/gestao-escolar-api/pkg/config"
	"github.com/noah-isme/gestao-escolar-api/pkg/database"
	"github.com/noah-isme/gestao-escolar-api/pkg/logger"
)

// @title Gestão Escolar API
// @version 1.0.0
// @description Classes, students, enrollment and exports
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logr.Info("schema applied", zap.Strings("files", applied))
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, class cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.ClassTTL, logr, true)
	}

	identities, err := service.NewStaticIdentityProvider(cfg.Admin.Username, cfg.Admin.Password, 0)
	if err != nil {
		return fmt.Errorf("init identities: %w", err)
	}

	validate := service.NewValidator()
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)

	authSvc := service.NewAuthService(identities, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(studentRepo, cacheSvc, metrics, validate, logr)
	exportSvc := service.NewExportService(studentRepo, nil, metrics, service.ExportConfig{FlushEvery: cfg.Export.FlushEvery}, logr)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:          logr,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		EnableDocs:      cfg.Env != config.EnvProduction,
		ExposeMetrics:   metrics != nil,
		Auth:            handler.NewAuthHandler(authSvc),
		Students:        handler.NewStudentHandler(studentSvc),
		Classes:         handler.NewClassHandler(classSvc),
		Enrollments:     handler.NewEnrollmentHandler(enrollmentSvc),
		Exports:         handler.NewExportHandler(exportSvc),
		Metrics:         handler.NewMetricsHandler(metrics, db),
		RequestObserver: metrics,
		TokenVerifier:   authSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
