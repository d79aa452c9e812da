package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/rhindhaugh/Attendance-Dashboard/api/swagger"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/handler"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/repository"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/service"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/cache"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/database"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/logger"
)

// @title Attendance Dashboard API
// @version 1.0.0
// @description Office attendance metrics computed from badge scans and the employee roster
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient redis.UniversalClient
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		} else {
			redisClient = client
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheRepo.Enabled())

	opts, err := service.DatasetOptions(cfg.Attendance)
	if err != nil {
		logr.Fatal("invalid attendance configuration", zap.Error(err))
	}
	datasets := service.NewDatasetService(
		repository.NewEmployeeRepository(db),
		repository.NewScanRepository(db),
		repository.NewStatusHistoryRepository(db),
		opts, cacheSvc, metricsSvc, logr,
	).WithImportRuns(repository.NewImportRunRepository(db))

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*time.Minute)
	if _, err := datasets.Load(loadCtx); err != nil {
		logr.Error("initial dataset load failed, serving 503 until reload", zap.Error(err))
	}
	cancelLoad()

	reloadSvc := service.NewReloadService(datasets, 10*time.Second, logr)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	reloadSvc.Start(workerCtx)
	reloadSvc.Every(workerCtx, cfg.Attendance.ReloadInterval)

	attendanceSvc := service.NewAttendanceService(datasets, cacheSvc, metricsSvc, service.AttendanceDefaultsFromConfig(cfg), validator.New(), logr)
	exportSvc := service.NewExportService(attendanceSvc, nil, logr, nil, nil)

	router := newRouter(routerDeps{
		Logger:         logr,
		Metrics:        metricsSvc,
		Attendance:     handler.NewAttendanceHandler(attendanceSvc, exportSvc, datasets).WithReloads(reloadSvc),
		System:         handler.NewMetricsHandler(metricsSvc, datasets),
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	stopWorkers()
	reloadSvc.Stop()
}
