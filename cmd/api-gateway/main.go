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

	"github.com/noah-isme/piano-academy-api/internal/repository"
	"github.com/noah-isme/piano-academy-api/internal/service"
	"github.com/noah-isme/piano-academy-api/pkg/cache"
	"github.com/noah-isme/piano-academy-api/pkg/config"
	"github.com/noah-isme/piano-academy-api/pkg/database"
	"github.com/noah-isme/piano-academy-api/pkg/fieldcrypto"
	"github.com/noah-isme/piano-academy-api/pkg/jobs"
	"github.com/noah-isme/piano-academy-api/pkg/logger"
	"github.com/noah-isme/piano-academy-api/pkg/ratelimit"
	"github.com/noah-isme/piano-academy-api/pkg/storage"
)

// @title Piano Academy API
// @version 1.0.0
// @description Back office, parent portal and attendance kiosk for a piano academy.
// @BasePath /api/v1
// @schemes http https
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
		if cfg.JWT.Secret == "dev_secret" || cfg.Crypto.FieldKey == "" {
			logr.Fatal("JWT_SECRET and FIELD_ENCRYPTION_KEY must be set in production")
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	uploads, err := storage.NewLocalStorage(cfg.Upload.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	cipher, err := fieldcrypto.New(fieldKey(cfg))
	if err != nil {
		logr.Fatal("failed to init field cipher", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	users := repository.NewUserRepository(db)
	families := repository.NewFamilyRepository(db)
	students := repository.NewStudentRepository(db)
	teachers := repository.NewTeacherRepository(db)
	schedules := repository.NewScheduleRepository(db)
	weekly := repository.NewWeeklyScheduleRepository(db)
	payments := repository.NewPaymentRepository(db)
	attendances := repository.NewAttendanceRepository(db)
	revenues := repository.NewRevenueRepository(db)
	expenses := repository.NewExpenseRepository(db)
	payhere := repository.NewPayhereRepository(db)

	var cacheRepo service.CacheRepository
	if rdb != nil {
		cacheRepo = repository.NewCacheRepository(rdb, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Finance.CacheTTL, logr)
	exporter := service.NewExportService(logr)

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	financeSvc := service.NewFinanceService(revenues, expenses, payhere, service.FinanceServiceConfig{
		Cache:    cacheSvc,
		Exporter: exporter,
		CacheTTL: cfg.Finance.CacheTTL,
	}, validate, logr)
	studentSvc := service.NewStudentService(students, validate, logr)
	scheduleSvc := service.NewScheduleService(schedules, validate, logr)

	svc := services{
		auth:     authSvc,
		family:   service.NewFamilyService(families, students, cipher, validate, logr),
		student:  studentSvc,
		teacher:  service.NewTeacherService(teachers, validate, logr),
		schedule: scheduleSvc,
		weekly:   service.NewWeeklyScheduleService(weekly, schedules, validate, logr),
		payment:  service.NewPaymentService(payments, students, families, validate, logr),
		finance:  financeSvc,
		payhere: service.NewPayhereService(payhere, uploads, cache.NewLocker(rdb), financeSvc, exporter, metrics, service.PayhereConfig{
			MaxUploadBytes:  cfg.Upload.MaxBytes,
			LockTTL:         cfg.Upload.LockTTL,
			PlaceholderData: cfg.PayHere.PlaceholderData,
		}, logr),
		portal: service.NewPortalService(service.PortalDeps{
			Families:    families,
			Students:    students,
			Attendances: attendances,
			Payments:    payments,
			Tokens:      authSvc,
			Cipher:      cipher,
		}, cfg.Portal.SessionTTL, validate, logr),
		attendance: service.NewAttendanceService(attendances, students, validate, logr),
		metrics:    metrics,
	}

	scheduler := jobs.NewScheduler(jobs.SchedulerConfig{Timeout: time.Minute, Logger: logr})
	loginLimiter, kioskLimiter := newLimiters(cfg, rdb, scheduler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := func(ctx context.Context) error {
		removed, err := uploads.CleanupOlderThan(cfg.Upload.Retention)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logr.Info("expired uploads removed", zap.Int("files", len(removed)))
		}
		return nil
	}
	if _, err := scheduler.Add("upload-retention", cfg.Upload.RetentionSchedule, cleanup); err != nil {
		logr.Fatal("invalid upload retention schedule", zap.String("schedule", cfg.Upload.RetentionSchedule), zap.Error(err))
	}
	_ = scheduler.RunOnce(ctx, "upload-retention", cleanup)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	r := newRouter(cfg, logr, routerDeps{
		services:     svc,
		audit:        users,
		db:           db,
		loginLimiter: loginLimiter,
		kioskLimiter: kioskLimiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newLimiters(cfg *config.Config, rdb *redis.Client, scheduler *jobs.Scheduler) (login, kiosk ratelimit.Limiter) {
	loginMax, kioskMax := cfg.RateLimit.LoginMax, cfg.RateLimit.KioskMax
	if loginMax <= 0 {
		loginMax = 5
	}
	if kioskMax <= 0 {
		kioskMax = 60
	}

	if cfg.RateLimit.Backend == config.RateLimitBackendRedis && rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, "login", loginMax, cfg.RateLimit.Window),
			ratelimit.NewRedisLimiter(rdb, "kiosk", kioskMax, cfg.RateLimit.Window)
	}

	loginMem := ratelimit.NewMemoryLimiter(loginMax, cfg.RateLimit.Window)
	kioskMem := ratelimit.NewMemoryLimiter(kioskMax, cfg.RateLimit.Window)
	sweep := func(context.Context) error {
		loginMem.Sweep()
		kioskMem.Sweep()
		return nil
	}
	if _, err := scheduler.Add("ratelimit-sweep", "@every 1m", sweep); err != nil {
		panic(err)
	}
	return loginMem, kioskMem
}

// fieldKey falls back to the JWT secret outside production so a fresh
// checkout starts without extra setup.
func fieldKey(cfg *config.Config) string {
	if cfg.Crypto.FieldKey != "" {
		return cfg.Crypto.FieldKey
	}
	return cfg.JWT.Secret
}
