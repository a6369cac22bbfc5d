package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/skyward-dev/flightline-api/api/swagger"
	"github.com/skyward-dev/flightline-api/internal/handler"
	"github.com/skyward-dev/flightline-api/internal/middleware"
	"github.com/skyward-dev/flightline-api/internal/models"
	"github.com/skyward-dev/flightline-api/internal/repository"
	"github.com/skyward-dev/flightline-api/internal/service"
	"github.com/skyward-dev/flightline-api/pkg/cache"
	"github.com/skyward-dev/flightline-api/pkg/config"
	"github.com/skyward-dev/flightline-api/pkg/database"
	"github.com/skyward-dev/flightline-api/pkg/jobs"
	"github.com/skyward-dev/flightline-api/pkg/logger"
	corsmiddleware "github.com/skyward-dev/flightline-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skyward-dev/flightline-api/pkg/middleware/requestid"
	"github.com/skyward-dev/flightline-api/pkg/storage"
)

// @title Flightline API
// @version 0.1.0
// @description Flight-training session booking and weekly availability scheduling
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API stays up without Redis; reads just skip the cache.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, cfg.Roster.CacheTTL, logr)
	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	suspensionQueue := jobs.NewQueue("suspensions", suspensionHandler(studentRepo, logr), jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	availabilitySvc := service.NewAvailabilityService(slotRepo, cacheSvc, metricsSvc, validate, logr, service.AvailabilityServiceConfig{
		MaxLanes:       cfg.Scheduling.MaxLanes,
		WeeksLookahead: cfg.Scheduling.WeeksLookahead,
	})
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, studentRepo, exerciseRepo, suspensionQueue, cacheSvc, metricsSvc, validate, logr, service.BookingServiceConfig{
		NoShowSuspendThreshold: cfg.Scheduling.NoShowSuspendThreshold,
		CancellationGrace:      cfg.Scheduling.CancellationGrace,
	})
	rosterSvc := service.NewRosterService(studentRepo, cacheSvc, metricsSvc, logr, service.RosterServiceConfig{
		PostingWaitDays:  cfg.Scheduling.PostingWaitDays,
		OnHoldPeriodDays: cfg.Scheduling.OnHoldPeriodDays,
		CacheTTL:         cfg.Roster.CacheTTL,
	})
	logbookSvc := service.NewLogbookService(bookingRepo, studentRepo, logr)

	var exportArchive *storage.Archive
	if cfg.Exports.ArchiveDir != "" {
		exportArchive, err = storage.NewArchive(cfg.Exports.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export archive", "error", err)
		}
	}
	exportSvc := service.NewExportService(bookingRepo, exportArchive, cfg.Exports.Enabled, logr)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	logbookHandler := handler.NewLogbookHandler(logbookSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))
	{
		api.PUT("/courses/:id/students/:sid/availability",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin, models.RoleStudent),
			availabilityHandler.PostWeek)
		api.GET("/courses/:id/availability", availabilityHandler.WeekGrid)
		api.GET("/courses/:id/roster",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin),
			rosterHandler.Roster)
		api.GET("/courses/:id/bookings/export",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin),
			exportHandler.WeekSheet)

		api.POST("/bookings",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin),
			bookingHandler.Create)
		api.GET("/bookings/:id", bookingHandler.Get)
		api.DELETE("/bookings/:id",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin),
			bookingHandler.Cancel)
		api.POST("/bookings/:id/no-show",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin),
			bookingHandler.NoShow)

		api.GET("/students/:id/logbook",
			middleware.RBAC(models.RoleInstructor, models.RoleAdmin, "SELF"),
			logbookHandler.Logbook)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	suspensionQueue.Start(rootCtx)
	defer suspensionQueue.Stop()
	go staleSlotSweeper(rootCtx, slotRepo, cfg.Jobs.SweepInterval, logr)
	if exportArchive != nil {
		go archiveSweeper(rootCtx, exportArchive, cfg.Jobs.SweepInterval, cfg.Exports.ArchiveTTL, logr)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}

// suspensionHandler applies queued student suspensions.
func suspensionHandler(students *repository.StudentRepository, logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		var payload service.SuspensionPayload
		switch p := job.Payload.(type) {
		case service.SuspensionPayload:
			payload = p
		default:
			raw, err := json.Marshal(job.Payload)
			if err != nil {
				return fmt.Errorf("decode suspension payload: %w", err)
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode suspension payload: %w", err)
			}
		}
		if payload.StudentID == "" {
			return fmt.Errorf("suspension job %s missing student id", job.ID)
		}
		if err := students.Suspend(ctx, payload.StudentID); err != nil {
			return err
		}
		logr.Info("student suspended",
			zap.String("student_id", payload.StudentID),
			zap.Int("no_show_count", payload.NoShowCount),
		)
		return nil
	}
}

// archiveSweeper prunes archived export sheets past their retention window.
func archiveSweeper(ctx context.Context, archive *storage.Archive, interval, ttl time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := archive.CleanupOlderThan(ttl)
			if err != nil {
				logr.Sugar().Warnw("export archive cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("archived exports pruned", "count", len(deleted))
			}
		}
	}
}

// staleSlotSweeper periodically purges open postings whose week has passed.
func staleSlotSweeper(ctx context.Context, slots *repository.SlotRepository, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := slots.DeleteStaleBefore(ctx, time.Now().UTC().AddDate(0, 0, -7))
			if err != nil {
				logr.Sugar().Warnw("stale slot sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logr.Sugar().Infow("stale slots purged", "count", removed)
			}
		}
	}
}
