package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/config"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/database"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/handler"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/logger"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/router"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/service"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/validator"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Yggdrasil Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	calendarService := service.NewCalendarService(eventRepo, log)
	availabilityService := service.NewAvailabilityService(scheduleRepo, eventRepo, rdb, cfg.ScheduleCacheTTL, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, eventRepo)
	promotionService := service.NewPromotionService(promotionRepo)
	newsService := service.NewNewsService(newsRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		News:         handler.NewNewsHandler(newsService),
		Event:        handler.NewEventHandler(calendarService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Attendance:   handler.NewAttendanceHandler(attendanceService),
		Promotion:    handler.NewPromotionHandler(promotionService),
		System:       handler.NewSystemHandler(pool, rdb),
	}

	// ─── Start Attendance Rule Engine ─────────────────────────────────
	dispatcher := worker.NewRedisDispatcher(rdb, cfg.NotifyDedupTTL, log)
	engine := worker.NewAttendanceEngine(promotionRepo, attendanceRepo, eventRepo, dispatcher, worker.RuleConfig{
		LowAttendanceThreshold:  cfg.LowAttendanceThreshold,
		ConsecutiveAbsenceLimit: cfg.ConsecutiveAbsenceLimit,
		ConsecutiveLookback:     cfg.ConsecutiveLookback,
		MissingRecordGrace:      cfg.MissingRecordGrace,
		TrendWindow:             time.Duration(cfg.TrendWindowDays) * 24 * time.Hour,
	}, log)

	scheduler, err := worker.NewScheduler(engine, cfg.ScanCron, cfg.MissingCron, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure attendance scheduler")
	}
	scheduler.Start()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the scheduler and wait for in-flight scans to finish.
	scheduler.Stop()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
