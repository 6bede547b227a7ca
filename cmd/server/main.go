package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/database"
	"github.com/papergen/papergen-backend/internal/handler"
	"github.com/papergen/papergen-backend/internal/logger"
	"github.com/papergen/papergen-backend/internal/repository"
	"github.com/papergen/papergen-backend/internal/router"
	"github.com/papergen/papergen-backend/internal/service"
	"github.com/papergen/papergen-backend/internal/validator"
	"github.com/papergen/papergen-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting PaperGen Backend")

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
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	chapterRepo := repository.NewChapterRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	classRepo := repository.NewClassRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(userRepo, roleRepo, cfg, rdb)
	mediaService := service.NewMediaService(cfg)
	chapterService := service.NewChapterService(chapterRepo, questionRepo, lessonRepo, nil, log)
	questionService := service.NewQuestionService(questionRepo, chapterRepo, mediaService, nil, log)
	lessonService := service.NewLessonService(lessonRepo, chapterRepo, examRepo, rdb, log)
	examService := service.NewExamService(examRepo, lessonRepo, chapterRepo, chapterService, cfg, rdb, nil, log)
	classService := service.NewClassService(classRepo, lessonRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userRepo),
		Chapter:  handler.NewChapterHandler(chapterService),
		Question: handler.NewQuestionHandler(questionService),
		Lesson:   handler.NewLessonHandler(lessonService, examService),
		Exam:     handler.NewExamHandler(examService),
		Class:    handler.NewClassHandler(classService),
		Media:    handler.NewMediaHandler(mediaService),
		System:   handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	fanoutWorker := worker.NewFanoutWorker(pool, rdb, log)
	go fanoutWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
