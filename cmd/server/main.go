package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/database"
	"github.com/stemsi/exscan-backend/internal/grid"
	"github.com/stemsi/exscan-backend/internal/handler"
	"github.com/stemsi/exscan-backend/internal/logger"
	"github.com/stemsi/exscan-backend/internal/repository"
	"github.com/stemsi/exscan-backend/internal/router"
	"github.com/stemsi/exscan-backend/internal/service"
	"github.com/stemsi/exscan-backend/internal/validator"
	"github.com/stemsi/exscan-backend/internal/vision"
	"github.com/stemsi/exscan-backend/internal/worker"
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
		Msg("Starting ExScan Backend")

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
	teacherRepo := repository.NewTeacherRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	// ─── Initialize Vision Extractor ───────────────────────────────────
	extractor, err := vision.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.UploadDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize vision extractor")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, teacherRepo)
	testService := service.NewTestService(testRepo, questionRepo, answerRepo, rdb, log)
	questionService := service.NewQuestionService(testRepo, questionRepo, answerRepo, rdb, log)
	answerService := service.NewAnswerService(questionRepo, answerRepo, rdb, log)
	storageService := service.NewStorageService(cfg)
	sheetService := service.NewSheetService(testService, grid.NewSheetRenderer(cfg.SheetFontPath), rdb, log)
	submissionService := service.NewSubmissionService(submissionRepo, testRepo, storageService, rdb, log)
	exportService := service.NewExportService(submissionService, log)
	gradingService := service.NewGradingService(testRepo, questionRepo, submissionRepo, extractor, cfg.ExtractTimeout, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Test:       handler.NewTestHandler(testService),
		Question:   handler.NewQuestionHandler(questionService),
		Answer:     handler.NewAnswerHandler(answerService),
		Sheet:      handler.NewSheetHandler(sheetService),
		Submission: handler.NewSubmissionHandler(submissionService, exportService),
		WS:         handler.NewWSHandler(rdb, testService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	gradingWorker := worker.NewGradingWorker(gradingService, rdb, log)
	go gradingWorker.Start(workerCtx)

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

	// 2. Stop the grading worker; an in-flight vision call gets cancelled and
	// its submission stays ungraded for a later re-enqueue.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to finish the current job.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
