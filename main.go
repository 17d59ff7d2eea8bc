package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/signbridge/signbridge-api/app/db"
	appLogger "github.com/signbridge/signbridge-api/app/logger"
	"github.com/signbridge/signbridge-api/app/observability/metrics"
	"github.com/signbridge/signbridge-api/app/tracer"
	"github.com/signbridge/signbridge-api/config"
	_ "github.com/signbridge/signbridge-api/docs"
	"github.com/signbridge/signbridge-api/internal/api/auth"
	"github.com/signbridge/signbridge-api/internal/api/caption"
	"github.com/signbridge/signbridge-api/internal/api/gesture"
	"github.com/signbridge/signbridge-api/internal/api/profile"
	"github.com/signbridge/signbridge-api/internal/router"
)

// @title           SignBridge API
// @version         1.0
// @description     Backend for the SignBridge classroom accessibility platform.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Observability before anything records spans or metrics.
	metricsHandler, err := tracer.InitTracingAndMetrics("signbridge-api")
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations before initializing the main pool.
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	auth.InitProviders(cfg.OAuth)

	// --- Dependency Injection ---
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, &cfg, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	profileRepo := profile.NewPostgresProfileRepo(pool, logger)
	profileService := profile.NewProfileService(profileRepo, cfg.Cache.ProfileTTL, cfg.Cache.CleanupInterval, logger)
	profileHandler := profile.NewProfileHandler(profileService, logger)

	var summarizer caption.Summarizer
	if gem, err := caption.NewGeminiSummarizer(ctx, cfg.AI); err != nil {
		logger.Warn("Summarizer unavailable", slog.Any("error", err))
	} else if gem != nil {
		summarizer = gem
	}
	captionRepo := caption.NewPostgresCaptionRepo(pool, logger)
	captionService := caption.NewCaptionService(captionRepo, summarizer, logger)
	captionHandler := caption.NewCaptionHandler(captionService, logger)

	gestureRepo := gesture.NewPostgresGestureRepo(pool, logger)
	gestureService := gesture.NewGestureService(gestureRepo, logger)
	gestureHandler := gesture.NewGestureHandler(gestureService, logger)

	apiRouter := router.SetupRouter(&router.Config{
		Logger:         logger,
		AuthHandler:    authHandler,
		ProfileHandler: profileHandler,
		CaptionHandler: captionHandler,
		GestureHandler: gestureHandler,
		Authenticate:   auth.Authenticate(logger, cfg.JWT),
	})

	root := chi.NewMux()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(appLogger.StructuredLogger(logger))
	root.Use(middleware.Recoverer)
	root.Use(middleware.StripSlashes)
	root.Use(middleware.Timeout(60 * time.Second))
	root.Use(middleware.Compress(5, "application/json"))
	root.Mount("/", apiRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      root,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger picks tint for local development and JSON for everything else,
// keyed off APP_ENV.
func setupLogger() *slog.Logger {
	var handler slog.Handler
	if os.Getenv("APP_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	return slog.New(handler)
}
