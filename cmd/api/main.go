package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aulaflow/progress-service/docs"
	"github.com/aulaflow/progress-service/internal/auth"
	"github.com/aulaflow/progress-service/internal/config"
	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/handlers"
	"github.com/aulaflow/progress-service/internal/logger"
	"github.com/aulaflow/progress-service/internal/metrics"
	"github.com/aulaflow/progress-service/internal/middlewares"
	"github.com/aulaflow/progress-service/internal/repositories"
	"github.com/aulaflow/progress-service/internal/services"
	"github.com/aulaflow/progress-service/internal/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Progress Service API
// @version 1.0
// @description Learner progress tracking: lesson completion, playback heartbeats and the unit and global aggregates derived from them.

// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Progress Service API")

	// Connect to database
	db, err := database.Connect(cfg.Database.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db, "migrations"); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis backs the repair queue
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()
	enqueuer := tasks.NewEnqueuer(asynqClient, logger.Logger)

	// Initialize repositories
	contentRepo := repositories.NewContentRepository(db)
	lessonProgressRepo := repositories.NewLessonProgressRepository(db)
	unitProgressRepo := repositories.NewUnitProgressRepository(db)
	globalProgressRepo := repositories.NewGlobalProgressRepository(db)
	contentStatsRepo := repositories.NewContentStatsRepository(db)

	txRunner := database.NewTxRunner(db, database.TxOptions{
		Isolation:   cfg.Database.TxIsolation,
		MaxAttempts: cfg.Database.TxMaxAttempts,
		RetryDelay:  cfg.Database.TxRetryDelay,
	}, logger.Logger)

	// Initialize services
	progressService := services.NewProgressService(txRunner, contentRepo, lessonProgressRepo, unitProgressRepo, globalProgressRepo, cfg.Progress.CompletionThreshold, logger.Logger)
	queryService := services.NewProgressQueryService(lessonProgressRepo, unitProgressRepo, globalProgressRepo)
	statsService := services.NewContentStatsService(txRunner, contentStatsRepo, logger.Logger)
	eventService := services.NewContentEventService(txRunner, contentRepo, contentStatsRepo, enqueuer, logger.Logger)
	repairService := services.NewRepairService(progressService, statsService, lessonProgressRepo, logger.Logger)

	// Initialize handlers
	progressHandler := handlers.NewProgressHandler(progressService, queryService, statsService, logger.Logger)
	internalHandler := handlers.NewInternalHandler(eventService, statsService, progressService, repairService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(enqueuer, logger.Logger)

	// Initialize auth middleware
	verifier := auth.NewTokenVerifier(cfg.JWT.Secret)
	authMiddleware := auth.AuthMiddleware(verifier)
	adminMiddleware := auth.RoleMiddleware(verifier, auth.RoleAdmin)
	apiKeyMiddleware := auth.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(metrics.HTTPMiddleware(middlewares.RoutePattern))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB

	r.Get("/health", healthHandler(db, rdb))
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		progressHandler.RegisterRoutes(r, authMiddleware)
		adminHandler.RegisterRoutes(r, adminMiddleware)
		internalHandler.RegisterRoutes(r, apiKeyMiddleware)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// healthHandler reports 503 when the database or Redis cannot be reached
func healthHandler(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			logger.Logger.Warn("health check: database unreachable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Logger.Warn("health check: redis unreachable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"redis unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
