package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aulaflow/progress-service/internal/config"
	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/logger"
	"github.com/aulaflow/progress-service/internal/repositories"
	"github.com/aulaflow/progress-service/internal/services"
	"github.com/aulaflow/progress-service/internal/tasks"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

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

	logger.Logger.Info("Starting Progress Service Worker")

	// Connect to database
	db, err := database.Connect(cfg.Database.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Test Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	rdb.Close()

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
	statsService := services.NewContentStatsService(txRunner, contentStatsRepo, logger.Logger)
	repairService := services.NewRepairService(progressService, statsService, lessonProgressRepo, logger.Logger)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				tasks.QueueRepair: 3,
				tasks.QueueStats:  1,
			},
			Logger: logger.Logger.Sugar(),
		},
	)

	// Register task handlers
	worker := NewWorker(logger.Logger, repairService, statsService)
	mux := asynq.NewServeMux()
	worker.Register(mux)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}
