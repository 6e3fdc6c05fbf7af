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

	logger.Logger.Info("Starting Progress Service Scheduler")

	// Connect to database
	db, err := database.Connect(cfg.Database.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	scheduler := NewScheduler(
		NewRedisLocker(rdb),
		repositories.NewContentRepository(db),
		tasks.NewEnqueuer(asynqClient, logger.Logger),
		logger.Logger,
		cfg.Scheduler.LockTTL,
	)

	if err := scheduler.Start(cfg.Scheduler.StatsRecalcCron, cfg.Scheduler.TenantRepairCron); err != nil {
		logger.Logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
