package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const lockKeyPrefix = "progress:scheduler:"

// Job names, also used as lock keys
const (
	jobStatsRecalculate = "stats_recalculate"
	jobTenantRepair     = "tenant_repair"
)

// TenantLister defines the tenant lookup of the content repository
type TenantLister interface {
	// ListTenantIDs returns every tenant that owns content
	ListTenantIDs(ctx context.Context) ([]int, error)
}

// JobQueue defines the reconciliation jobs the scheduler enqueues
type JobQueue interface {
	EnqueueStatsRecalculate(ctx context.Context, tenantID int) error
	EnqueueTenantRepairNow(ctx context.Context, tenantID int) error
}

// Locker elects a single scheduler replica per tick
type Locker interface {
	// Acquire takes key for ttl. It returns false when another replica holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// redisLocker takes locks with SET NX. A lock is held until it expires so a replica whose
// clock fires slightly later still sees it.
type redisLocker struct {
	redis *redis.Client
	owner string
}

// NewRedisLocker creates a locker that identifies itself by host name and pid
func NewRedisLocker(client *redis.Client) *redisLocker {
	host, _ := os.Hostname()
	return &redisLocker{redis: client, owner: fmt.Sprintf("%s:%d", host, os.Getpid())}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.redis.SetNX(ctx, lockKeyPrefix+key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Scheduler enqueues periodic reconciliation jobs for every tenant
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	tenants TenantLister
	queue   JobQueue
	logger  *zap.Logger
	lockTTL time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(locker Locker, tenants TenantLister, queue JobQueue, logger *zap.Logger, lockTTL time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		locker:  locker,
		tenants: tenants,
		queue:   queue,
		logger:  logger,
		lockTTL: lockTTL,
	}
}

// Start registers both jobs and starts the cron loop
func (s *Scheduler) Start(statsSpec, repairSpec string) error {
	if _, err := s.cron.AddFunc(statsSpec, func() { s.RunStatsRecalculate(context.Background()) }); err != nil {
		return fmt.Errorf("invalid stats recalculation schedule %q: %w", statsSpec, err)
	}
	if _, err := s.cron.AddFunc(repairSpec, func() { s.RunTenantRepair(context.Background()) }); err != nil {
		return fmt.Errorf("invalid tenant repair schedule %q: %w", repairSpec, err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("stats_recalc_cron", statsSpec),
		zap.String("tenant_repair_cron", repairSpec),
	)
	return nil
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunStatsRecalculate enqueues a statistics reconciliation for every tenant
func (s *Scheduler) RunStatsRecalculate(ctx context.Context) int {
	return s.forEachTenant(ctx, jobStatsRecalculate, s.queue.EnqueueStatsRecalculate)
}

// RunTenantRepair enqueues a full repair for every tenant
func (s *Scheduler) RunTenantRepair(ctx context.Context) int {
	return s.forEachTenant(ctx, jobTenantRepair, s.queue.EnqueueTenantRepairNow)
}

// forEachTenant runs enqueue for each tenant when this replica wins the lock.
// Returns the number of jobs enqueued.
func (s *Scheduler) forEachTenant(ctx context.Context, job string, enqueue func(ctx context.Context, tenantID int) error) int {
	acquired, err := s.locker.Acquire(ctx, job, s.lockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire scheduler lock", zap.String("job", job), zap.Error(err))
		return 0
	}
	if !acquired {
		s.logger.Debug("Scheduler lock held by another replica", zap.String("job", job))
		return 0
	}

	tenantIDs, err := s.tenants.ListTenantIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list tenants", zap.String("job", job), zap.Error(err))
		return 0
	}

	enqueued := 0
	for _, tenantID := range tenantIDs {
		if err := enqueue(ctx, tenantID); err != nil {
			s.logger.Error("Failed to enqueue job",
				zap.String("job", job),
				zap.Int("tenant_id", tenantID),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	s.logger.Info("Scheduled jobs enqueued",
		zap.String("job", job),
		zap.Int("tenants", len(tenantIDs)),
		zap.Int("enqueued", enqueued),
	)
	return enqueued
}
