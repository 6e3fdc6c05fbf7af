package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aulaflow/progress-service/internal/metrics"
	"github.com/aulaflow/progress-service/internal/models"
	"go.uber.org/zap"
)

// contentStatsService answers content totals by recounting. The stored row is a cache
// kept warm by the content event hooks and overwritten by Recalculate.
type contentStatsService struct {
	tx     Transactor
	stats  ContentStatsRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewContentStatsService creates a new content statistics service
func NewContentStatsService(tx Transactor, stats ContentStatsRepository, logger *zap.Logger) *contentStatsService {
	return &contentStatsService{
		tx:     tx,
		stats:  stats,
		logger: logger,
		now:    storeNow,
	}
}

func validateTenant(tenantID int) error {
	if tenantID <= 0 {
		return fmt.Errorf("tenant id must be positive: %w", models.ErrInvalidState)
	}
	return nil
}

func (s *contentStatsService) Get(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	stats, err := s.stats.Recount(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats.UpdatedAt = s.now()

	return stats, nil
}

// Cached returns the stored counters, or zeros when the tenant has no row yet
func (s *contentStatsService) Cached(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	stats, err := s.stats.Get(ctx, tenantID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.ContentStatistics{TenantID: tenantID}, nil
	}
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Initialize stores a recount when the tenant has no row yet and returns the stored row otherwise
func (s *contentStatsService) Initialize(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	var result *models.ContentStatistics
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.stats.Get(ctx, tenantID)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		result, err = s.recountAndSave(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Recalculate overwrites the stored row with a recount and records how far the cache had drifted
func (s *contentStatsService) Recalculate(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	var cached, fresh *models.ContentStatistics
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		cached, err = s.stats.Get(ctx, tenantID)
		if errors.Is(err, models.ErrNotFound) {
			cached = &models.ContentStatistics{TenantID: tenantID}
		} else if err != nil {
			return err
		}

		fresh, err = s.recountAndSave(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordDrift(cached, fresh)
	return fresh, nil
}

func (s *contentStatsService) Increment(ctx context.Context, tenantID int, counter models.StatsCounter, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("increment amount must be positive: %w", models.ErrInvalidState)
	}
	return s.adjust(ctx, tenantID, counter, amount)
}

// Decrement lowers a cached counter, never below zero
func (s *contentStatsService) Decrement(ctx context.Context, tenantID int, counter models.StatsCounter, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("decrement amount must be positive: %w", models.ErrInvalidState)
	}
	return s.adjust(ctx, tenantID, counter, -amount)
}

func (s *contentStatsService) adjust(ctx context.Context, tenantID int, counter models.StatsCounter, delta int) error {
	if err := validateTenant(tenantID); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.stats.Adjust(ctx, tenantID, counter, delta, s.now())
	})
}

func (s *contentStatsService) recountAndSave(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	stats, err := s.stats.Recount(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats.UpdatedAt = s.now()

	if err := s.stats.Save(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *contentStatsService) recordDrift(cached, fresh *models.ContentStatistics) {
	tenant := strconv.Itoa(fresh.TenantID)
	drift := map[models.StatsCounter]int{
		models.CounterLessons:    fresh.TotalLessons - cached.TotalLessons,
		models.CounterUnits:      fresh.TotalUnits - cached.TotalUnits,
		models.CounterCategories: fresh.TotalCategories - cached.TotalCategories,
	}

	for counter, delta := range drift {
		metrics.ContentStatsDrift.WithLabelValues(tenant, string(counter)).Set(float64(delta))
		if delta != 0 {
			s.logger.Warn("content statistics drift corrected",
				zap.Int("tenant_id", fresh.TenantID),
				zap.String("counter", string(counter)),
				zap.Int("drift", delta),
			)
		}
	}
}
