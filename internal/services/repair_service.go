package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aulaflow/progress-service/internal/metrics"
	"github.com/aulaflow/progress-service/internal/models"
	"go.uber.org/zap"
)

// ProgressRecalculator recomputes a single user's aggregates
type ProgressRecalculator interface {
	// RecalculateUnitProgress recounts one unit aggregate of a user
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "unitID" is the ID of the unit.
	//
	// Returns the stored aggregate and an error if any.
	RecalculateUnitProgress(ctx context.Context, tenantID int, userID string, unitID int) (*models.UnitProgress, error)
	// RecalculateGlobalProgress recounts the global aggregate of a user
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	//
	// Returns the stored aggregate and an error if any.
	RecalculateGlobalProgress(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error)
	// RecalculateUserProgress recounts every unit aggregate and the global aggregate of a user
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	//
	// Returns the stored aggregates and an error if any.
	RecalculateUserProgress(ctx context.Context, tenantID int, userID string) (*models.UserProgress, error)
}

// StatsRecalculator rebuilds the content statistics row of a tenant
type StatsRecalculator interface {
	Recalculate(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
}

// repairService fans a recount out over many users. Every user is repaired in its own
// transaction so a long repair never holds locks that live traffic waits on.
type repairService struct {
	progress ProgressRecalculator
	stats    StatsRecalculator
	lessons  LessonProgressRepository
	logger   *zap.Logger
}

// NewRepairService creates a new repair service
func NewRepairService(progress ProgressRecalculator, stats StatsRecalculator, lessons LessonProgressRepository, logger *zap.Logger) *repairService {
	return &repairService{
		progress: progress,
		stats:    stats,
		lessons:  lessons,
		logger:   logger,
	}
}

// RecalculateUnitForAllUsers recounts the unit and global aggregates of every user with progress in the unit
func (s *repairService) RecalculateUnitForAllUsers(ctx context.Context, tenantID, unitID int) (*models.RepairReport, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	users, err := s.lessons.ListUserIDsByUnit(ctx, tenantID, unitID)
	if err != nil {
		return nil, err
	}

	report := &models.RepairReport{TenantID: tenantID, UnitID: unitID}
	err = s.forEachUser(ctx, users, report, func(ctx context.Context, userID string) error {
		if _, err := s.progress.RecalculateUnitProgress(ctx, tenantID, userID, unitID); err != nil {
			return err
		}
		_, err := s.progress.RecalculateGlobalProgress(ctx, tenantID, userID)
		return err
	})
	metrics.RepairedRows.WithLabelValues("unit").Add(float64(report.UsersRepaired))

	s.logger.Info("unit progress repaired",
		zap.Int("tenant_id", tenantID),
		zap.Int("unit_id", unitID),
		zap.Int("users_repaired", report.UsersRepaired),
		zap.Int("users_failed", report.UsersFailed),
	)

	return report, err
}

// RepairTenant rebuilds the tenant's content statistics and every user's aggregates
func (s *repairService) RepairTenant(ctx context.Context, tenantID int) (*models.RepairReport, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	stats, err := s.stats.Recalculate(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate content statistics: %w", err)
	}

	users, err := s.lessons.ListUserIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &models.RepairReport{TenantID: tenantID, Stats: stats}
	err = s.forEachUser(ctx, users, report, func(ctx context.Context, userID string) error {
		_, err := s.progress.RecalculateUserProgress(ctx, tenantID, userID)
		return err
	})
	metrics.RepairedRows.WithLabelValues("user").Add(float64(report.UsersRepaired))

	s.logger.Info("tenant progress repaired",
		zap.Int("tenant_id", tenantID),
		zap.Int("users_repaired", report.UsersRepaired),
		zap.Int("users_failed", report.UsersFailed),
	)

	return report, err
}

// forEachUser keeps going past per-user failures and returns them joined.
// Cancellation stops the run immediately.
func (s *repairService) forEachUser(ctx context.Context, users []string, report *models.RepairReport, fn func(ctx context.Context, userID string) error) error {
	var errs []error
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(ctx, userID); err != nil {
			report.UsersFailed++
			s.logger.Error("failed to repair user progress",
				zap.Int("tenant_id", report.TenantID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		report.UsersRepaired++
	}

	return errors.Join(errs...)
}
