package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aulaflow/progress-service/internal/models"
	"github.com/aulaflow/progress-service/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RepairService defines the fan-out repairs run by the worker
type RepairService interface {
	// RecalculateUnitForAllUsers recounts a unit aggregate for every user with progress in it
	//
	// "tenantID" and "unitID" identify the unit.
	//
	// If some error occurs during the repair, the error will be returned together with "nil" value.
	RecalculateUnitForAllUsers(ctx context.Context, tenantID, unitID int) (*models.RepairReport, error)
	// RepairTenant rebuilds the content statistics and every user aggregate of a tenant
	//
	// "tenantID" parameter is the tenant to repair.
	//
	// If some error occurs during the repair, the error will be returned together with "nil" value.
	RepairTenant(ctx context.Context, tenantID int) (*models.RepairReport, error)
}

// ContentStatsService defines the statistics reconciliation run by the worker
type ContentStatsService interface {
	// Recalculate overwrites the statistics row of a tenant with a recount
	Recalculate(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
}

// Worker handles task processing
type Worker struct {
	logger *zap.Logger
	repair RepairService
	stats  ContentStatsService
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, repair RepairService, stats ContentStatsService) *Worker {
	return &Worker{
		logger: logger,
		repair: repair,
		stats:  stats,
	}
}

// Register binds every task type to its handler
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeUnitRefresh, w.HandleUnitRefresh)
	mux.HandleFunc(tasks.TypeTenantRepair, w.HandleTenantRepair)
	mux.HandleFunc(tasks.TypeStatsRecalculate, w.HandleStatsRecalculate)
}

// HandleUnitRefresh recounts a unit for every user after its lesson set changed
func (w *Worker) HandleUnitRefresh(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseUnitRefreshPayload(t.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	report, err := w.repair.RecalculateUnitForAllUsers(ctx, payload.TenantID, payload.UnitID)
	if err != nil {
		return w.failure(err, "unit refresh", zap.Int("tenant_id", payload.TenantID), zap.Int("unit_id", payload.UnitID))
	}

	w.logger.Info("Unit refreshed",
		zap.Int("tenant_id", payload.TenantID),
		zap.Int("unit_id", payload.UnitID),
		zap.Int("users_repaired", report.UsersRepaired),
		zap.Int("users_failed", report.UsersFailed),
	)
	if report.UsersFailed > 0 {
		return fmt.Errorf("unit %d: %d users failed to refresh", payload.UnitID, report.UsersFailed)
	}
	return nil
}

// HandleTenantRepair rebuilds every aggregate of a tenant
func (w *Worker) HandleTenantRepair(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseTenantPayload(t.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	report, err := w.repair.RepairTenant(ctx, payload.TenantID)
	if err != nil {
		return w.failure(err, "tenant repair", zap.Int("tenant_id", payload.TenantID))
	}

	w.logger.Info("Tenant repaired",
		zap.Int("tenant_id", payload.TenantID),
		zap.Int("users_repaired", report.UsersRepaired),
		zap.Int("users_failed", report.UsersFailed),
	)
	if report.UsersFailed > 0 {
		return fmt.Errorf("tenant %d: %d users failed to repair", payload.TenantID, report.UsersFailed)
	}
	return nil
}

// HandleStatsRecalculate reconciles the content statistics of a tenant
func (w *Worker) HandleStatsRecalculate(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseTenantPayload(t.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	stats, err := w.stats.Recalculate(ctx, payload.TenantID)
	if err != nil {
		return w.failure(err, "content statistics recalculation", zap.Int("tenant_id", payload.TenantID))
	}

	w.logger.Debug("Content statistics recalculated",
		zap.Int("tenant_id", payload.TenantID),
		zap.Int("total_lessons", stats.TotalLessons),
		zap.Int("total_units", stats.TotalUnits),
		zap.Int("total_categories", stats.TotalCategories),
	)
	return nil
}

// failure logs a failed job. Content that no longer exists or a malformed request will not
// succeed on retry.
func (w *Worker) failure(err error, job string, fields ...zap.Field) error {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidState) {
		w.logger.Warn("Dropping "+job, fields...)
		return fmt.Errorf("%s: %v: %w", job, err, asynq.SkipRetry)
	}
	w.logger.Error("Failed "+job, fields...)
	return fmt.Errorf("%s: %w", job, err)
}
