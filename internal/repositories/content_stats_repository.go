package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/models"
)

type contentStatsRepository struct {
	db *sql.DB
}

// NewContentStatsRepository creates a new content statistics repository
func NewContentStatsRepository(db *sql.DB) *contentStatsRepository {
	return &contentStatsRepository{
		db: db,
	}
}

// Get retrieves the stored statistics row of the tenant
func (r *contentStatsRepository) Get(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	query := `
		SELECT tenant_id, total_lessons, total_units, total_categories, updated_at
		FROM content_statistics
		WHERE tenant_id = ?
	`

	var stats models.ContentStatistics
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID).Scan(
		&stats.TenantID,
		&stats.TotalLessons,
		&stats.TotalUnits,
		&stats.TotalCategories,
		&stats.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content statistics: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content statistics: %w", err)
	}

	return &stats, nil
}

// Recount counts the published lessons, units and categories of the tenant
func (r *contentStatsRepository) Recount(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM lessons WHERE tenant_id = ? AND is_published = TRUE),
			(SELECT COUNT(*) FROM units WHERE tenant_id = ? AND is_published = TRUE),
			(SELECT COUNT(*) FROM categories WHERE tenant_id = ? AND is_published = TRUE)
	`

	stats := models.ContentStatistics{TenantID: tenantID}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID, tenantID, tenantID).Scan(
		&stats.TotalLessons,
		&stats.TotalUnits,
		&stats.TotalCategories,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to recount content statistics: %w", err)
	}

	return &stats, nil
}

// Save writes the statistics row of the tenant, creating it when absent
func (r *contentStatsRepository) Save(ctx context.Context, stats *models.ContentStatistics) error {
	conn := database.Conn(ctx, r.db)

	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM content_statistics WHERE tenant_id = ?)`, stats.TenantID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check content statistics existence: %w", err)
	}

	query := `
		UPDATE content_statistics
		SET total_lessons = ?, total_units = ?, total_categories = ?, updated_at = ?
		WHERE tenant_id = ?
	`
	if !exists {
		query = `
			INSERT INTO content_statistics (total_lessons, total_units, total_categories, updated_at, tenant_id)
			VALUES (?, ?, ?, ?, ?)
		`
	}

	if _, err := conn.ExecContext(ctx, query,
		stats.TotalLessons, stats.TotalUnits, stats.TotalCategories, stats.UpdatedAt, stats.TenantID,
	); err != nil {
		return fmt.Errorf("failed to save content statistics: %w", err)
	}

	return nil
}

// Adjust adds delta to one counter of the stored row, flooring it at zero.
// A positive delta creates the row when absent; a negative delta on an absent row is a no-op.
func (r *contentStatsRepository) Adjust(ctx context.Context, tenantID int, counter models.StatsCounter, delta int, now time.Time) error {
	column, ok := counter.Column()
	if !ok {
		return fmt.Errorf("unknown counter %q: %w", counter, models.ErrInvalidState)
	}

	stats, err := r.Get(ctx, tenantID)
	if errors.Is(err, models.ErrNotFound) {
		if delta <= 0 {
			return nil
		}
		stats = &models.ContentStatistics{TenantID: tenantID}
	} else if err != nil {
		return err
	}

	switch counter {
	case models.CounterLessons:
		stats.TotalLessons = max(stats.TotalLessons+delta, 0)
	case models.CounterUnits:
		stats.TotalUnits = max(stats.TotalUnits+delta, 0)
	case models.CounterCategories:
		stats.TotalCategories = max(stats.TotalCategories+delta, 0)
	}
	stats.UpdatedAt = now

	if err := r.Save(ctx, stats); err != nil {
		return fmt.Errorf("failed to adjust %s: %w", column, err)
	}

	return nil
}
