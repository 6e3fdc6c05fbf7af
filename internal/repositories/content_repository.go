package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/models"
)

// contentRepository reads the content inventory owned by the authoring subsystem.
// The only write it performs is the denormalized lesson count of a unit.
type contentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *sql.DB) *contentRepository {
	return &contentRepository{
		db: db,
	}
}

// GetLesson retrieves a lesson of the tenant
func (r *contentRepository) GetLesson(ctx context.Context, tenantID, lessonID int) (*models.Lesson, error) {
	query := `
		SELECT id, tenant_id, unit_id, title, duration_seconds, is_published
		FROM lessons
		WHERE id = ? AND tenant_id = ?
	`

	var lesson models.Lesson
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, lessonID, tenantID).Scan(
		&lesson.ID,
		&lesson.TenantID,
		&lesson.UnitID,
		&lesson.Title,
		&lesson.DurationSeconds,
		&lesson.IsPublished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson %d: %w", lessonID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	return &lesson, nil
}

// GetUnit retrieves a unit of the tenant
func (r *contentRepository) GetUnit(ctx context.Context, tenantID, unitID int) (*models.Unit, error) {
	query := `
		SELECT id, tenant_id, category_id, title, total_lesson_videos, is_published
		FROM units
		WHERE id = ? AND tenant_id = ?
	`

	var unit models.Unit
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, unitID, tenantID).Scan(
		&unit.ID,
		&unit.TenantID,
		&unit.CategoryID,
		&unit.Title,
		&unit.TotalLessonVideos,
		&unit.IsPublished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %d: %w", unitID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	return &unit, nil
}

// CountPublishedLessons counts the published lessons of the tenant
func (r *contentRepository) CountPublishedLessons(ctx context.Context, tenantID int) (int, error) {
	query := `SELECT COUNT(*) FROM lessons WHERE tenant_id = ? AND is_published = TRUE`

	var count int
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count published lessons: %w", err)
	}

	return count, nil
}

// AdjustUnitLessonCount adds delta to the unit's lesson count, flooring it at zero.
// Returns the new count.
func (r *contentRepository) AdjustUnitLessonCount(ctx context.Context, tenantID, unitID, delta int) (int, error) {
	unit, err := r.GetUnit(ctx, tenantID, unitID)
	if err != nil {
		return 0, err
	}

	count := max(unit.TotalLessonVideos+delta, 0)
	if count == unit.TotalLessonVideos {
		return count, nil
	}

	query := `UPDATE units SET total_lesson_videos = ? WHERE id = ? AND tenant_id = ?`
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, query, count, unitID, tenantID); err != nil {
		return 0, fmt.Errorf("failed to update unit lesson count: %w", err)
	}

	return count, nil
}

// ListTenantIDs lists every tenant that owns content or a statistics row
func (r *contentRepository) ListTenantIDs(ctx context.Context) ([]int, error) {
	query := `
		SELECT tenant_id FROM categories
		UNION
		SELECT tenant_id FROM units
		UNION
		SELECT tenant_id FROM content_statistics
		ORDER BY tenant_id
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	return scanInts(rows)
}

func scanInts(rows *sql.Rows) ([]int, error) {
	values := make([]int, 0)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return values, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return values, nil
}
