package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/models"
)

const unitProgressColumns = `up.id, up.tenant_id, up.user_id, up.unit_id, up.completed_lessons_count,
		up.total_lesson_videos, up.progress_percent, up.updated_at`

type unitProgressRepository struct {
	db *sql.DB
}

// NewUnitProgressRepository creates a new unit progress repository
func NewUnitProgressRepository(db *sql.DB) *unitProgressRepository {
	return &unitProgressRepository{
		db: db,
	}
}

func scanUnitProgress(s rowScanner) (*models.UnitProgress, error) {
	var p models.UnitProgress
	if err := s.Scan(
		&p.ID,
		&p.TenantID,
		&p.UserID,
		&p.UnitID,
		&p.CompletedLessonsCount,
		&p.TotalLessonVideos,
		&p.ProgressPercent,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves the stored aggregate of a user for a unit
func (r *unitProgressRepository) Get(ctx context.Context, tenantID int, userID string, unitID int) (*models.UnitProgress, error) {
	query := `SELECT ` + unitProgressColumns + `
		FROM unit_progress up
		WHERE up.tenant_id = ? AND up.user_id = ? AND up.unit_id = ?`

	p, err := scanUnitProgress(database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID, userID, unitID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit progress: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit progress: %w", err)
	}

	return p, nil
}

// Upsert creates the aggregate row or overwrites the stored one, and sets p.ID
func (r *unitProgressRepository) Upsert(ctx context.Context, p *models.UnitProgress) error {
	conn := database.Conn(ctx, r.db)

	var id int
	err := conn.QueryRowContext(ctx,
		`SELECT id FROM unit_progress WHERE tenant_id = ? AND user_id = ? AND unit_id = ?`,
		p.TenantID, p.UserID, p.UnitID,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		query := `
			INSERT INTO unit_progress (tenant_id, user_id, unit_id, completed_lessons_count, total_lesson_videos, progress_percent, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		result, err := conn.ExecContext(ctx, query,
			p.TenantID, p.UserID, p.UnitID, p.CompletedLessonsCount, p.TotalLessonVideos, p.ProgressPercent, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create unit progress: %w", err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		p.ID = int(newID)
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up unit progress: %w", err)
	}

	query := `
		UPDATE unit_progress
		SET completed_lessons_count = ?, total_lesson_videos = ?, progress_percent = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := conn.ExecContext(ctx, query,
		p.CompletedLessonsCount, p.TotalLessonVideos, p.ProgressPercent, p.UpdatedAt, id,
	); err != nil {
		return fmt.Errorf("failed to update unit progress: %w", err)
	}
	p.ID = id

	return nil
}

func (r *unitProgressRepository) list(ctx context.Context, query string, args ...any) ([]models.UnitProgress, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unit progress: %w", err)
	}
	defer rows.Close()

	progress := make([]models.UnitProgress, 0)
	for rows.Next() {
		p, err := scanUnitProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit progress: %w", err)
		}
		progress = append(progress, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unit progress: %w", err)
	}

	return progress, nil
}

// ListByUser lists every stored unit aggregate of the user
func (r *unitProgressRepository) ListByUser(ctx context.Context, tenantID int, userID string) ([]models.UnitProgress, error) {
	query := `SELECT ` + unitProgressColumns + `
		FROM unit_progress up
		WHERE up.tenant_id = ? AND up.user_id = ?
		ORDER BY up.unit_id`

	return r.list(ctx, query, tenantID, userID)
}

// ListByCategory lists the user's stored aggregates for at most limit units of the category
func (r *unitProgressRepository) ListByCategory(ctx context.Context, tenantID int, userID string, categoryID, limit int) ([]models.UnitProgress, error) {
	query := `SELECT ` + unitProgressColumns + `
		FROM unit_progress up
		JOIN units u ON u.id = up.unit_id AND u.tenant_id = up.tenant_id
		WHERE up.tenant_id = ? AND up.user_id = ? AND u.category_id = ?
		ORDER BY up.unit_id
		LIMIT ?`

	return r.list(ctx, query, tenantID, userID, categoryID, limit)
}
