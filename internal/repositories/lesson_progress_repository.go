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

const lessonProgressColumns = `lp.id, lp.tenant_id, lp.user_id, lp.lesson_id, lp.completed, lp.completed_at,
		lp.current_time_sec, lp.duration_sec, lp.updated_at`

type lessonProgressRepository struct {
	db *sql.DB
}

// NewLessonProgressRepository creates a new lesson progress repository
func NewLessonProgressRepository(db *sql.DB) *lessonProgressRepository {
	return &lessonProgressRepository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLessonProgress(s rowScanner) (*models.LessonProgress, error) {
	var (
		p           models.LessonProgress
		completedAt sql.NullTime
		currentTime sql.NullFloat64
		duration    sql.NullFloat64
	)
	if err := s.Scan(
		&p.ID,
		&p.TenantID,
		&p.UserID,
		&p.LessonID,
		&p.Completed,
		&completedAt,
		&currentTime,
		&duration,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	if currentTime.Valid {
		v := currentTime.Float64
		p.CurrentTimeSec = &v
	}
	if duration.Valid {
		v := duration.Float64
		p.DurationSec = &v
	}

	return &p, nil
}

func (r *lessonProgressRepository) list(ctx context.Context, query string, args ...any) ([]models.LessonProgress, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	progress := make([]models.LessonProgress, 0)
	for rows.Next() {
		p, err := scanLessonProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		progress = append(progress, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson progress: %w", err)
	}

	return progress, nil
}

// Get retrieves the progress row of a user for a lesson
func (r *lessonProgressRepository) Get(ctx context.Context, tenantID int, userID string, lessonID int) (*models.LessonProgress, error) {
	query := `SELECT ` + lessonProgressColumns + `
		FROM lesson_progress lp
		WHERE lp.tenant_id = ? AND lp.user_id = ? AND lp.lesson_id = ?`

	p, err := scanLessonProgress(database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID, userID, lessonID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson progress: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson progress: %w", err)
	}

	return p, nil
}

// Create inserts a progress row and sets its ID
func (r *lessonProgressRepository) Create(ctx context.Context, p *models.LessonProgress) error {
	query := `
		INSERT INTO lesson_progress (tenant_id, user_id, lesson_id, completed, completed_at, current_time_sec, duration_sec, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		p.TenantID,
		p.UserID,
		p.LessonID,
		p.Completed,
		nullTime(p.CompletedAt),
		nullFloat(p.CurrentTimeSec),
		nullFloat(p.DurationSec),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson progress: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	p.ID = int(id)
	return nil
}

// Update overwrites the mutable fields of an existing progress row
func (r *lessonProgressRepository) Update(ctx context.Context, p *models.LessonProgress) error {
	query := `
		UPDATE lesson_progress
		SET completed = ?, completed_at = ?, current_time_sec = ?, duration_sec = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	_, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		p.Completed,
		nullTime(p.CompletedAt),
		nullFloat(p.CurrentTimeSec),
		nullFloat(p.DurationSec),
		p.UpdatedAt,
		p.ID,
		p.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson progress: %w", err)
	}

	return nil
}

// CountCompletedInUnit counts the user's completed lessons that currently belong to the unit
func (r *lessonProgressRepository) CountCompletedInUnit(ctx context.Context, tenantID int, userID string, unitID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.tenant_id = lp.tenant_id
		WHERE lp.tenant_id = ? AND lp.user_id = ? AND lp.completed = TRUE AND l.unit_id = ?
	`

	var count int
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID, userID, unitID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed lessons in unit: %w", err)
	}

	return count, nil
}

// CountCompletedPublished counts the user's completed lessons that still exist and are published
func (r *lessonProgressRepository) CountCompletedPublished(ctx context.Context, tenantID int, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.tenant_id = lp.tenant_id
		WHERE lp.tenant_id = ? AND lp.user_id = ? AND lp.completed = TRUE AND l.is_published = TRUE
	`

	var count int
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed published lessons: %w", err)
	}

	return count, nil
}

// ListByUnit lists the user's progress rows for the lessons of a unit
func (r *lessonProgressRepository) ListByUnit(ctx context.Context, tenantID int, userID string, unitID int) ([]models.LessonProgress, error) {
	query := `SELECT ` + lessonProgressColumns + `
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.tenant_id = lp.tenant_id
		WHERE lp.tenant_id = ? AND lp.user_id = ? AND l.unit_id = ?
		ORDER BY lp.lesson_id`

	return r.list(ctx, query, tenantID, userID, unitID)
}

// ListCompleted lists the user's completed progress rows
func (r *lessonProgressRepository) ListCompleted(ctx context.Context, tenantID int, userID string) ([]models.LessonProgress, error) {
	query := `SELECT ` + lessonProgressColumns + `
		FROM lesson_progress lp
		WHERE lp.tenant_id = ? AND lp.user_id = ? AND lp.completed = TRUE
		ORDER BY lp.lesson_id`

	return r.list(ctx, query, tenantID, userID)
}

// ListCompletedByCategory lists at most limit completed progress rows of lessons in the category
func (r *lessonProgressRepository) ListCompletedByCategory(ctx context.Context, tenantID int, userID string, categoryID, limit int) ([]models.LessonProgress, error) {
	query := `SELECT ` + lessonProgressColumns + `
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.tenant_id = lp.tenant_id
		JOIN units u ON u.id = l.unit_id AND u.tenant_id = l.tenant_id
		WHERE lp.tenant_id = ? AND lp.user_id = ? AND lp.completed = TRUE AND u.category_id = ?
		ORDER BY lp.lesson_id
		LIMIT ?`

	return r.list(ctx, query, tenantID, userID, categoryID, limit)
}

// ListUnitIDsForUser lists the units the user has progress in, through lessons or a stored aggregate
func (r *lessonProgressRepository) ListUnitIDsForUser(ctx context.Context, tenantID int, userID string) ([]int, error) {
	query := `
		SELECT l.unit_id
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.tenant_id = lp.tenant_id
		WHERE lp.tenant_id = ? AND lp.user_id = ?
		UNION
		SELECT up.unit_id
		FROM unit_progress up
		JOIN units u ON u.id = up.unit_id AND u.tenant_id = up.tenant_id
		WHERE up.tenant_id = ? AND up.user_id = ?
		ORDER BY 1
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, tenantID, userID, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units for user: %w", err)
	}
	defer rows.Close()

	return scanInts(rows)
}

// ListUserIDsByUnit lists users with progress on the unit's lessons or a stored aggregate for it
func (r *lessonProgressRepository) ListUserIDsByUnit(ctx context.Context, tenantID, unitID int) ([]string, error) {
	query := `
		SELECT lp.user_id
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.tenant_id = lp.tenant_id
		WHERE lp.tenant_id = ? AND l.unit_id = ?
		UNION
		SELECT up.user_id
		FROM unit_progress up
		WHERE up.tenant_id = ? AND up.unit_id = ?
		ORDER BY 1
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, tenantID, unitID, tenantID, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for unit: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// ListUserIDs lists every user of the tenant with lesson progress or a global aggregate
func (r *lessonProgressRepository) ListUserIDs(ctx context.Context, tenantID int) ([]string, error) {
	query := `
		SELECT user_id FROM lesson_progress WHERE tenant_id = ?
		UNION
		SELECT user_id FROM global_progress WHERE tenant_id = ?
		ORDER BY 1
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, tenantID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
