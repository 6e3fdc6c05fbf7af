package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/models"
)

type globalProgressRepository struct {
	db *sql.DB
}

// NewGlobalProgressRepository creates a new global progress repository
func NewGlobalProgressRepository(db *sql.DB) *globalProgressRepository {
	return &globalProgressRepository{
		db: db,
	}
}

// Get retrieves the stored global aggregate of a user
func (r *globalProgressRepository) Get(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error) {
	query := `
		SELECT id, tenant_id, user_id, completed_lessons_count, progress_percent, updated_at
		FROM global_progress
		WHERE tenant_id = ? AND user_id = ?
	`

	var p models.GlobalProgress
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, tenantID, userID).Scan(
		&p.ID,
		&p.TenantID,
		&p.UserID,
		&p.CompletedLessonsCount,
		&p.ProgressPercent,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("global progress: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get global progress: %w", err)
	}

	return &p, nil
}

// Upsert creates the aggregate row or overwrites the stored one, and sets p.ID
func (r *globalProgressRepository) Upsert(ctx context.Context, p *models.GlobalProgress) error {
	conn := database.Conn(ctx, r.db)

	var id int
	err := conn.QueryRowContext(ctx,
		`SELECT id FROM global_progress WHERE tenant_id = ? AND user_id = ?`,
		p.TenantID, p.UserID,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		result, err := conn.ExecContext(ctx, `
			INSERT INTO global_progress (tenant_id, user_id, completed_lessons_count, progress_percent, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, p.TenantID, p.UserID, p.CompletedLessonsCount, p.ProgressPercent, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create global progress: %w", err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		p.ID = int(newID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up global progress: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `
		UPDATE global_progress
		SET completed_lessons_count = ?, progress_percent = ?, updated_at = ?
		WHERE id = ?
	`, p.CompletedLessonsCount, p.ProgressPercent, p.UpdatedAt, id); err != nil {
		return fmt.Errorf("failed to update global progress: %w", err)
	}
	p.ID = id

	return nil
}
