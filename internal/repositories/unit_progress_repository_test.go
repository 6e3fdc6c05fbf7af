package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aulaflow/progress-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitProgressRowColumns = []string{
	"id", "tenant_id", "user_id", "unit_id", "completed_lessons_count", "total_lesson_videos", "progress_percent", "updated_at",
}

// setupUnitProgressTestRepository creates a unit progress repository with a mock database
func setupUnitProgressTestRepository(t *testing.T) (*unitProgressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewUnitProgressRepository(db), mock, func() { db.Close() }
}

func TestUnitProgressRepository_Get(t *testing.T) {
	repo, mock, cleanup := setupUnitProgressTestRepository(t)
	defer cleanup()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM unit_progress up\s+WHERE up.tenant_id = \? AND up.user_id = \? AND up.unit_id = \?`).
		WithArgs(1, "user-1", 3).
		WillReturnRows(sqlmock.NewRows(unitProgressRowColumns).AddRow(5, 1, "user-1", 3, 1, 3, 33, now))
	mock.ExpectQuery(`FROM unit_progress up`).
		WithArgs(1, "user-1", 4).
		WillReturnRows(sqlmock.NewRows(unitProgressRowColumns))

	progress, err := repo.Get(context.Background(), 1, "user-1", 3)
	require.NoError(t, err)
	assert.Equal(t, &models.UnitProgress{
		ID: 5, TenantID: 1, UserID: "user-1", UnitID: 3,
		CompletedLessonsCount: 1, TotalLessonVideos: 3, ProgressPercent: 33, UpdatedAt: now,
	}, progress)

	_, err = repo.Get(context.Background(), 1, "user-1", 4)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitProgressRepository_Upsert(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "creates missing row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id FROM unit_progress WHERE tenant_id = \? AND user_id = \? AND unit_id = \?`).
					WithArgs(1, "user-1", 3).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectExec(`INSERT INTO unit_progress`).
					WithArgs(1, "user-1", 3, 2, 3, 67, now).
					WillReturnResult(sqlmock.NewResult(9, 1))
			},
			expectedID: 9,
		},
		{
			name: "overwrites existing row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id FROM unit_progress`).
					WithArgs(1, "user-1", 3).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
				mock.ExpectExec(`UPDATE unit_progress\s+SET completed_lessons_count = \?, total_lesson_videos = \?, progress_percent = \?, updated_at = \?\s+WHERE id = \?`).
					WithArgs(2, 3, 67, now, 5).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedID: 5,
		},
		{
			name: "lookup error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id FROM unit_progress`).WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "insert error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id FROM unit_progress`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectExec(`INSERT INTO unit_progress`).WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUnitProgressTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			progress := &models.UnitProgress{
				TenantID: 1, UserID: "user-1", UnitID: 3,
				CompletedLessonsCount: 2, TotalLessonVideos: 3, ProgressPercent: 67, UpdatedAt: now,
			}
			err := repo.Upsert(context.Background(), progress)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, progress.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUnitProgressRepository_ListByCategory(t *testing.T) {
	repo, mock, cleanup := setupUnitProgressTestRepository(t)
	defer cleanup()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`JOIN units u ON u.id = up.unit_id AND u.tenant_id = up.tenant_id\s+WHERE up.tenant_id = \? AND up.user_id = \? AND u.category_id = \?\s+ORDER BY up.unit_id\s+LIMIT \?`).
		WithArgs(1, "user-1", 2, 200).
		WillReturnRows(sqlmock.NewRows(unitProgressRowColumns).
			AddRow(5, 1, "user-1", 3, 1, 3, 33, now).
			AddRow(6, 1, "user-1", 4, 0, 2, 0, now))

	progress, err := repo.ListByCategory(context.Background(), 1, "user-1", 2, 200)

	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, 3, progress[0].UnitID)
	assert.Equal(t, 4, progress[1].UnitID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
