package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/aulaflow/progress-service/internal/database"
	"github.com/aulaflow/progress-service/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		is_published BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE units (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		total_lesson_videos INTEGER NOT NULL DEFAULT 0,
		is_published BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE lessons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		unit_id INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		is_published BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE lesson_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		lesson_id INTEGER NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at DATETIME NULL,
		current_time_sec REAL NULL,
		duration_sec REAL NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, user_id, lesson_id)
	)`,
	`CREATE TABLE unit_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		unit_id INTEGER NOT NULL,
		completed_lessons_count INTEGER NOT NULL DEFAULT 0,
		total_lesson_videos INTEGER NOT NULL DEFAULT 0,
		progress_percent INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, user_id, unit_id)
	)`,
	`CREATE TABLE global_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		completed_lessons_count INTEGER NOT NULL DEFAULT 0,
		progress_percent INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, user_id)
	)`,
	`CREATE TABLE content_statistics (
		tenant_id INTEGER PRIMARY KEY,
		total_lessons INTEGER NOT NULL DEFAULT 0,
		total_units INTEGER NOT NULL DEFAULT 0,
		total_categories INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL
	)`,
}

// testStore wires the real repositories and services over an in-memory SQLite database
type testStore struct {
	db           *sql.DB
	tx           *database.TxRunner
	content      ContentRepository
	lessons      LessonProgressRepository
	units        UnitProgressRepository
	global       GlobalProgressRepository
	stats        ContentStatsRepository
	progress     *progressService
	queries      *progressQueryService
	statsService *contentStatsService
}

// openTestStore creates an isolated database. Each store gets its own in-memory database
// and a single connection so transactions serialize like they do under SERIALIZABLE.
func openTestStore() (*testStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger := zap.NewNop()
	runner := database.NewTxRunner(db, database.TxOptions{MaxAttempts: 1}, logger)
	s := &testStore{
		db:      db,
		tx:      runner,
		content: repositories.NewContentRepository(db),
		lessons: repositories.NewLessonProgressRepository(db),
		units:   repositories.NewUnitProgressRepository(db),
		global:  repositories.NewGlobalProgressRepository(db),
		stats:   repositories.NewContentStatsRepository(db),
	}
	s.progress = NewProgressService(runner, s.content, s.lessons, s.units, s.global, DefaultCompletionThreshold, logger)
	s.queries = NewProgressQueryService(s.lessons, s.units, s.global)
	s.statsService = NewContentStatsService(runner, s.stats, logger)

	return s, nil
}

func setupTestStore(t *testing.T) *testStore {
	t.Helper()
	s, err := openTestStore()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.db.Close() })
	return s
}

func (s *testStore) exec(query string, args ...any) (int, error) {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	return int(id), err
}

func (s *testStore) mustExec(t *testing.T, query string, args ...any) int {
	t.Helper()
	id, err := s.exec(query, args...)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func (s *testStore) addCategory(t *testing.T, tenantID int, published bool) int {
	t.Helper()
	return s.mustExec(t, `INSERT INTO categories (tenant_id, is_published) VALUES (?, ?)`, tenantID, published)
}

func (s *testStore) addUnit(t *testing.T, tenantID, categoryID int, published bool) int {
	t.Helper()
	return s.mustExec(t, `INSERT INTO units (tenant_id, category_id, is_published) VALUES (?, ?, ?)`, tenantID, categoryID, published)
}

// addLesson inserts a lesson and bumps the unit lesson count the way the authoring hooks do
func (s *testStore) addLesson(t *testing.T, tenantID, unitID int, published bool) int {
	t.Helper()
	id := s.mustExec(t, `INSERT INTO lessons (tenant_id, unit_id, is_published) VALUES (?, ?, ?)`, tenantID, unitID, published)
	s.mustExec(t, `UPDATE units SET total_lesson_videos = total_lesson_videos + 1 WHERE id = ?`, unitID)
	return id
}

func (s *testStore) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

// passthroughTx runs the unit of work directly, for tests with hand-written repository mocks
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
