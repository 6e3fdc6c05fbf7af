package services

import (
	"context"
	"time"

	"github.com/aulaflow/progress-service/internal/models"
)

// Transactor runs a unit of work inside one store transaction
type Transactor interface {
	// WithinTx runs fn in a transaction and commits when fn returns nil.
	// fn may be run again from scratch when the store aborts the transaction with a conflict.
	//
	// "ctx" is the context for the request.
	// "fn" is the unit of work. Repositories called with the context it receives join the transaction.
	//
	// Returns the error of fn or of the transaction, if any.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ContentRepository defines methods for content inventory access
type ContentRepository interface {
	// GetLesson retrieves a lesson of the tenant
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the lesson and an error wrapping models.ErrNotFound when it does not exist.
	GetLesson(ctx context.Context, tenantID, lessonID int) (*models.Lesson, error)
	// GetUnit retrieves a unit of the tenant
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "unitID" is the ID of the unit.
	//
	// Returns the unit and an error wrapping models.ErrNotFound when it does not exist.
	GetUnit(ctx context.Context, tenantID, unitID int) (*models.Unit, error)
	// CountPublishedLessons counts the published lessons of the tenant
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	//
	// Returns the count and an error if any.
	CountPublishedLessons(ctx context.Context, tenantID int) (int, error)
	// AdjustUnitLessonCount adds delta to the lesson count of a unit, flooring it at zero
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "unitID" is the ID of the unit.
	// "delta" is the signed change.
	//
	// Returns the new count and an error if any.
	AdjustUnitLessonCount(ctx context.Context, tenantID, unitID, delta int) (int, error)
}

// LessonProgressRepository defines methods for lesson progress data access
type LessonProgressRepository interface {
	// Get retrieves the progress row of a user for a lesson
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the progress row and an error wrapping models.ErrNotFound when there is none.
	Get(ctx context.Context, tenantID int, userID string, lessonID int) (*models.LessonProgress, error)
	// Create inserts a progress row
	//
	// "ctx" is the context for the request.
	// "progress" is the row to insert. Its ID is set on success.
	//
	// Returns an error if any.
	Create(ctx context.Context, progress *models.LessonProgress) error
	// Update overwrites the mutable fields of a progress row
	//
	// "ctx" is the context for the request.
	// "progress" is the row to write.
	//
	// Returns an error if any.
	Update(ctx context.Context, progress *models.LessonProgress) error
	// CountCompletedInUnit counts the user's completed lessons currently belonging to a unit
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "unitID" is the ID of the unit.
	//
	// Returns the count and an error if any.
	CountCompletedInUnit(ctx context.Context, tenantID int, userID string, unitID int) (int, error)
	// CountCompletedPublished counts the user's completed lessons that exist and are published
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	//
	// Returns the count and an error if any.
	CountCompletedPublished(ctx context.Context, tenantID int, userID string) (int, error)
	ListByUnit(ctx context.Context, tenantID int, userID string, unitID int) ([]models.LessonProgress, error)
	ListCompleted(ctx context.Context, tenantID int, userID string) ([]models.LessonProgress, error)
	ListCompletedByCategory(ctx context.Context, tenantID int, userID string, categoryID, limit int) ([]models.LessonProgress, error)
	// ListUnitIDsForUser lists the units in which the user has lesson progress or a stored aggregate
	ListUnitIDsForUser(ctx context.Context, tenantID int, userID string) ([]int, error)
	// ListUserIDsByUnit lists the users with progress in a unit
	ListUserIDsByUnit(ctx context.Context, tenantID, unitID int) ([]string, error)
	// ListUserIDs lists the users with any progress in the tenant
	ListUserIDs(ctx context.Context, tenantID int) ([]string, error)
}

// UnitProgressRepository defines methods for unit aggregate data access
type UnitProgressRepository interface {
	// Get retrieves the stored aggregate of a user for a unit
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "unitID" is the ID of the unit.
	//
	// Returns the aggregate and an error wrapping models.ErrNotFound when there is none.
	Get(ctx context.Context, tenantID int, userID string, unitID int) (*models.UnitProgress, error)
	// Upsert creates or overwrites the aggregate row
	//
	// "ctx" is the context for the request.
	// "progress" is the aggregate to store. Its ID is set on success.
	//
	// Returns an error if any.
	Upsert(ctx context.Context, progress *models.UnitProgress) error
	ListByUser(ctx context.Context, tenantID int, userID string) ([]models.UnitProgress, error)
	ListByCategory(ctx context.Context, tenantID int, userID string, categoryID, limit int) ([]models.UnitProgress, error)
}

// GlobalProgressRepository defines methods for global aggregate data access
type GlobalProgressRepository interface {
	// Get retrieves the stored global aggregate of a user
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	//
	// Returns the aggregate and an error wrapping models.ErrNotFound when there is none.
	Get(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error)
	// Upsert creates or overwrites the aggregate row
	//
	// "ctx" is the context for the request.
	// "progress" is the aggregate to store. Its ID is set on success.
	//
	// Returns an error if any.
	Upsert(ctx context.Context, progress *models.GlobalProgress) error
}

// ContentStatsRepository defines methods for content statistics data access
type ContentStatsRepository interface {
	// Get retrieves the stored statistics row
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	//
	// Returns the row and an error wrapping models.ErrNotFound when there is none.
	Get(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
	// Recount counts the published lessons, units and categories directly
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	//
	// Returns the counts and an error if any.
	Recount(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
	// Save writes the statistics row, creating it when absent
	//
	// "ctx" is the context for the request.
	// "stats" is the row to write.
	//
	// Returns an error if any.
	Save(ctx context.Context, stats *models.ContentStatistics) error
	// Adjust adds delta to one counter of the stored row, flooring it at zero
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "counter" is the counter to change.
	// "delta" is the signed change. A positive delta creates a missing row.
	// "now" is the update timestamp.
	//
	// Returns an error if any.
	Adjust(ctx context.Context, tenantID int, counter models.StatsCounter, delta int, now time.Time) error
}

// RepairScheduler enqueues asynchronous repair jobs
type RepairScheduler interface {
	// EnqueueUnitRefresh schedules a recount of every user's aggregates for a unit
	EnqueueUnitRefresh(ctx context.Context, tenantID, unitID int) error
	// EnqueueTenantRepair schedules a recount of every aggregate of a tenant
	EnqueueTenantRepair(ctx context.Context, tenantID int) error
}
