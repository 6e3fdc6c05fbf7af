package services

import (
	"context"
	"errors"

	"github.com/aulaflow/progress-service/internal/models"
)

// Read limits for category scoped queries
const (
	maxUnitsPerCategory   = 200
	maxLessonsPerCategory = 1000
)

// progressQueryService serves the read paths. A missing aggregate row reads as all zeros.
type progressQueryService struct {
	lessons LessonProgressRepository
	units   UnitProgressRepository
	global  GlobalProgressRepository
}

// NewProgressQueryService creates a new progress query service
func NewProgressQueryService(lessons LessonProgressRepository, units UnitProgressRepository, global GlobalProgressRepository) *progressQueryService {
	return &progressQueryService{
		lessons: lessons,
		units:   units,
		global:  global,
	}
}

func (s *progressQueryService) GetLessonProgress(ctx context.Context, tenantID int, userID string, lessonID int) (*models.LessonProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	progress, err := s.lessons.Get(ctx, tenantID, userID, lessonID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.LessonProgress{TenantID: tenantID, UserID: userID, LessonID: lessonID}, nil
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *progressQueryService) GetUnitProgress(ctx context.Context, tenantID int, userID string, unitID int) (*models.UnitProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	progress, err := s.units.Get(ctx, tenantID, userID, unitID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.UnitProgress{TenantID: tenantID, UserID: userID, UnitID: unitID}, nil
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *progressQueryService) GetGlobalProgress(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	progress, err := s.global.Get(ctx, tenantID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.GlobalProgress{TenantID: tenantID, UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *progressQueryService) GetUnitLessonsProgress(ctx context.Context, tenantID int, userID string, unitID int) ([]models.LessonProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}
	return s.lessons.ListByUnit(ctx, tenantID, userID, unitID)
}

func (s *progressQueryService) GetAllUnitProgress(ctx context.Context, tenantID int, userID string) ([]models.UnitProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}
	return s.units.ListByUser(ctx, tenantID, userID)
}

func (s *progressQueryService) GetCompletedLessons(ctx context.Context, tenantID int, userID string) ([]models.LessonProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}
	return s.lessons.ListCompleted(ctx, tenantID, userID)
}

// GetCompletedPublishedLessonsCount reads the count from the global aggregate instead of recounting
func (s *progressQueryService) GetCompletedPublishedLessonsCount(ctx context.Context, tenantID int, userID string) (int, error) {
	global, err := s.GetGlobalProgress(ctx, tenantID, userID)
	if err != nil {
		return 0, err
	}
	return global.CompletedLessonsCount, nil
}

// GetUnitProgressByCategory returns the stored aggregates of the category's units.
// A category outside the tenant yields an empty list.
func (s *progressQueryService) GetUnitProgressByCategory(ctx context.Context, tenantID int, userID string, categoryID int) ([]models.UnitProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}
	return s.units.ListByCategory(ctx, tenantID, userID, categoryID, maxUnitsPerCategory)
}

func (s *progressQueryService) GetCompletedLessonsByCategory(ctx context.Context, tenantID int, userID string, categoryID int) ([]models.LessonProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}
	return s.lessons.ListCompletedByCategory(ctx, tenantID, userID, categoryID, maxLessonsPerCategory)
}
