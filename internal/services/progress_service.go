package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aulaflow/progress-service/internal/metrics"
	"github.com/aulaflow/progress-service/internal/models"
	"go.uber.org/zap"
)

// DefaultCompletionThreshold is the watched ratio at which playback completes a lesson
const DefaultCompletionThreshold = 0.9

type progressService struct {
	tx        Transactor
	content   ContentRepository
	lessons   LessonProgressRepository
	units     UnitProgressRepository
	global    GlobalProgressRepository
	threshold float64
	logger    *zap.Logger
	now       func() time.Time
}

// NewProgressService creates the progress update engine.
// A non-positive threshold falls back to DefaultCompletionThreshold.
func NewProgressService(
	tx Transactor,
	content ContentRepository,
	lessons LessonProgressRepository,
	units UnitProgressRepository,
	global GlobalProgressRepository,
	threshold float64,
	logger *zap.Logger,
) *progressService {
	if threshold <= 0 {
		threshold = DefaultCompletionThreshold
	}
	return &progressService{
		tx:        tx,
		content:   content,
		lessons:   lessons,
		units:     units,
		global:    global,
		threshold: threshold,
		logger:    logger,
		now:       storeNow,
	}
}

// storeNow matches the millisecond precision of the DATETIME(3) columns
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func validateSubject(tenantID int, userID string) error {
	if tenantID <= 0 {
		return fmt.Errorf("tenant id must be positive: %w", models.ErrInvalidState)
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required: %w", models.ErrInvalidState)
	}
	return nil
}

func (s *progressService) MarkLessonCompleted(ctx context.Context, tenantID int, userID string, lessonID int) (result *models.ProgressResult, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("mark_completed", start, err) }(time.Now())

	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		unit, err := s.resolveLesson(ctx, tenantID, lessonID)
		if err != nil {
			return err
		}

		progress, err := s.findLessonProgress(ctx, tenantID, userID, lessonID)
		if err != nil {
			return err
		}
		if progress != nil && progress.Completed {
			result = &models.ProgressResult{Lesson: *progress}
			return nil
		}

		now := s.now()
		if progress == nil {
			progress = &models.LessonProgress{TenantID: tenantID, UserID: userID, LessonID: lessonID}
		}
		progress.Completed = true
		progress.CompletedAt = &now
		progress.UpdatedAt = now
		if err := s.saveLessonProgress(ctx, progress); err != nil {
			return err
		}

		result, err = s.cascade(ctx, progress, unit, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Cascaded {
		metrics.LessonCompletions.WithLabelValues(metrics.TriggerExplicit).Inc()
		s.logger.Debug("lesson completed",
			zap.Int("tenant_id", tenantID),
			zap.String("user_id", userID),
			zap.Int("lesson_id", lessonID),
			zap.Int("global_percent", result.Global.ProgressPercent),
		)
	}

	return result, nil
}

func (s *progressService) MarkLessonIncomplete(ctx context.Context, tenantID int, userID string, lessonID int) (result *models.ProgressResult, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("mark_incomplete", start, err) }(time.Now())

	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		unit, err := s.resolveLesson(ctx, tenantID, lessonID)
		if err != nil {
			return err
		}

		progress, err := s.findLessonProgress(ctx, tenantID, userID, lessonID)
		if err != nil {
			return err
		}
		if progress == nil {
			result = &models.ProgressResult{Lesson: models.LessonProgress{TenantID: tenantID, UserID: userID, LessonID: lessonID}}
			return nil
		}
		if !progress.Completed {
			result = &models.ProgressResult{Lesson: *progress}
			return nil
		}

		now := s.now()
		progress.Completed = false
		progress.CompletedAt = nil
		progress.UpdatedAt = now
		if err := s.saveLessonProgress(ctx, progress); err != nil {
			return err
		}

		result, err = s.cascade(ctx, progress, unit, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Cascaded {
		metrics.LessonUncompletions.Inc()
	}

	return result, nil
}

func (s *progressService) SaveVideoProgress(ctx context.Context, tenantID int, userID string, lessonID int, currentTimeSec, durationSec float64) (result *models.ProgressResult, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("save_video_progress", start, err) }(time.Now())

	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}
	if !isFinite(currentTimeSec) || !isFinite(durationSec) {
		return nil, fmt.Errorf("playback position must be finite: %w", models.ErrInvalidState)
	}
	if currentTimeSec < 0 || durationSec < 0 {
		return nil, fmt.Errorf("playback position and duration must not be negative: %w", models.ErrInvalidState)
	}

	ratio := 0.0
	if durationSec > 0 {
		ratio = currentTimeSec / durationSec
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		unit, err := s.resolveLesson(ctx, tenantID, lessonID)
		if err != nil {
			return err
		}

		progress, err := s.findLessonProgress(ctx, tenantID, userID, lessonID)
		if err != nil {
			return err
		}

		now := s.now()
		if progress == nil {
			progress = &models.LessonProgress{TenantID: tenantID, UserID: userID, LessonID: lessonID}
		}
		current, duration := currentTimeSec, durationSec
		progress.CurrentTimeSec = &current
		progress.DurationSec = &duration
		progress.UpdatedAt = now

		completes := ratio >= s.threshold && !progress.Completed
		if completes {
			progress.Completed = true
			progress.CompletedAt = &now
		}

		if err := s.saveLessonProgress(ctx, progress); err != nil {
			return err
		}

		if !completes {
			result = &models.ProgressResult{Lesson: *progress}
			return nil
		}

		result, err = s.cascade(ctx, progress, unit, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Heartbeats.Inc()
	if result.Cascaded {
		metrics.LessonCompletions.WithLabelValues(metrics.TriggerPlayback).Inc()
	}

	return result, nil
}

func (s *progressService) RecalculateGlobalProgress(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	var global *models.GlobalProgress
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		global, err = s.recountGlobal(ctx, tenantID, userID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	return global, nil
}

func (s *progressService) RecalculateUnitProgress(ctx context.Context, tenantID int, userID string, unitID int) (*models.UnitProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	var progress *models.UnitProgress
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		unit, err := s.content.GetUnit(ctx, tenantID, unitID)
		if err != nil {
			return err
		}
		progress, err = s.recountUnit(ctx, tenantID, userID, unit, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *progressService) RecalculateUserProgress(ctx context.Context, tenantID int, userID string) (*models.UserProgress, error) {
	if err := validateSubject(tenantID, userID); err != nil {
		return nil, err
	}

	var summary *models.UserProgress
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		unitIDs, err := s.lessons.ListUnitIDsForUser(ctx, tenantID, userID)
		if err != nil {
			return err
		}

		now := s.now()
		summary = &models.UserProgress{Units: make([]models.UnitProgress, 0, len(unitIDs))}
		for _, unitID := range unitIDs {
			unit, err := s.content.GetUnit(ctx, tenantID, unitID)
			if errors.Is(err, models.ErrNotFound) {
				// Progress on lessons of a deleted unit has nothing to aggregate into
				continue
			}
			if err != nil {
				return err
			}
			progress, err := s.recountUnit(ctx, tenantID, userID, unit, now)
			if err != nil {
				return err
			}
			summary.Units = append(summary.Units, *progress)
		}

		global, err := s.recountGlobal(ctx, tenantID, userID, now)
		if err != nil {
			return err
		}
		summary.Global = *global
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// resolveLesson checks that the lesson and its unit exist and returns the unit
func (s *progressService) resolveLesson(ctx context.Context, tenantID, lessonID int) (*models.Unit, error) {
	lesson, err := s.content.GetLesson(ctx, tenantID, lessonID)
	if err != nil {
		return nil, err
	}

	unit, err := s.content.GetUnit(ctx, tenantID, lesson.UnitID)
	if err != nil {
		return nil, fmt.Errorf("unit of lesson %d: %w", lessonID, err)
	}

	return unit, nil
}

// findLessonProgress returns nil without error when the user has no row for the lesson
func (s *progressService) findLessonProgress(ctx context.Context, tenantID int, userID string, lessonID int) (*models.LessonProgress, error) {
	progress, err := s.lessons.Get(ctx, tenantID, userID, lessonID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *progressService) saveLessonProgress(ctx context.Context, progress *models.LessonProgress) error {
	if progress.ID == 0 {
		return s.lessons.Create(ctx, progress)
	}
	return s.lessons.Update(ctx, progress)
}

// cascade recounts the unit and global aggregates after a completion change of progress
func (s *progressService) cascade(ctx context.Context, progress *models.LessonProgress, unit *models.Unit, now time.Time) (*models.ProgressResult, error) {
	unitProgress, err := s.recountUnit(ctx, progress.TenantID, progress.UserID, unit, now)
	if err != nil {
		return nil, err
	}

	global, err := s.recountGlobal(ctx, progress.TenantID, progress.UserID, now)
	if err != nil {
		return nil, err
	}

	return &models.ProgressResult{
		Lesson:   *progress,
		Unit:     unitProgress,
		Global:   global,
		Cascaded: true,
	}, nil
}

func (s *progressService) recountUnit(ctx context.Context, tenantID int, userID string, unit *models.Unit, now time.Time) (*models.UnitProgress, error) {
	completed, err := s.lessons.CountCompletedInUnit(ctx, tenantID, userID, unit.ID)
	if err != nil {
		return nil, err
	}

	progress := &models.UnitProgress{
		TenantID:              tenantID,
		UserID:                userID,
		UnitID:                unit.ID,
		CompletedLessonsCount: completed,
		TotalLessonVideos:     unit.TotalLessonVideos,
		ProgressPercent:       models.Percent(completed, unit.TotalLessonVideos),
		UpdatedAt:             now,
	}
	if err := s.units.Upsert(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *progressService) recountGlobal(ctx context.Context, tenantID int, userID string, now time.Time) (*models.GlobalProgress, error) {
	completed, err := s.lessons.CountCompletedPublished(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.content.CountPublishedLessons(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	progress := &models.GlobalProgress{
		TenantID:              tenantID,
		UserID:                userID,
		CompletedLessonsCount: completed,
		ProgressPercent:       models.Percent(completed, total),
		UpdatedAt:             now,
	}
	if err := s.global.Upsert(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
