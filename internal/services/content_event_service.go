package services

import (
	"context"
	"errors"
	"time"

	"github.com/aulaflow/progress-service/internal/models"
	"go.uber.org/zap"
)

// contentEventService applies authoring events to the denormalized counters:
// the unit lesson count and the content statistics cache.
type contentEventService struct {
	tx        Transactor
	content   ContentRepository
	stats     ContentStatsRepository
	scheduler RepairScheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewContentEventService creates a new content event service. scheduler may be nil,
// in which case no follow-up repair is queued.
func NewContentEventService(tx Transactor, content ContentRepository, stats ContentStatsRepository, scheduler RepairScheduler, logger *zap.Logger) *contentEventService {
	return &contentEventService{
		tx:        tx,
		content:   content,
		stats:     stats,
		scheduler: scheduler,
		logger:    logger,
		now:       storeNow,
	}
}

// Apply records one authoring event. When ctx carries the authoring transaction the
// counter updates commit or roll back together with the content mutation.
func (s *contentEventService) Apply(ctx context.Context, tenantID int, event models.ContentEvent) error {
	if err := validateTenant(tenantID); err != nil {
		return err
	}
	if err := event.Validate(); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()

		if event.Entity == models.EntityLesson {
			switch event.Action {
			case models.ActionCreated:
				if _, err := s.content.AdjustUnitLessonCount(ctx, tenantID, event.UnitID, 1); err != nil {
					return err
				}
			case models.ActionDeleted:
				// The unit may already be gone when a whole unit is removed
				if _, err := s.content.AdjustUnitLessonCount(ctx, tenantID, event.UnitID, -1); err != nil && !errors.Is(err, models.ErrNotFound) {
					return err
				}
			}
		}

		if delta := statsDelta(event); delta != 0 {
			return s.stats.Adjust(ctx, tenantID, event.Counter(), delta, now)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("content event applied",
		zap.Int("tenant_id", tenantID),
		zap.String("entity", string(event.Entity)),
		zap.String("action", string(event.Action)),
		zap.Int("unit_id", event.UnitID),
	)
	s.scheduleFollowUp(ctx, tenantID, event)

	return nil
}

// statsDelta maps an event onto the published content counters
func statsDelta(event models.ContentEvent) int {
	switch event.Action {
	case models.ActionCreated:
		if event.Published {
			return 1
		}
	case models.ActionDeleted:
		if event.Published {
			return -1
		}
	case models.ActionPublished:
		return 1
	case models.ActionUnpublished:
		return -1
	}
	return 0
}

// scheduleFollowUp queues the recounts that bring stored aggregates in line with the new totals
func (s *contentEventService) scheduleFollowUp(ctx context.Context, tenantID int, event models.ContentEvent) {
	if s.scheduler == nil || event.Entity != models.EntityLesson {
		return
	}

	if event.Action == models.ActionCreated || event.Action == models.ActionDeleted {
		if err := s.scheduler.EnqueueUnitRefresh(ctx, tenantID, event.UnitID); err != nil {
			s.logger.Warn("failed to enqueue unit refresh",
				zap.Int("tenant_id", tenantID),
				zap.Int("unit_id", event.UnitID),
				zap.Error(err),
			)
		}
	}

	if statsDelta(event) != 0 {
		if err := s.scheduler.EnqueueTenantRepair(ctx, tenantID); err != nil {
			s.logger.Warn("failed to enqueue tenant repair",
				zap.Int("tenant_id", tenantID),
				zap.Error(err),
			)
		}
	}
}
