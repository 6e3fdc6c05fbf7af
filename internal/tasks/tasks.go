// Package tasks defines the background jobs that repair progress aggregates and content statistics
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type names
const (
	TypeUnitRefresh      = "progress:unit_refresh"
	TypeTenantRepair     = "progress:tenant_repair"
	TypeStatsRecalculate = "content_stats:recalculate"
)

// Queue names
const (
	QueueRepair = "repair"
	QueueStats  = "default"
)

const (
	// unitRefreshDelay lets a burst of lesson events in one unit collapse into a single refresh
	unitRefreshDelay = 30 * time.Second
	// tenantRepairDelay is longer since a tenant repair touches every user
	tenantRepairDelay = 5 * time.Minute
	uniqueTTL         = 10 * time.Minute
)

// UnitRefreshPayload is the payload of TypeUnitRefresh
type UnitRefreshPayload struct {
	TenantID int `json:"tenantId"`
	UnitID   int `json:"unitId"`
}

// TenantPayload is the payload of TypeTenantRepair and TypeStatsRecalculate
type TenantPayload struct {
	TenantID int `json:"tenantId"`
}

// NewUnitRefreshTask creates a task recounting one unit for every user with progress in it
func NewUnitRefreshTask(tenantID, unitID int) (*asynq.Task, error) {
	payload, err := json.Marshal(UnitRefreshPayload{TenantID: tenantID, UnitID: unitID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unit refresh payload: %w", err)
	}
	return asynq.NewTask(TypeUnitRefresh, payload, asynq.MaxRetry(5)), nil
}

// NewTenantRepairTask creates a task rebuilding every aggregate of a tenant
func NewTenantRepairTask(tenantID int) (*asynq.Task, error) {
	return newTenantTask(TypeTenantRepair, tenantID, asynq.MaxRetry(3))
}

// NewStatsRecalculateTask creates a task overwriting the content statistics row of a tenant
func NewStatsRecalculateTask(tenantID int) (*asynq.Task, error) {
	return newTenantTask(TypeStatsRecalculate, tenantID, asynq.MaxRetry(3))
}

func newTenantTask(typename string, tenantID int, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(TenantPayload{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, payload, opts...), nil
}

// ParseUnitRefreshPayload decodes and validates a TypeUnitRefresh payload
func ParseUnitRefreshPayload(data []byte) (UnitRefreshPayload, error) {
	var p UnitRefreshPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal unit refresh payload: %w", err)
	}
	if p.TenantID <= 0 || p.UnitID <= 0 {
		return p, fmt.Errorf("unit refresh payload requires tenantId and unitId")
	}
	return p, nil
}

// ParseTenantPayload decodes and validates a tenant scoped payload
func ParseTenantPayload(data []byte) (TenantPayload, error) {
	var p TenantPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal tenant payload: %w", err)
	}
	if p.TenantID <= 0 {
		return p, fmt.Errorf("tenant payload requires tenantId")
	}
	return p, nil
}

// Client is the part of *asynq.Client the enqueuer uses
type Client interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer queues repair jobs. Jobs are unique per target for a while so a burst of
// authoring events produces one job.
type Enqueuer struct {
	client Client
	logger *zap.Logger
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client Client, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger,
	}
}

// EnqueueUnitRefresh queues a delayed recount of the unit for all of its users
func (e *Enqueuer) EnqueueUnitRefresh(ctx context.Context, tenantID, unitID int) error {
	task, err := NewUnitRefreshTask(tenantID, unitID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task,
		asynq.Queue(QueueRepair),
		asynq.ProcessIn(unitRefreshDelay),
		asynq.Unique(uniqueTTL),
	)
}

// EnqueueTenantRepair queues a delayed full repair of the tenant
func (e *Enqueuer) EnqueueTenantRepair(ctx context.Context, tenantID int) error {
	task, err := NewTenantRepairTask(tenantID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task,
		asynq.Queue(QueueRepair),
		asynq.ProcessIn(tenantRepairDelay),
		asynq.Unique(uniqueTTL),
	)
}

// EnqueueTenantRepairNow queues a full repair of the tenant without delay
func (e *Enqueuer) EnqueueTenantRepairNow(ctx context.Context, tenantID int) error {
	task, err := NewTenantRepairTask(tenantID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, asynq.Queue(QueueRepair), asynq.Unique(uniqueTTL))
}

// EnqueueStatsRecalculate queues a content statistics recount of the tenant
func (e *Enqueuer) EnqueueStatsRecalculate(ctx context.Context, tenantID int) error {
	task, err := NewStatsRecalculateTask(tenantID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, asynq.Queue(QueueStats), asynq.Unique(uniqueTTL))
}

// enqueue treats a duplicate of a pending job as success
func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		e.logger.Debug("task already queued", zap.String("type", task.Type()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	e.logger.Debug("task enqueued",
		zap.String("type", task.Type()),
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
	)
	return nil
}
