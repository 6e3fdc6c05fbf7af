package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockLocker is a mock implementation of Locker
type mockLocker struct {
	held map[string]bool
	err  error
	ttl  time.Duration
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.held == nil {
		m.held = map[string]bool{}
	}
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	m.ttl = ttl
	return true, nil
}

// mockTenantLister is a mock implementation of TenantLister
type mockTenantLister struct {
	tenants []int
	err     error
}

func (m *mockTenantLister) ListTenantIDs(ctx context.Context) ([]int, error) {
	return m.tenants, m.err
}

// mockJobQueue is a mock implementation of JobQueue
type mockJobQueue struct {
	stats   []int
	repairs []int
	failFor int
}

func (m *mockJobQueue) EnqueueStatsRecalculate(ctx context.Context, tenantID int) error {
	if tenantID == m.failFor {
		return errors.New("redis unavailable")
	}
	m.stats = append(m.stats, tenantID)
	return nil
}

func (m *mockJobQueue) EnqueueTenantRepairNow(ctx context.Context, tenantID int) error {
	if tenantID == m.failFor {
		return errors.New("redis unavailable")
	}
	m.repairs = append(m.repairs, tenantID)
	return nil
}

func TestScheduler_RunStatsRecalculate(t *testing.T) {
	tests := []struct {
		name             string
		locker           *mockLocker
		lister           *mockTenantLister
		failFor          int
		expectedEnqueued int
		expectedStats    []int
	}{
		{
			name:             "every tenant",
			locker:           &mockLocker{},
			lister:           &mockTenantLister{tenants: []int{1, 2, 3}},
			expectedEnqueued: 3,
			expectedStats:    []int{1, 2, 3},
		},
		{
			name:             "enqueue failure skips tenant",
			locker:           &mockLocker{},
			lister:           &mockTenantLister{tenants: []int{1, 2, 3}},
			failFor:          2,
			expectedEnqueued: 2,
			expectedStats:    []int{1, 3},
		},
		{
			name:   "lock held elsewhere",
			locker: &mockLocker{held: map[string]bool{jobStatsRecalculate: true}},
			lister: &mockTenantLister{tenants: []int{1}},
		},
		{
			name:   "lock error",
			locker: &mockLocker{err: errors.New("redis down")},
			lister: &mockTenantLister{tenants: []int{1}},
		},
		{
			name:   "tenant listing fails",
			locker: &mockLocker{},
			lister: &mockTenantLister{err: errors.New("database error")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &mockJobQueue{failFor: tt.failFor}
			s := NewScheduler(tt.locker, tt.lister, queue, zap.NewNop(), time.Minute)

			enqueued := s.RunStatsRecalculate(context.Background())

			assert.Equal(t, tt.expectedEnqueued, enqueued)
			assert.Equal(t, tt.expectedStats, queue.stats)
			assert.Empty(t, queue.repairs)
		})
	}
}

func TestScheduler_RunTenantRepair(t *testing.T) {
	locker := &mockLocker{}
	queue := &mockJobQueue{}
	s := NewScheduler(locker, &mockTenantLister{tenants: []int{4, 5}}, queue, zap.NewNop(), 5*time.Minute)

	assert.Equal(t, 2, s.RunTenantRepair(context.Background()))
	assert.Equal(t, []int{4, 5}, queue.repairs)
	assert.Equal(t, 5*time.Minute, locker.ttl)

	// the lock is still held on the next tick
	assert.Equal(t, 0, s.RunTenantRepair(context.Background()))
	assert.Equal(t, []int{4, 5}, queue.repairs)
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name          string
		statsSpec     string
		repairSpec    string
		expectedError bool
	}{
		{name: "valid schedules", statsSpec: "@every 30m", repairSpec: "0 3 * * *"},
		{name: "invalid stats schedule", statsSpec: "every half hour", repairSpec: "0 3 * * *", expectedError: true},
		{name: "invalid repair schedule", statsSpec: "@every 30m", repairSpec: "0 3 * *", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&mockLocker{}, &mockTenantLister{}, &mockJobQueue{}, zap.NewNop(), time.Minute)

			err := s.Start(tt.statsSpec, tt.repairSpec)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, s.cron.Entries(), 2)
			s.Stop()
		})
	}
}
