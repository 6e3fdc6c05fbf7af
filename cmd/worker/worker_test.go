package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aulaflow/progress-service/internal/models"
	"github.com/aulaflow/progress-service/internal/tasks"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRepairService is a mock implementation of RepairService
type mockRepairService struct {
	report      *models.RepairReport
	err         error
	unitCalls   [][2]int
	tenantCalls []int
}

func (m *mockRepairService) RecalculateUnitForAllUsers(ctx context.Context, tenantID, unitID int) (*models.RepairReport, error) {
	m.unitCalls = append(m.unitCalls, [2]int{tenantID, unitID})
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockRepairService) RepairTenant(ctx context.Context, tenantID int) (*models.RepairReport, error) {
	m.tenantCalls = append(m.tenantCalls, tenantID)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

// mockStatsService is a mock implementation of ContentStatsService
type mockStatsService struct {
	err   error
	calls []int
}

func (m *mockStatsService) Recalculate(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	m.calls = append(m.calls, tenantID)
	if m.err != nil {
		return nil, m.err
	}
	return &models.ContentStatistics{TenantID: tenantID}, nil
}

func TestWorker_HandleUnitRefresh(t *testing.T) {
	task, err := tasks.NewUnitRefreshTask(2, 9)
	require.NoError(t, err)

	tests := []struct {
		name          string
		task          *asynq.Task
		repair        *mockRepairService
		expectedError bool
		skipRetry     bool
		expectedCalls int
	}{
		{
			name:          "success",
			task:          task,
			repair:        &mockRepairService{report: &models.RepairReport{UsersRepaired: 4}},
			expectedCalls: 1,
		},
		{
			name:          "partial failure is retried",
			task:          task,
			repair:        &mockRepairService{report: &models.RepairReport{UsersRepaired: 3, UsersFailed: 1}},
			expectedError: true,
			expectedCalls: 1,
		},
		{
			name:          "unit deleted",
			task:          task,
			repair:        &mockRepairService{err: fmt.Errorf("unit 9: %w", models.ErrNotFound)},
			expectedError: true,
			skipRetry:     true,
			expectedCalls: 1,
		},
		{
			name:          "store failure is retried",
			task:          task,
			repair:        &mockRepairService{err: errors.New("deadlock")},
			expectedError: true,
			expectedCalls: 1,
		},
		{
			name:          "malformed payload",
			task:          asynq.NewTask(tasks.TypeUnitRefresh, []byte(`{"tenantId":2}`)),
			repair:        &mockRepairService{},
			expectedError: true,
			skipRetry:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(zap.NewNop(), tt.repair, &mockStatsService{})

			err := w.HandleUnitRefresh(context.Background(), tt.task)

			if tt.expectedError {
				require.Error(t, err)
				assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, tt.repair.unitCalls, tt.expectedCalls)
			if tt.expectedCalls > 0 {
				assert.Equal(t, [2]int{2, 9}, tt.repair.unitCalls[0])
			}
		})
	}
}

func TestWorker_HandleTenantRepair(t *testing.T) {
	task, err := tasks.NewTenantRepairTask(5)
	require.NoError(t, err)

	tests := []struct {
		name          string
		repair        *mockRepairService
		expectedError bool
	}{
		{name: "success", repair: &mockRepairService{report: &models.RepairReport{TenantID: 5, UsersRepaired: 10}}},
		{name: "failure", repair: &mockRepairService{err: errors.New("connection refused")}, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(zap.NewNop(), tt.repair, &mockStatsService{})

			err := w.HandleTenantRepair(context.Background(), task)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []int{5}, tt.repair.tenantCalls)
		})
	}
}

func TestWorker_HandleStatsRecalculate(t *testing.T) {
	task, err := tasks.NewStatsRecalculateTask(3)
	require.NoError(t, err)

	stats := &mockStatsService{}
	w := NewWorker(zap.NewNop(), &mockRepairService{}, stats)

	require.NoError(t, w.HandleStatsRecalculate(context.Background(), task))
	assert.Equal(t, []int{3}, stats.calls)

	err = w.HandleStatsRecalculate(context.Background(), asynq.NewTask(tasks.TypeStatsRecalculate, []byte(`{"tenantId":0}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, []int{3}, stats.calls)
}

func TestWorker_Register(t *testing.T) {
	stats := &mockStatsService{}
	w := NewWorker(zap.NewNop(), &mockRepairService{}, stats)
	mux := asynq.NewServeMux()
	w.Register(mux)

	task, err := tasks.NewStatsRecalculateTask(8)
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []int{8}, stats.calls)
}
