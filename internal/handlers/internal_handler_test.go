package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aulaflow/progress-service/internal/auth"
	"github.com/aulaflow/progress-service/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const internalAPIKey = "internal-key"

// mockEventService is a mock implementation of ContentEventService
type mockEventService struct {
	events []models.ContentEvent
	err    error
}

func (m *mockEventService) Apply(ctx context.Context, tenantID int, event models.ContentEvent) error {
	if m.err != nil {
		return m.err
	}
	if err := event.Validate(); err != nil {
		return err
	}
	m.events = append(m.events, event)
	return nil
}

// mockStatsAdmin is a mock implementation of ContentStatsAdmin
type mockStatsAdmin struct {
	stats *models.ContentStatistics
	err   error
}

func (m *mockStatsAdmin) Initialize(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	return m.stats, m.err
}

func (m *mockStatsAdmin) Recalculate(ctx context.Context, tenantID int) (*models.ContentStatistics, error) {
	return m.stats, m.err
}

// mockUserRecalculator is a mock implementation of UserProgressRecalculator
type mockUserRecalculator struct {
	err error
}

func (m *mockUserRecalculator) RecalculateUserProgress(ctx context.Context, tenantID int, userID string) (*models.UserProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.UserProgress{Global: models.GlobalProgress{TenantID: tenantID, UserID: userID, ProgressPercent: 40}}, nil
}

// mockUnitRepair is a mock implementation of UnitRepairService
type mockUnitRepair struct {
	err error
}

func (m *mockUnitRepair) RecalculateUnitForAllUsers(ctx context.Context, tenantID, unitID int) (*models.RepairReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.RepairReport{TenantID: tenantID, UnitID: unitID, UsersRepaired: 3}, nil
}

func setupInternalRouter(events *mockEventService, stats *mockStatsAdmin, users *mockUserRecalculator, units *mockUnitRepair) http.Handler {
	r := chi.NewRouter()
	handler := NewInternalHandler(events, stats, users, units, zap.NewNop())
	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r, auth.APIKeyMiddleware(internalAPIKey))
	})
	return r
}

func TestInternalHandler_ApplyContentEvent(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		body           string
		err            error
		expectedStatus int
	}{
		{
			name:           "lesson created",
			apiKey:         internalAPIKey,
			body:           `{"entity":"lesson","action":"created","entityId":5,"unitId":2,"published":true}`,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "missing api key",
			body:           `{"entity":"lesson","action":"created","unitId":2}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong api key",
			apiKey:         "guess",
			body:           `{"entity":"lesson","action":"created","unitId":2}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed body",
			apiKey:         internalAPIKey,
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid event",
			apiKey:         internalAPIKey,
			body:           `{"entity":"lesson","action":"created"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unit not found",
			apiKey:         internalAPIKey,
			body:           `{"entity":"lesson","action":"created","unitId":99}`,
			err:            fmt.Errorf("unit 99: %w", models.ErrNotFound),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &mockEventService{err: tt.err}
			router := setupInternalRouter(events, &mockStatsAdmin{}, &mockUserRecalculator{}, &mockUnitRepair{})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/tenants/7/content-events", bytes.NewBufferString(tt.body))
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusNoContent {
				assert.Len(t, events.events, 1)
				assert.Equal(t, models.EntityLesson, events.events[0].Entity)
				assert.Equal(t, 2, events.events[0].UnitID)
			} else {
				assert.Empty(t, events.events)
			}
		})
	}
}

func TestInternalHandler_Maintenance(t *testing.T) {
	stats := &mockStatsAdmin{stats: &models.ContentStatistics{TenantID: 7, TotalLessons: 12}}

	tests := []struct {
		name           string
		path           string
		users          *mockUserRecalculator
		units          *mockUnitRepair
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "recalculate stats",
			path:           "/api/v1/internal/tenants/7/content-stats/recalculate",
			expectedStatus: http.StatusOK,
			expectedBody:   `"totalLessons":12`,
		},
		{
			name:           "initialize stats",
			path:           "/api/v1/internal/tenants/7/content-stats/initialize",
			expectedStatus: http.StatusOK,
			expectedBody:   `"tenantId":7`,
		},
		{
			name:           "recalculate user",
			path:           "/api/v1/internal/tenants/7/users/alice/progress/recalculate",
			expectedStatus: http.StatusOK,
			expectedBody:   `"userId":"alice"`,
		},
		{
			name:           "recalculate user failure",
			path:           "/api/v1/internal/tenants/7/users/alice/progress/recalculate",
			users:          &mockUserRecalculator{err: errors.New("deadlock")},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "recalculate unit",
			path:           "/api/v1/internal/tenants/7/units/4/progress/recalculate",
			expectedStatus: http.StatusOK,
			expectedBody:   `"usersRepaired":3`,
		},
		{
			name:           "unknown unit",
			path:           "/api/v1/internal/tenants/7/units/4/progress/recalculate",
			units:          &mockUnitRepair{err: fmt.Errorf("unit 4: %w", models.ErrNotFound)},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid tenant",
			path:           "/api/v1/internal/tenants/zero/content-stats/recalculate",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := tt.users
			if users == nil {
				users = &mockUserRecalculator{}
			}
			units := tt.units
			if units == nil {
				units = &mockUnitRepair{}
			}
			router := setupInternalRouter(&mockEventService{}, stats, users, units)
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set("X-API-Key", internalAPIKey)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}
