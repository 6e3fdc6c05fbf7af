package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aulaflow/progress-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContentEventService is the interface that wraps the authoring hooks
type ContentEventService interface {
	// Apply records an authoring event against the tenant's counters
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "event" is the authoring event.
	//
	// Returns an error if any.
	Apply(ctx context.Context, tenantID int, event models.ContentEvent) error
}

// ContentStatsAdmin is the interface that wraps the content statistics maintenance operations
type ContentStatsAdmin interface {
	// Initialize stores a recount when the tenant has no statistics row yet
	Initialize(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
	// Recalculate overwrites the statistics row with a recount
	Recalculate(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
}

// UserProgressRecalculator is the interface that wraps the per-user repair
type UserProgressRecalculator interface {
	RecalculateUserProgress(ctx context.Context, tenantID int, userID string) (*models.UserProgress, error)
}

// UnitRepairService is the interface that wraps the per-unit fan-out repair
type UnitRepairService interface {
	RecalculateUnitForAllUsers(ctx context.Context, tenantID, unitID int) (*models.RepairReport, error)
}

// InternalHandler handles HTTP requests of the authoring subsystem
type InternalHandler struct {
	BaseHandler
	events   ContentEventService
	stats    ContentStatsAdmin
	progress UserProgressRecalculator
	repair   UnitRepairService
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(
	events ContentEventService,
	stats ContentStatsAdmin,
	progress UserProgressRecalculator,
	repair UnitRepairService,
	logger *zap.Logger,
) *InternalHandler {
	return &InternalHandler{
		events:      events,
		stats:       stats,
		progress:    progress,
		repair:      repair,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all internal handler routes
func (h *InternalHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/internal/tenants/{tenantID}", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Post("/content-events", h.ApplyContentEvent)
		r.Post("/content-stats/recalculate", h.RecalculateContentStats)
		r.Post("/content-stats/initialize", h.InitializeContentStats)
		r.Post("/users/{userID}/progress/recalculate", h.RecalculateUserProgress)
		r.Post("/units/{unitID}/progress/recalculate", h.RecalculateUnitProgress)
	})
}

// ApplyContentEvent handles POST /internal/tenants/{tenantID}/content-events
// @Summary Apply content event
// @Description Update the unit lesson count and content statistics after an authoring change
// @Tags internal
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param tenantID path int true "Tenant ID"
// @Param request body models.ContentEvent true "Authoring event"
// @Success 204 "Applied"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unit not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/tenants/{tenantID}/content-events [post]
func (h *InternalHandler) ApplyContentEvent(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}

	var event models.ContentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.events.Apply(r.Context(), tenantID, event); err != nil {
		h.RespondServiceError(w, r, err, "apply content event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecalculateContentStats handles POST /internal/tenants/{tenantID}/content-stats/recalculate
// @Summary Recalculate content statistics
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Param tenantID path int true "Tenant ID"
// @Success 200 {object} models.ContentStatistics "Stored statistics"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/tenants/{tenantID}/content-stats/recalculate [post]
func (h *InternalHandler) RecalculateContentStats(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}

	stats, err := h.stats.Recalculate(r.Context(), tenantID)
	if err != nil {
		h.RespondServiceError(w, r, err, "recalculate content statistics")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// InitializeContentStats handles POST /internal/tenants/{tenantID}/content-stats/initialize
// @Summary Initialize content statistics
// @Description Create the statistics row from a recount. An existing row is returned unchanged.
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Param tenantID path int true "Tenant ID"
// @Success 200 {object} models.ContentStatistics "Stored statistics"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/tenants/{tenantID}/content-stats/initialize [post]
func (h *InternalHandler) InitializeContentStats(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}

	stats, err := h.stats.Initialize(r.Context(), tenantID)
	if err != nil {
		h.RespondServiceError(w, r, err, "initialize content statistics")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// RecalculateUserProgress handles POST /internal/tenants/{tenantID}/users/{userID}/progress/recalculate
// @Summary Recalculate a user's progress
// @Description Recount every unit aggregate and the global aggregate of a user
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Param tenantID path int true "Tenant ID"
// @Param userID path string true "User ID"
// @Success 200 {object} models.UserProgress "Recomputed aggregates"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/tenants/{tenantID}/users/{userID}/progress/recalculate [post]
func (h *InternalHandler) RecalculateUserProgress(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		h.RespondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	progress, err := h.progress.RecalculateUserProgress(r.Context(), tenantID, userID)
	if err != nil {
		h.RespondServiceError(w, r, err, "recalculate user progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// RecalculateUnitProgress handles POST /internal/tenants/{tenantID}/units/{unitID}/progress/recalculate
// @Summary Recalculate a unit for all users
// @Description Recount the unit and global aggregates of every user with progress in the unit
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Param tenantID path int true "Tenant ID"
// @Param unitID path int true "Unit ID"
// @Success 200 {object} models.RepairReport "Repair report"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Partial failure"
// @Router /internal/tenants/{tenantID}/units/{unitID}/progress/recalculate [post]
func (h *InternalHandler) RecalculateUnitProgress(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}
	unitID, ok := h.pathID(w, r, "unitID")
	if !ok {
		return
	}

	report, err := h.repair.RecalculateUnitForAllUsers(r.Context(), tenantID, unitID)
	if err != nil {
		h.RespondServiceError(w, r, err, "recalculate unit progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, report)
}
