package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aulaflow/progress-service/internal/auth"
	"github.com/aulaflow/progress-service/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// heartbeatsPerMinute bounds playback heartbeats per user
const heartbeatsPerMinute = 120

// ProgressService is the interface that wraps the progress update engine
type ProgressService interface {
	// MarkLessonCompleted completes a lesson for a user and cascades the aggregates
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the resulting progress state and an error if any.
	MarkLessonCompleted(ctx context.Context, tenantID int, userID string, lessonID int) (*models.ProgressResult, error)
	// MarkLessonIncomplete reverts a completion and cascades the aggregates
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the resulting progress state and an error if any.
	MarkLessonIncomplete(ctx context.Context, tenantID int, userID string, lessonID int) (*models.ProgressResult, error)
	// SaveVideoProgress records a playback heartbeat, completing the lesson past the threshold
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	// "currentTimeSec" is the playback position in seconds.
	// "durationSec" is the video duration in seconds.
	//
	// Returns the resulting progress state and an error if any.
	SaveVideoProgress(ctx context.Context, tenantID int, userID string, lessonID int, currentTimeSec, durationSec float64) (*models.ProgressResult, error)
	// RecalculateGlobalProgress recounts the global aggregate of a user
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	// "userID" is the ID of the user.
	//
	// Returns the stored aggregate and an error if any.
	RecalculateGlobalProgress(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error)
}

// ProgressQueryService is the interface that wraps the progress read paths
type ProgressQueryService interface {
	GetLessonProgress(ctx context.Context, tenantID int, userID string, lessonID int) (*models.LessonProgress, error)
	GetUnitProgress(ctx context.Context, tenantID int, userID string, unitID int) (*models.UnitProgress, error)
	GetGlobalProgress(ctx context.Context, tenantID int, userID string) (*models.GlobalProgress, error)
	GetUnitLessonsProgress(ctx context.Context, tenantID int, userID string, unitID int) ([]models.LessonProgress, error)
	GetAllUnitProgress(ctx context.Context, tenantID int, userID string) ([]models.UnitProgress, error)
	GetCompletedLessons(ctx context.Context, tenantID int, userID string) ([]models.LessonProgress, error)
	GetCompletedPublishedLessonsCount(ctx context.Context, tenantID int, userID string) (int, error)
	GetUnitProgressByCategory(ctx context.Context, tenantID int, userID string, categoryID int) ([]models.UnitProgress, error)
	GetCompletedLessonsByCategory(ctx context.Context, tenantID int, userID string, categoryID int) ([]models.LessonProgress, error)
}

// ContentStatsReader is the interface that wraps the live content totals read
type ContentStatsReader interface {
	// Get recounts the published content of a tenant
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	//
	// Returns the content totals and an error if any.
	Get(ctx context.Context, tenantID int) (*models.ContentStatistics, error)
}

// ProgressHandler handles HTTP requests of learners and the playback client
type ProgressHandler struct {
	BaseHandler
	service ProgressService
	queries ProgressQueryService
	stats   ContentStatsReader
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, queries ProgressQueryService, stats ContentStatsReader, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		queries:     queries,
		stats:       stats,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/lessons/{lessonID}", func(r chi.Router) {
			r.Post("/complete", h.MarkLessonCompleted)
			r.Delete("/complete", h.MarkLessonIncomplete)
			r.With(httprate.Limit(heartbeatsPerMinute, time.Minute, httprate.WithKeyFuncs(userKey))).
				Put("/video-progress", h.SaveVideoProgress)
			r.Get("/progress", h.GetLessonProgress)
		})
		r.Route("/units/{unitID}", func(r chi.Router) {
			r.Get("/progress", h.GetUnitProgress)
			r.Get("/lessons/progress", h.GetUnitLessonsProgress)
		})
		r.Route("/progress", func(r chi.Router) {
			r.Get("/units", h.GetAllUnitProgress)
			r.Get("/global", h.GetGlobalProgress)
			r.Post("/global/recalculate", h.RecalculateGlobalProgress)
			r.Get("/completed-lessons", h.GetCompletedLessons)
			r.Get("/completed-lessons/count", h.GetCompletedLessonsCount)
		})
		r.Route("/categories/{categoryID}", func(r chi.Router) {
			r.Get("/units/progress", h.GetUnitProgressByCategory)
			r.Get("/lessons/completed", h.GetCompletedLessonsByCategory)
		})
		r.Get("/content-stats", h.GetContentStats)
	})
}

// userKey rate limits per tenant and user, falling back to the client IP
func userKey(r *http.Request) (string, error) {
	if identity, ok := auth.GetIdentity(r.Context()); ok {
		return identity.UserID + "@" + strconv.Itoa(identity.TenantID), nil
	}
	return httprate.KeyByIP(r)
}

// MarkLessonCompleted handles POST /lessons/{lessonID}/complete
// @Summary Mark lesson completed
// @Description Complete a lesson for the caller and update the unit and global progress. Completing an already completed lesson changes nothing.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.ProgressResult "Resulting progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID}/complete [post]
func (h *ProgressHandler) MarkLessonCompleted(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID")
	if !ok {
		return
	}

	result, err := h.service.MarkLessonCompleted(r.Context(), identity.TenantID, identity.UserID, lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err, "mark lesson completed")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// MarkLessonIncomplete handles DELETE /lessons/{lessonID}/complete
// @Summary Mark lesson incomplete
// @Description Revert a completion and update the unit and global progress. Playback position is kept.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.ProgressResult "Resulting progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID}/complete [delete]
func (h *ProgressHandler) MarkLessonIncomplete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID")
	if !ok {
		return
	}

	result, err := h.service.MarkLessonIncomplete(r.Context(), identity.TenantID, identity.UserID, lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err, "mark lesson incomplete")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// SaveVideoProgress handles PUT /lessons/{lessonID}/video-progress
// @Summary Save playback heartbeat
// @Description Store the playback position. Reaching the completion threshold completes the lesson; completion is never revoked by a later heartbeat.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Param request body models.VideoProgressRequest true "Playback position"
// @Success 200 {object} models.ProgressResult "Resulting progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 429 {object} map[string]string "Too many heartbeats"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID}/video-progress [put]
func (h *ProgressHandler) SaveVideoProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID")
	if !ok {
		return
	}

	var req models.VideoProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.SaveVideoProgress(r.Context(), identity.TenantID, identity.UserID, lessonID, req.CurrentTimeSec, req.DurationSec)
	if err != nil {
		h.RespondServiceError(w, r, err, "save video progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetLessonProgress handles GET /lessons/{lessonID}/progress
// @Summary Get lesson progress
// @Description Get the caller's completion and playback position for a lesson. A lesson never opened reads as not completed.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.LessonProgress "Lesson progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID}/progress [get]
func (h *ProgressHandler) GetLessonProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID")
	if !ok {
		return
	}

	progress, err := h.queries.GetLessonProgress(r.Context(), identity.TenantID, identity.UserID, lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get lesson progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetUnitProgress handles GET /units/{unitID}/progress
// @Summary Get unit progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param unitID path int true "Unit ID"
// @Success 200 {object} models.UnitProgress "Unit progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /units/{unitID}/progress [get]
func (h *ProgressHandler) GetUnitProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	unitID, ok := h.pathID(w, r, "unitID")
	if !ok {
		return
	}

	progress, err := h.queries.GetUnitProgress(r.Context(), identity.TenantID, identity.UserID, unitID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get unit progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetUnitLessonsProgress handles GET /units/{unitID}/lessons/progress
// @Summary Get lesson progress of a unit
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param unitID path int true "Unit ID"
// @Success 200 {array} models.LessonProgress "Lesson progress records"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /units/{unitID}/lessons/progress [get]
func (h *ProgressHandler) GetUnitLessonsProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	unitID, ok := h.pathID(w, r, "unitID")
	if !ok {
		return
	}

	progress, err := h.queries.GetUnitLessonsProgress(r.Context(), identity.TenantID, identity.UserID, unitID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get unit lessons progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetAllUnitProgress handles GET /progress/units
// @Summary Get progress of every unit
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UnitProgress "Unit progress records"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress/units [get]
func (h *ProgressHandler) GetAllUnitProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	progress, err := h.queries.GetAllUnitProgress(r.Context(), identity.TenantID, identity.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get unit progress list")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetGlobalProgress handles GET /progress/global
// @Summary Get global progress
// @Description Get the caller's completion across all published lessons of the tenant
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.GlobalProgress "Global progress"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress/global [get]
func (h *ProgressHandler) GetGlobalProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	progress, err := h.queries.GetGlobalProgress(r.Context(), identity.TenantID, identity.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get global progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// RecalculateGlobalProgress handles POST /progress/global/recalculate
// @Summary Recalculate global progress
// @Description Recount the caller's global progress from lesson progress, creating the record when missing
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.GlobalProgress "Global progress"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress/global/recalculate [post]
func (h *ProgressHandler) RecalculateGlobalProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	progress, err := h.service.RecalculateGlobalProgress(r.Context(), identity.TenantID, identity.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "recalculate global progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetCompletedLessons handles GET /progress/completed-lessons
// @Summary Get completed lessons
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.LessonProgress "Completed lesson records"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress/completed-lessons [get]
func (h *ProgressHandler) GetCompletedLessons(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	lessons, err := h.queries.GetCompletedLessons(r.Context(), identity.TenantID, identity.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get completed lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetCompletedLessonsCount handles GET /progress/completed-lessons/count
// @Summary Count completed published lessons
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CountResponse "Completed published lessons"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /progress/completed-lessons/count [get]
func (h *ProgressHandler) GetCompletedLessonsCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	count, err := h.queries.GetCompletedPublishedLessonsCount(r.Context(), identity.TenantID, identity.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "count completed lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.CountResponse{Count: count})
}

// GetUnitProgressByCategory handles GET /categories/{categoryID}/units/progress
// @Summary Get unit progress of a category
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param categoryID path int true "Category ID"
// @Success 200 {array} models.UnitProgress "Unit progress records"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /categories/{categoryID}/units/progress [get]
func (h *ProgressHandler) GetUnitProgressByCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(w, r, "categoryID")
	if !ok {
		return
	}

	progress, err := h.queries.GetUnitProgressByCategory(r.Context(), identity.TenantID, identity.UserID, categoryID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get category unit progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetCompletedLessonsByCategory handles GET /categories/{categoryID}/lessons/completed
// @Summary Get completed lessons of a category
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param categoryID path int true "Category ID"
// @Success 200 {array} models.LessonProgress "Completed lesson records"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /categories/{categoryID}/lessons/completed [get]
func (h *ProgressHandler) GetCompletedLessonsByCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(w, r, "categoryID")
	if !ok {
		return
	}

	lessons, err := h.queries.GetCompletedLessonsByCategory(r.Context(), identity.TenantID, identity.UserID, categoryID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get category completed lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetContentStats handles GET /content-stats
// @Summary Get content statistics
// @Description Get the live count of published lessons, units and categories of the caller's tenant
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ContentStatistics "Content statistics"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /content-stats [get]
func (h *ProgressHandler) GetContentStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.Get(r.Context(), identity.TenantID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get content statistics")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}
