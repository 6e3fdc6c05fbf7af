package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RepairQueue is the interface that wraps queueing of tenant repairs
type RepairQueue interface {
	// EnqueueTenantRepairNow queues a full repair of the tenant
	//
	// "ctx" is the context for the request.
	// "tenantID" is the ID of the tenant.
	//
	// Returns an error if any.
	EnqueueTenantRepairNow(ctx context.Context, tenantID int) error
}

// AdminHandler handles HTTP requests of tenant administrators
type AdminHandler struct {
	BaseHandler
	queue RepairQueue
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(queue RepairQueue, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		queue:       queue,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/repair", h.RepairTenant)
	})
}

// RepairTenant handles POST /admin/repair
// @Summary Repair tenant progress
// @Description Queue a rebuild of the content statistics and every learner's progress of the caller's tenant
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string "Repair queued"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/repair [post]
func (h *AdminHandler) RepairTenant(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.queue.EnqueueTenantRepairNow(r.Context(), identity.TenantID); err != nil {
		h.RespondServiceError(w, r, err, "queue tenant repair")
		return
	}

	h.Logger.Info("tenant repair queued",
		zap.Int("tenant_id", identity.TenantID),
		zap.String("user_id", identity.UserID),
	)
	h.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
