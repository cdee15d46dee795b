package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/dashboard"
)

// DashboardHandler renders the landing page
type DashboardHandler struct {
	BaseHandler
	dashboard *dashboard.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(base BaseHandler, svc *dashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, dashboard: svc}
}

// Show renders the summary cards and recent notifications
func (h *DashboardHandler) Show(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context(), actor(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "dashboard", "Dashboard", "dashboard", overview)
}
