package handler

import (
	"github.com/gin-gonic/gin"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// ActivityHandler serves the activity log viewer
type ActivityHandler struct {
	BaseHandler
	activity *appactivity.ActivityService
	users    *appidentity.UserService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(base BaseHandler, svc *appactivity.ActivityService, users *appidentity.UserService) *ActivityHandler {
	return &ActivityHandler{BaseHandler: base, activity: svc, users: users}
}

type activityView struct {
	Logs    shared.Paginated[activity.LogRow]
	Users   []appidentity.UserDTO
	Actions []string
	Modules []string
}

// List renders the log with its user, action and module filters
func (h *ActivityHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := activityView{Modules: activity.AllModules}
	if view.Logs, err = h.activity.List(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Actions, err = h.activity.Actions(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Users, err = h.users.ListActive(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "activity_logs", "Activity Logs", "activity_logs", view)
}
