package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
)

// SocketServer upgrades a request to the user's realtime notification stream
type SocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID)
}

// NotificationHandler serves the notification list, the unread badge and
// the realtime stream
type NotificationHandler struct {
	BaseHandler
	notifications *appnotification.NotificationService
	sockets       SocketServer
}

// NewNotificationHandler creates a new NotificationHandler. sockets may be nil
// when realtime delivery is disabled.
func NewNotificationHandler(base BaseHandler, svc *appnotification.NotificationService, sockets SocketServer) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, notifications: svc, sockets: sockets}
}

type notificationsView struct {
	Notifications shared.Paginated[notification.Notification]
}

// List renders the actor's notifications
func (h *NotificationHandler) List(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	page, err := h.notifications.ListForUser(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "notifications", "Notifications", "notifications", notificationsView{Notifications: page})
}

// MarkRead marks one notification read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err, "/notifications")
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, err, "/notifications")
		return
	}
	h.succeed(c, middleware.BackPath(c, "/notifications"), "Notification marked as read")
}

// MarkAllRead marks every unread notification read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err, "/notifications")
		return
	}
	h.succeed(c, "/notifications", strconv.FormatInt(n, 10)+" notifications marked as read")
}

// UnreadCount godoc
// @ID           getUnreadNotificationCount
// @Summary      Count unread notifications
// @Description  Unread notifications addressed to the signed-in user
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  APIResponse[CountData]
// @Failure      401  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, CountData{Count: n})
}

// Stream upgrades to the websocket that pushes new notifications
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.sockets == nil {
		h.Error(c, dto.ErrCodeNotFound, "Realtime notifications are disabled")
		return
	}
	h.sockets.ServeWS(c.Writer, c.Request, actor(c).UserID)
}
