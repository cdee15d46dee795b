// Package handler implements the pages, form posts and JSON endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/logger"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/views"
	"go.uber.org/zap"
)

const genericFailure = "Something went wrong. Please try again."

// UnreadCounter feeds the notification badge of the navigation
type UnreadCounter interface {
	UnreadCount(ctx context.Context, actor identity.Actor) (int64, error)
}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	unread UnreadCounter
	pdf    bool
	logger *zap.Logger
}

// NewBaseHandler creates the shared handler utilities
func NewBaseHandler(unread UnreadCounter, pdfEnabled bool, logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{unread: unread, pdf: pdfEnabled, logger: logger}
}

type errorView struct {
	Status  int
	Message string
}

// actor returns the signed-in user; the session middleware guarantees one on
// protected routes
func actor(c *gin.Context) identity.Actor {
	a, _ := middleware.GetActor(c)
	return a
}

// log returns the request-scoped logger
func (h *BaseHandler) log(c *gin.Context) *zap.Logger {
	if _, ok := c.Get(logger.GinContextKey); ok {
		return logger.GetGinLogger(c)
	}
	return h.logger.With(zap.String("request_id", middleware.GetRequestID(c)))
}

// page builds the view model shared by every template
func (h *BaseHandler) page(c *gin.Context, title, active string, data any) views.Page {
	query := c.Request.URL.Query()
	p := views.Page{
		Title:     title,
		Active:    active,
		Flash:     views.Flash{Status: query.Get("status"), Message: query.Get("message")},
		FormToken: uuid.NewString(),
		Query:     middleware.StripFlash(query),
		RequestID: middleware.GetRequestID(c),
		PDF:       h.pdf,
		Data:      data,
	}
	if p.Flash.Status != middleware.FlashSuccess && p.Flash.Status != middleware.FlashError {
		p.Flash = views.Flash{}
	}
	if a, ok := middleware.GetActor(c); ok {
		p.User = &a
		if h.unread != nil {
			n, err := h.unread.UnreadCount(c.Request.Context(), a)
			if err != nil {
				h.log(c).Warn("Failed to count unread notifications", zap.Error(err))
			}
			p.UnreadCount = n
		}
	}
	return p
}

// render writes a full page
func (h *BaseHandler) render(c *gin.Context, name, title, active string, data any) {
	c.HTML(http.StatusOK, name, h.page(c, title, active, data))
}

// renderError shows the error page for a failed GET
func (h *BaseHandler) renderError(c *gin.Context, err error) {
	status, message := h.describe(c, err)
	c.HTML(status, "error", h.page(c, http.StatusText(status), "", errorView{Status: status, Message: message}))
}

// fail redirects a failed form POST back to the page it came from
func (h *BaseHandler) fail(c *gin.Context, err error, fallback string) {
	_, message := h.describe(c, err)
	middleware.RedirectWithFlash(c, middleware.BackPath(c, fallback), middleware.FlashError, message)
}

// invalid redirects a form POST whose fields did not validate
func (h *BaseHandler) invalid(c *gin.Context, err error, fallback string) {
	middleware.RedirectWithFlash(c, middleware.BackPath(c, fallback), middleware.FlashError, middleware.ValidationMessage(err))
}

// succeed redirects a completed form POST
func (h *BaseHandler) succeed(c *gin.Context, path, message string) {
	middleware.RedirectWithFlash(c, path, middleware.FlashSuccess, message)
}

// describe maps err to a status and a message safe to show. Unexpected
// errors are logged and replaced with a generic message.
func (h *BaseHandler) describe(c *gin.Context, err error) (int, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return dto.GetHTTPStatus(dto.NormalizeErrorCode(domainErr.Code)), domainErr.Message
	}
	h.log(c).Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	return http.StatusInternalServerError, genericFailure
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// HandleDomainError converts domain errors to the JSON envelope
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}
	h.describe(c, err)
	h.Error(c, dto.ErrCodeInternal, genericFailure)
}

// NotFound answers unmatched routes with the error page, or the envelope under /api
func (h *BaseHandler) NotFound(c *gin.Context) {
	if middleware.IsAPIRequest(c) {
		h.Error(c, dto.ErrCodeNotFound, "Resource not found")
		return
	}
	h.renderError(c, shared.NewDomainError(shared.CodeNotFound, "Page not found"))
}
