package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// FormTokenField is the hidden input rendered into every guarded form
const FormTokenField = "form_token"

// Flash statuses carried in the redirect query string
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// SubmitToken applies a form once. The first POST carrying a token claims
// it, any replay is redirected back with an error. Posts without a token
// pass through. Store errors fail open.
func SubmitToken(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		token := strings.TrimSpace(c.PostForm(FormTokenField))
		if token == "" {
			c.Next()
			return
		}

		fresh, err := store.MarkProcessed(c.Request.Context(), token, ttl)
		if err != nil {
			logger.Warn("Submit token store unavailable", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			logger.Info("Duplicate form submission", zap.String("path", c.Request.URL.Path))
			RedirectWithFlash(c, BackPath(c, c.Request.URL.Path), FlashError, shared.ErrDuplicateSubmission.Message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectWithFlash redirects to path with ?status=&message= appended
func RedirectWithFlash(c *gin.Context, path, status, message string) {
	u, err := url.Parse(path)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("status", status)
	q.Set("message", message)
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusSeeOther, u.String())
}

// BackPath returns the same-site page the form was posted from, or fallback
func BackPath(c *gin.Context, fallback string) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return fallback
	}
	q := StripFlash(u.Query())
	back := &url.URL{Path: u.Path, RawQuery: q.Encode()}
	if back.Path == "" {
		back.Path = "/"
	}
	return back.String()
}

// StripFlash removes the status banner parameters. A "status" value other
// than success or error is a list filter and stays.
func StripFlash(q url.Values) url.Values {
	if s := q.Get("status"); s == FlashSuccess || s == FlashError {
		q.Del("status")
	}
	q.Del("message")
	return q
}
