package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLimiter_RejectsBadRate(t *testing.T) {
	_, err := NewLimiter("lots", "test", nil)
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	l, err := NewLimiter("2-M", "test", nil)
	require.NoError(t, err)

	router := gin.New()
	router.Use(RateLimit(l, nil, zap.NewNop()))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/api/v1/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do("/test", "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("/test", "10.0.0.1").Code)

	w = do("/api/v1/test", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("/test", "10.0.0.2").Code, "buckets are per client")
}

func TestPostOnly(t *testing.T) {
	l, err := NewLimiter("1-H", "login", nil)
	require.NoError(t, err)

	router := gin.New()
	limited := PostOnly(RateLimit(l, nil, nil))
	router.GET("/login", limited, func(c *gin.Context) { c.String(http.StatusOK, "form") })
	router.POST("/login", limited, func(c *gin.Context) { c.String(http.StatusOK, "posted") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
