package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetrics(t *testing.T) {
	m := NewHTTPMetrics()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/batches/:id", func(c *gin.Context) { c.String(http.StatusOK, "batch") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/batches/1", "/batches/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/batches/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "unknown", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRequests))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_server_request_total{method="GET",route="/batches/:id",status_code="200"} 2`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
