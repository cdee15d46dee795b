package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// SystemHandler serves the health endpoint
type SystemHandler struct {
	checks    map[string]HealthCheck
	version   string
	startTime time.Time
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler. Each check is reported under its name.
func NewSystemHandler(version string, checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		version:   version,
		startTime: time.Now(),
		timeout:   3 * time.Second,
	}
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports 200 when every dependency answers and 503 otherwise
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status, code := "healthy", http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("component", name), zap.Error(err))
			components[name] = "error"
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	c.JSON(code, HealthResponse{
		Status:     status,
		Time:       time.Now().Format(time.RFC3339),
		Version:    h.version,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: components,
	})
}
