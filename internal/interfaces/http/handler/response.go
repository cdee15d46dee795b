package handler

import "github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"

// APIResponse documents the envelope of a JSON endpoint with its data typed
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents a failed JSON call
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData is the unread notification badge
// @Description Count data
type CountData struct {
	Count int64 `json:"count" example:"3"`
}

// HealthResponse is the body of /health
// @Description Service health with one entry per dependency
type HealthResponse struct {
	Status     string            `json:"status" example:"healthy"`
	Time       string            `json:"time"`
	Version    string            `json:"version" example:"dev"`
	GoVersion  string            `json:"go_version"`
	Uptime     string            `json:"uptime" example:"1h2m3s"`
	Components map[string]string `json:"components"`
}
