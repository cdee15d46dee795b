package event

import (
	"context"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	fn    func(ctx context.Context, e shared.DomainEvent) error
	types []string
}

// NewHandlerFunc wraps fn as a handler for eventTypes
func NewHandlerFunc(fn func(ctx context.Context, e shared.DomainEvent) error, eventTypes ...string) *HandlerFunc {
	return &HandlerFunc{fn: fn, types: eventTypes}
}

// Handle calls the wrapped function
func (h *HandlerFunc) Handle(ctx context.Context, e shared.DomainEvent) error {
	return h.fn(ctx, e)
}

// EventTypes returns the types passed to NewHandlerFunc
func (h *HandlerFunc) EventTypes() []string {
	return h.types
}
