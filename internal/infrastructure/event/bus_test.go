package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) handler(name string, err error, eventTypes ...string) *HandlerFunc {
	return NewHandlerFunc(func(_ context.Context, e shared.DomainEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.seen = append(r.seen, name+":"+e.EventType())
		return err
	}, eventTypes...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}

	bus.Subscribe(rec.handler("transfers", nil, "inventory.transfer.completed"))
	bus.Subscribe(rec.handler("all", nil))
	bus.Subscribe(rec.handler("sales", nil), "sales.sale.created")

	err := bus.Publish(context.Background(),
		newTestEvent("inventory.transfer.completed"),
		newTestEvent("sales.sale.created"),
		newTestEvent("unrelated"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"transfers:inventory.transfer.completed",
		"all:inventory.transfer.completed",
		"sales:sales.sale.created",
		"all:sales.sale.created",
		"all:unrelated",
	}, rec.seen)
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}

	bus.Subscribe(rec.handler("failing", errors.New("boom"), "x"))
	bus.Subscribe(NewHandlerFunc(func(context.Context, shared.DomainEvent) error {
		panic("handler bug")
	}, "x"))
	bus.Subscribe(rec.handler("after", nil, "x"))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	assert.Equal(t, []string{"failing:x", "after:x"}, rec.seen)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	rec := &recorder{}
	h := rec.handler("once", nil, "x", "y")
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x"), newTestEvent("y")))

	assert.Equal(t, []string{"once:x"}, rec.seen)
	assert.Empty(t, bus.registry.Handlers("y"))
}
