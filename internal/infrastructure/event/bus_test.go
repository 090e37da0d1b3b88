package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func newEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Payment", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBusPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	typed := &recordingHandler{types: []string{"payment.completed"}}
	wildcard := &recordingHandler{}
	bus.Subscribe(typed)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newEvent("payment.completed"), newEvent("payout.failed")))

	assert.Len(t, typed.received, 1)
	assert.Len(t, wildcard.received, 2)
}

func TestInMemoryEventBusIsolatesFailures(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"payment.completed"}, err: errors.New("smtp down")}
	panicking := &recordingHandler{types: []string{"payment.completed"}, panics: true}
	healthy := &recordingHandler{types: []string{"payment.completed"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newEvent("payment.completed"))

	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := &recordingHandler{types: []string{"payment.completed"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newEvent("payment.completed")))
	assert.Empty(t, h.received)
}
