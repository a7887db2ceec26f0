package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewEvent(t *testing.T) {
	payload := RequestCreated{
		RequestID:   uuid.New(),
		CustomerID:  uuid.New(),
		PetType:     domain.PetTypeCat,
		ServiceType: domain.ServiceTypeBath,
		Location:    &domain.Location{Latitude: 37.5, Longitude: 127.0},
	}

	event, err := New(TypeRequestCreated, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeRequestCreated, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded RequestCreated
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEventUnmarshalablePayload(t *testing.T) {
	_, err := New(TypeReviewCreated, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestUnmarshalPayloadTypeMismatch(t *testing.T) {
	event, err := New(TypeReviewCreated, map[string]string{"rating": "five"})
	require.NoError(t, err)

	var decoded ReviewCreated
	assert.Error(t, event.UnmarshalPayload(&decoded))
}

func TestPublish(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())
	ok := &MockEventHandler{}
	failing := &MockEventHandler{HandlerError: errors.New("boom")}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(ok)

	assert.NotPanics(t, func() {
		Publish(context.Background(), emitter, TypeOfferAccepted, OfferAccepted{OfferID: uuid.New()})
	})
	assert.Equal(t, 1, ok.HandledCount)
	assert.Equal(t, TypeOfferAccepted, ok.LastEvent.Type)

	assert.NotPanics(t, func() {
		Publish(context.Background(), nil, TypeOfferAccepted, nil)
		Publish(context.Background(), NopEmitter{}, TypeOfferAccepted, nil)
	})
}
