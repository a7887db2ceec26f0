package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// Type identifies a lifecycle transition.
type Type string

// Lifecycle event types
const (
	TypeRequestCreated     Type = "quote_request.created"
	TypeOfferSubmitted     Type = "quote_response.submitted"
	TypeOfferAccepted      Type = "quote_response.accepted"
	TypeCompletionUploaded Type = "quote_response.completed"
	TypePaymentConfirmed   Type = "payment.confirmed"
	TypePaymentCanceled    Type = "payment.canceled"
	TypeReviewCreated      Type = "review.created"
)

// Event is a committed lifecycle transition.
type Event struct {
	ID uuid.UUID `json:"id"`

	Type Type `json:"type"`

	// Payload is one of the payload structs below, serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// New creates an Event of the given type.
func New(eventType Type, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RequestCreated is the payload of TypeRequestCreated.
type RequestCreated struct {
	RequestID   uuid.UUID          `json:"request_id"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	PetType     domain.PetType     `json:"pet_type"`
	ServiceType domain.ServiceType `json:"service_type"`
	Location    *domain.Location   `json:"location,omitempty"`
	Address     string             `json:"address,omitempty"`
}

// OfferSubmitted is the payload of TypeOfferSubmitted.
type OfferSubmitted struct {
	RequestID    uuid.UUID `json:"request_id"`
	OfferID      uuid.UUID `json:"offer_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	BusinessID   uuid.UUID `json:"business_id"`
	BusinessName string    `json:"business_name"`
	Price        int64     `json:"price"`
}

// OfferAccepted is the payload of TypeOfferAccepted.
type OfferAccepted struct {
	RequestID    uuid.UUID          `json:"request_id"`
	OfferID      uuid.UUID          `json:"offer_id"`
	CustomerID   uuid.UUID          `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	BusinessID   uuid.UUID          `json:"business_id"`
	Service      domain.ServiceType `json:"service_type"`
	Price        int64              `json:"price"`
}

// CompletionUploaded is the payload of TypeCompletionUploaded.
type CompletionUploaded struct {
	RequestID    uuid.UUID `json:"request_id"`
	OfferID      uuid.UUID `json:"offer_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	BusinessID   uuid.UUID `json:"business_id"`
	BusinessName string    `json:"business_name"`
}

// PaymentChanged is the payload of TypePaymentConfirmed and TypePaymentCanceled.
type PaymentChanged struct {
	PaymentID  uuid.UUID            `json:"payment_id"`
	OrderID    string               `json:"order_id"`
	OfferID    uuid.UUID            `json:"offer_id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	BusinessID uuid.UUID            `json:"business_id"`
	Amount     int64                `json:"amount"`
	Status     domain.PaymentStatus `json:"status"`
}

// ReviewCreated is the payload of TypeReviewCreated.
type ReviewCreated struct {
	ReviewID     uuid.UUID `json:"review_id"`
	OfferID      uuid.UUID `json:"offer_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	BusinessID   uuid.UUID `json:"business_id"`
	Rating       int       `json:"rating"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
