package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// PaymentStore defines the interface for payment persistence.
type PaymentStore interface {
	// Create saves a new payment. Returns ErrOrderIDExists on an order id collision.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetForUpdate retrieves a payment by id with a row-level lock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByOrderIDForUpdate retrieves a payment by order id with a row-level
	// lock, so duplicate gateway callbacks serialize.
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Payment, error)

	// Update persists status, gateway key, receipt and timestamps.
	Update(ctx context.Context, payment *domain.Payment) error

	// ListByQuoteResponse returns the payments recorded for an offer, oldest first.
	ListByQuoteResponse(ctx context.Context, offerID uuid.UUID) ([]*domain.Payment, error)

	// ListByCustomer returns a customer's payments, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Payment, error)

	// ListByBusiness returns the payments made to a business, newest first.
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*domain.Payment, error)
}
