package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// QuoteRequestStore defines the interface for quote request persistence.
type QuoteRequestStore interface {
	// Create saves a request together with its line items.
	// Run it inside Transactor.InTx so the items are written all-or-nothing.
	Create(ctx context.Context, req *domain.QuoteRequest) error

	// GetByID retrieves a request and its line items.
	// Returns ErrQuoteRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error)

	// GetForUpdate retrieves a request with an exclusive row lock held until
	// the surrounding transaction ends. Concurrent accepts on the same request
	// serialize here.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error)

	// Update persists status, review status and photo references.
	// Returns ErrQuoteRequestNotFound if the request does not exist.
	Update(ctx context.Context, req *domain.QuoteRequest) error

	// ListByStatus returns requests in the given status, newest first.
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.QuoteRequest, error)

	// ListByCustomer returns a customer's requests, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.QuoteRequest, error)
}

// QuoteResponseStore defines the interface for offer persistence.
type QuoteResponseStore interface {
	// Create saves a new offer.
	// Returns ErrOfferExists if the business already offered on the request.
	Create(ctx context.Context, offer *domain.QuoteResponse) error

	// GetByID retrieves an offer.
	// Returns ErrQuoteResponseNotFound if the offer does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error)

	// GetForUpdate retrieves an offer with a row-level lock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error)

	// Update persists status, payment status and photo references.
	Update(ctx context.Context, offer *domain.QuoteResponse) error

	// ListByRequest returns the offers on a request in submission order.
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.QuoteResponse, error)

	// ListByBusiness returns a business's offers, newest first.
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*domain.QuoteResponse, error)
}
