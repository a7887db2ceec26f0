package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// QuoteRequestStore implements store.QuoteRequestStore.
type QuoteRequestStore struct {
	db   *DB
	inTx bool
}

var _ store.QuoteRequestStore = (*QuoteRequestStore)(nil)

// Create saves a request with its line items.
func (s *QuoteRequestStore) Create(ctx context.Context, req *domain.QuoteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.users[req.CustomerID]; !ok {
			return store.NewStoreError("quote_request", "create", "customer does not exist", store.ErrInvalidEntity)
		}
		if _, ok := t.requests[req.ID]; ok {
			return store.NewStoreError("quote_request", "create", "id already used", store.ErrDuplicate)
		}
		t.requests[req.ID] = cloneRequest(req)
		return nil
	})
}

// GetByID retrieves a request.
func (s *QuoteRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	var out *domain.QuoteRequest
	err := s.db.read(func(t *tables) error {
		r, ok := t.requests[id]
		if !ok {
			return store.ErrQuoteRequestNotFound
		}
		out = cloneRequest(r)
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the unit-of-work lock already excludes writers.
func (s *QuoteRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	return s.GetByID(ctx, id)
}

// Update replaces a stored request.
func (s *QuoteRequestStore) Update(ctx context.Context, req *domain.QuoteRequest) error {
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.requests[req.ID]; !ok {
			return store.ErrQuoteRequestNotFound
		}
		t.requests[req.ID] = cloneRequest(req)
		return nil
	})
}

func (s *QuoteRequestStore) list(keep func(*domain.QuoteRequest) bool) ([]*domain.QuoteRequest, error) {
	var out []*domain.QuoteRequest
	err := s.db.read(func(t *tables) error {
		for _, r := range t.requests {
			if keep(r) {
				out = append(out, cloneRequest(r))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.QuoteRequest) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return out, err
}

// ListByStatus returns requests in status, newest first.
func (s *QuoteRequestStore) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.QuoteRequest, error) {
	return s.list(func(r *domain.QuoteRequest) bool { return r.Status == status })
}

// ListByCustomer returns a customer's requests, newest first.
func (s *QuoteRequestStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.QuoteRequest, error) {
	return s.list(func(r *domain.QuoteRequest) bool { return r.CustomerID == customerID })
}

// QuoteResponseStore implements store.QuoteResponseStore.
type QuoteResponseStore struct {
	db   *DB
	inTx bool
}

var _ store.QuoteResponseStore = (*QuoteResponseStore)(nil)

// Create saves an offer, enforcing one offer per business and request.
func (s *QuoteResponseStore) Create(ctx context.Context, offer *domain.QuoteResponse) error {
	if err := offer.Validate(); err != nil {
		return err
	}
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.requests[offer.QuoteRequestID]; !ok {
			return store.NewStoreError("quote_response", "create", "request does not exist", store.ErrInvalidEntity)
		}
		for _, existing := range t.responses {
			if existing.QuoteRequestID == offer.QuoteRequestID && existing.BusinessID == offer.BusinessID {
				return store.ErrOfferExists
			}
		}
		t.responses[offer.ID] = cloneResponse(offer)
		return nil
	})
}

// GetByID retrieves an offer.
func (s *QuoteResponseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	var out *domain.QuoteResponse
	err := s.db.read(func(t *tables) error {
		o, ok := t.responses[id]
		if !ok {
			return store.ErrQuoteResponseNotFound
		}
		out = cloneResponse(o)
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the unit-of-work lock already excludes writers.
func (s *QuoteResponseStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	return s.GetByID(ctx, id)
}

// Update replaces a stored offer.
func (s *QuoteResponseStore) Update(ctx context.Context, offer *domain.QuoteResponse) error {
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.responses[offer.ID]; !ok {
			return store.ErrQuoteResponseNotFound
		}
		t.responses[offer.ID] = cloneResponse(offer)
		return nil
	})
}

// ListByRequest returns a request's offers in submission order.
func (s *QuoteResponseStore) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.QuoteResponse, error) {
	var out []*domain.QuoteResponse
	err := s.db.read(func(t *tables) error {
		for _, o := range t.responses {
			if o.QuoteRequestID == requestID {
				out = append(out, cloneResponse(o))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.QuoteResponse) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}

// ListByBusiness returns a business's offers, newest first.
func (s *QuoteResponseStore) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*domain.QuoteResponse, error) {
	var out []*domain.QuoteResponse
	err := s.db.read(func(t *tables) error {
		for _, o := range t.responses {
			if o.BusinessID == businessID {
				out = append(out, cloneResponse(o))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.QuoteResponse) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return out, err
}
