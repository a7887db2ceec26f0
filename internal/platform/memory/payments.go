package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// PaymentStore implements store.PaymentStore.
type PaymentStore struct {
	db   *DB
	inTx bool
}

var _ store.PaymentStore = (*PaymentStore)(nil)

// Create saves a payment, rejecting order id collisions.
func (s *PaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.responses[payment.QuoteResponseID]; !ok {
			return store.NewStoreError("payment", "create", "offer does not exist", store.ErrInvalidEntity)
		}
		for _, existing := range t.payments {
			if existing.OrderID == payment.OrderID {
				return store.ErrOrderIDExists
			}
		}
		t.payments[payment.ID] = clonePayment(payment)
		return nil
	})
}

// GetByID retrieves a payment.
func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.db.read(func(t *tables) error {
		p, ok := t.payments[id]
		if !ok {
			return store.ErrPaymentNotFound
		}
		out = clonePayment(p)
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the unit-of-work lock already excludes writers.
func (s *PaymentStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.GetByID(ctx, id)
}

// GetByOrderIDForUpdate retrieves a payment by order id.
func (s *PaymentStore) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.db.read(func(t *tables) error {
		for _, p := range t.payments {
			if p.OrderID == orderID {
				out = clonePayment(p)
				return nil
			}
		}
		return store.ErrPaymentNotFound
	})
	return out, err
}

// Update replaces a stored payment. At most one payment per offer may be
// DONE.
func (s *PaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.payments[payment.ID]; !ok {
			return store.ErrPaymentNotFound
		}
		if payment.Status == domain.PaymentStatusDone {
			for _, other := range t.payments {
				if other.ID != payment.ID &&
					other.QuoteResponseID == payment.QuoteResponseID &&
					other.Status == domain.PaymentStatusDone {
					return store.ErrPaymentCompleted
				}
			}
		}
		t.payments[payment.ID] = clonePayment(payment)
		return nil
	})
}

func (s *PaymentStore) list(keep func(*domain.Payment) bool, cmp func(a, b *domain.Payment) int) ([]*domain.Payment, error) {
	var out []*domain.Payment
	err := s.db.read(func(t *tables) error {
		for _, p := range t.payments {
			if keep(p) {
				out = append(out, clonePayment(p))
			}
		}
		return nil
	})
	slices.SortFunc(out, cmp)
	return out, err
}

// ListByQuoteResponse returns an offer's payments, oldest first.
func (s *PaymentStore) ListByQuoteResponse(ctx context.Context, offerID uuid.UUID) ([]*domain.Payment, error) {
	return s.list(
		func(p *domain.Payment) bool { return p.QuoteResponseID == offerID },
		func(a, b *domain.Payment) int { return a.CreatedAt.Compare(b.CreatedAt) },
	)
}

// ListByCustomer returns a customer's payments, newest first.
func (s *PaymentStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Payment, error) {
	return s.list(
		func(p *domain.Payment) bool { return p.CustomerID == customerID },
		func(a, b *domain.Payment) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	)
}

// ListByBusiness returns the payments made to a business, newest first.
func (s *PaymentStore) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*domain.Payment, error) {
	return s.list(
		func(p *domain.Payment) bool { return p.BusinessID == businessID },
		func(a, b *domain.Payment) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	)
}
