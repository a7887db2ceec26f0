package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// acceptance is the outcome of applying an offer acceptance.
type acceptance struct {
	Request  *domain.QuoteRequest
	Offer    *domain.QuoteResponse
	Business *domain.User
	// Applied is false when the offer had already been accepted and
	// nothing was written.
	Applied bool
}

// acceptOfferTx applies the acceptance mutations inside tx: the target offer
// becomes ACCEPTED, every sibling REJECTED, the request ACCEPTED and the
// business's completed-service counter is recomputed. The request row is
// locked first so concurrent acceptances serialize on it.
//
// With reapply set, a request whose accepted offer is already offerID is
// reported as not applied instead of failing, so a repeated payment
// confirmation never re-runs the side effects.
func acceptOfferTx(
	ctx context.Context,
	tx store.Stores,
	op string,
	requestID, offerID uuid.UUID,
	reapply bool,
) (*acceptance, error) {
	req, err := tx.QuoteRequests.GetForUpdate(ctx, requestID)
	if err != nil {
		return nil, wrapError(op, "failed to load quote request", err)
	}

	offers, err := tx.QuoteResponses.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, wrapError(op, "failed to load offers", err)
	}

	var target *domain.QuoteResponse
	for _, o := range offers {
		if o.ID == offerID {
			target = o
			break
		}
	}
	if target == nil {
		return nil, newError(op, domain.ErrNotFound, "offer does not belong to the quote request")
	}

	if req.Status == domain.RequestStatusAccepted || req.Status == domain.RequestStatusCompleted {
		if reapply && target.Status == domain.OfferStatusAccepted {
			return &acceptance{Request: req, Offer: target}, nil
		}
		return nil, newError(op, domain.ErrInvalidState, "quote request has already been accepted")
	}
	if !req.Status.Open() {
		return nil, newError(op, domain.ErrInvalidState, "quote request is no longer open")
	}
	if target.Status != domain.OfferStatusPending {
		return nil, newError(op, domain.ErrInvalidState, "offer is not pending")
	}

	for _, o := range offers {
		if o.ID == offerID {
			o.Accept()
		} else {
			o.Reject()
		}
		if err := tx.QuoteResponses.Update(ctx, o); err != nil {
			return nil, wrapError(op, "failed to update offer", err)
		}
	}

	if err := req.TransitionTo(domain.RequestStatusAccepted); err != nil {
		return nil, newError(op, domain.ErrInvalidState, "quote request cannot be accepted in status "+string(req.Status))
	}
	if err := tx.QuoteRequests.Update(ctx, req); err != nil {
		return nil, wrapError(op, "failed to update quote request", err)
	}

	business, err := recomputeCompletedServices(ctx, tx, op, target.BusinessID)
	if err != nil {
		return nil, err
	}

	return &acceptance{Request: req, Offer: target, Business: business, Applied: true}, nil
}

// recomputeCompletedServices rewrites the business's completed-service
// counter as the number of its accepted offers.
func recomputeCompletedServices(
	ctx context.Context,
	tx store.Stores,
	op string,
	businessID uuid.UUID,
) (*domain.User, error) {
	offers, err := tx.QuoteResponses.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, wrapError(op, "failed to load business offers", err)
	}
	accepted := 0
	for _, o := range offers {
		if o.Status == domain.OfferStatusAccepted {
			accepted++
		}
	}

	business, err := tx.Users.GetForUpdate(ctx, businessID)
	if err != nil {
		return nil, wrapError(op, "failed to load business", err)
	}
	business.CompletedServices = accepted
	business.UpdatedAt = time.Now().UTC()
	if err := tx.Users.Update(ctx, business); err != nil {
		return nil, wrapError(op, "failed to update business counters", err)
	}
	return business, nil
}
