package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/domain/geo"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

// DefaultRadiusKm is the discovery radius used when none is configured.
const DefaultRadiusKm = 5.0

// RequestDetails is a quote request with the offers the viewer may see.
type RequestDetails struct {
	Request *domain.QuoteRequest    `json:"request"`
	Offers  []*domain.QuoteResponse `json:"offers"`
}

// QuoteService drives the quote request and offer lifecycle.
type QuoteService interface {
	// CreateRequest posts a new PENDING request for a customer.
	CreateRequest(ctx context.Context, actor domain.Actor, attrs domain.QuoteRequestAttrs) (*domain.QuoteRequest, error)

	// ListAvailable returns PENDING requests near a business, nearest first.
	// The business's stored location wins over origin; with neither, every
	// PENDING request is returned unfiltered. A non-positive radius uses
	// the configured default.
	ListAvailable(ctx context.Context, actor domain.Actor, origin *domain.Location, radiusKm float64) ([]*domain.QuoteRequest, error)

	// ListCustomerRequests returns the actor's own requests, newest first.
	ListCustomerRequests(ctx context.Context, actor domain.Actor) ([]*domain.QuoteRequest, error)

	// GetRequestDetails returns a request and the offers visible to actor.
	GetRequestDetails(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*RequestDetails, error)

	// CancelRequest cancels an open request and rejects its pending offers.
	CancelRequest(ctx context.Context, actor domain.Actor, requestID uuid.UUID) (*domain.QuoteRequest, error)

	// SubmitOffer records a business's offer on an open request.
	SubmitOffer(ctx context.Context, actor domain.Actor, requestID uuid.UUID, attrs domain.OfferAttrs) (*domain.QuoteResponse, error)

	// AcceptOffer selects one offer and rejects its siblings atomically.
	AcceptOffer(ctx context.Context, actor domain.Actor, requestID, offerID uuid.UUID) (*domain.QuoteResponse, error)

	// CompleteWithPhotos attaches grooming photos and completes the request.
	CompleteWithPhotos(ctx context.Context, actor domain.Actor, offerID uuid.UUID, before, after []string) (*domain.QuoteResponse, error)

	// ListBusinessOffers returns the offers a business has submitted.
	ListBusinessOffers(ctx context.Context, actor domain.Actor) ([]*domain.QuoteResponse, error)
}

// QuoteServiceImpl implements QuoteService.
type QuoteServiceImpl struct {
	tx       store.Transactor
	stores   store.Stores
	emitter  events.EventEmitter
	radiusKm float64
	logger   *slog.Logger
}

// NewQuoteService creates a QuoteService. stores serve reads outside a
// unit of work; every mutation goes through tx.
func NewQuoteService(
	tx store.Transactor,
	stores store.Stores,
	emitter events.EventEmitter,
	radiusKm float64,
	log *slog.Logger,
) *QuoteServiceImpl {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	if log == nil {
		log = slog.Default()
	}
	return &QuoteServiceImpl{
		tx:       tx,
		stores:   stores,
		emitter:  emitter,
		radiusKm: radiusKm,
		logger:   log.With(slog.String("component", "quote_service")),
	}
}

// CreateRequest implements QuoteService.
func (s *QuoteServiceImpl) CreateRequest(
	ctx context.Context,
	actor domain.Actor,
	attrs domain.QuoteRequestAttrs,
) (*domain.QuoteRequest, error) {
	const op = "create_request"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor.Role != domain.RoleCustomer {
		return nil, newError(op, domain.ErrForbidden, "only customers can request quotes")
	}

	req, err := domain.NewQuoteRequest(actor.UserID, attrs)
	if err != nil {
		return nil, wrapError(op, "invalid quote request", err)
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := tx.QuoteRequests.Create(ctx, req); err != nil {
			return wrapError(op, "failed to save quote request", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create quote request",
			slog.String("error", err.Error()),
			slog.String("customer_id", actor.UserID.String()))
		return nil, err
	}

	log.Info("quote request created",
		slog.String("request_id", req.ID.String()),
		slog.Int("items", len(req.Items)))

	events.Publish(ctx, s.emitter, events.TypeRequestCreated, events.RequestCreated{
		RequestID:   req.ID,
		CustomerID:  req.CustomerID,
		PetType:     req.Pet.Type,
		ServiceType: req.ServiceType,
		Location:    req.Location,
		Address:     req.Address,
	})
	return req, nil
}

// ListAvailable implements QuoteService.
func (s *QuoteServiceImpl) ListAvailable(
	ctx context.Context,
	actor domain.Actor,
	origin *domain.Location,
	radiusKm float64,
) ([]*domain.QuoteRequest, error) {
	const op = "list_available"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor.Role != domain.RoleBusiness {
		return nil, newError(op, domain.ErrForbidden, "only businesses can browse requests")
	}
	if radiusKm <= 0 {
		radiusKm = s.radiusKm
	}

	business, err := s.stores.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, wrapError(op, "failed to load business", err)
	}
	if business.Location != nil {
		origin = business.Location
	}

	pending, err := s.stores.QuoteRequests.ListByStatus(ctx, domain.RequestStatusPending)
	if err != nil {
		return nil, wrapError(op, "failed to list pending requests", err)
	}

	if origin == nil {
		log.Debug("business has no location, returning every pending request",
			slog.String("business_id", actor.UserID.String()))
		return pending, nil
	}
	if err := origin.Validate(); err != nil {
		return nil, wrapError(op, "invalid origin", err)
	}

	matches := geo.WithinRadius(*origin, radiusKm, pending, func(r *domain.QuoteRequest) *domain.Location {
		return r.Location
	})
	return geo.Items(matches), nil
}

// ListCustomerRequests implements QuoteService.
func (s *QuoteServiceImpl) ListCustomerRequests(ctx context.Context, actor domain.Actor) ([]*domain.QuoteRequest, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, newError("list_customer_requests", domain.ErrForbidden, "only customers have quote requests")
	}
	reqs, err := s.stores.QuoteRequests.ListByCustomer(ctx, actor.UserID)
	if err != nil {
		return nil, wrapError("list_customer_requests", "failed to list quote requests", err)
	}
	return reqs, nil
}

// GetRequestDetails implements QuoteService.
func (s *QuoteServiceImpl) GetRequestDetails(
	ctx context.Context,
	actor domain.Actor,
	requestID uuid.UUID,
) (*RequestDetails, error) {
	const op = "get_request_details"

	req, err := s.stores.QuoteRequests.GetByID(ctx, requestID)
	if err != nil {
		return nil, wrapError(op, "failed to load quote request", err)
	}

	offers, err := s.stores.QuoteResponses.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, wrapError(op, "failed to load offers", err)
	}

	switch {
	case actor.Role == domain.RoleAdmin, actor.Is(req.CustomerID, domain.RoleCustomer):
	case actor.Role == domain.RoleBusiness:
		offers = slices.DeleteFunc(offers, func(o *domain.QuoteResponse) bool {
			return o.BusinessID != actor.UserID
		})
	default:
		return nil, newError(op, domain.ErrForbidden, "quote request belongs to another customer")
	}

	return &RequestDetails{Request: req, Offers: offers}, nil
}

// CancelRequest implements QuoteService.
func (s *QuoteServiceImpl) CancelRequest(
	ctx context.Context,
	actor domain.Actor,
	requestID uuid.UUID,
) (*domain.QuoteRequest, error) {
	const op = "cancel_request"

	var cancelled *domain.QuoteRequest
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		req, err := tx.QuoteRequests.GetForUpdate(ctx, requestID)
		if err != nil {
			return wrapError(op, "failed to load quote request", err)
		}
		if !actor.Is(req.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "quote request belongs to another customer")
		}
		if err := req.TransitionTo(domain.RequestStatusCancelled); err != nil {
			return newError(op, domain.ErrInvalidState, "quote request cannot be cancelled in status "+string(req.Status))
		}
		if err := tx.QuoteRequests.Update(ctx, req); err != nil {
			return wrapError(op, "failed to update quote request", err)
		}

		offers, err := tx.QuoteResponses.ListByRequest(ctx, requestID)
		if err != nil {
			return wrapError(op, "failed to load offers", err)
		}
		for _, o := range offers {
			if o.Status != domain.OfferStatusPending {
				continue
			}
			o.Reject()
			if err := tx.QuoteResponses.Update(ctx, o); err != nil {
				return wrapError(op, "failed to reject offer", err)
			}
		}
		cancelled = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("quote request cancelled",
		slog.String("request_id", requestID.String()))
	return cancelled, nil
}

// SubmitOffer implements QuoteService.
func (s *QuoteServiceImpl) SubmitOffer(
	ctx context.Context,
	actor domain.Actor,
	requestID uuid.UUID,
	attrs domain.OfferAttrs,
) (*domain.QuoteResponse, error) {
	const op = "submit_offer"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor.Role != domain.RoleBusiness {
		return nil, newError(op, domain.ErrForbidden, "only businesses can submit offers")
	}

	offer, err := domain.NewQuoteResponse(requestID, actor.UserID, attrs)
	if err != nil {
		return nil, wrapError(op, "invalid offer", err)
	}

	var (
		req      *domain.QuoteRequest
		business *domain.User
	)
	err = s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		req, err = tx.QuoteRequests.GetForUpdate(ctx, requestID)
		if err != nil {
			return wrapError(op, "failed to load quote request", err)
		}
		if !req.Status.Open() {
			return newError(op, domain.ErrInvalidState, "quote request is no longer accepting offers")
		}
		if req.CustomerID == actor.UserID {
			return newError(op, domain.ErrForbidden, "cannot offer on your own request")
		}

		business, err = tx.Users.GetByID(ctx, actor.UserID)
		if err != nil {
			return wrapError(op, "failed to load business", err)
		}

		if err := tx.QuoteResponses.Create(ctx, offer); err != nil {
			return wrapError(op, "failed to save offer", err)
		}

		if req.Status == domain.RequestStatusPending {
			if err := req.TransitionTo(domain.RequestStatusOffered); err != nil {
				return newError(op, domain.ErrInvalidState, "quote request cannot receive offers")
			}
			if err := tx.QuoteRequests.Update(ctx, req); err != nil {
				return wrapError(op, "failed to update quote request", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Debug("offer rejected",
			slog.String("request_id", requestID.String()),
			slog.String("business_id", actor.UserID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("offer submitted",
		slog.String("request_id", requestID.String()),
		slog.String("offer_id", offer.ID.String()),
		slog.Int64("price", offer.Price))

	events.Publish(ctx, s.emitter, events.TypeOfferSubmitted, events.OfferSubmitted{
		RequestID:    req.ID,
		OfferID:      offer.ID,
		CustomerID:   req.CustomerID,
		BusinessID:   offer.BusinessID,
		BusinessName: business.DisplayName(),
		Price:        offer.Price,
	})
	return offer, nil
}

// AcceptOffer implements QuoteService.
func (s *QuoteServiceImpl) AcceptOffer(
	ctx context.Context,
	actor domain.Actor,
	requestID, offerID uuid.UUID,
) (*domain.QuoteResponse, error) {
	const op = "accept_offer"
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		result   *acceptance
		customer *domain.User
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		req, err := tx.QuoteRequests.GetForUpdate(ctx, requestID)
		if err != nil {
			return wrapError(op, "failed to load quote request", err)
		}
		if !actor.Is(req.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "quote request belongs to another customer")
		}

		result, err = acceptOfferTx(ctx, tx, op, requestID, offerID, false)
		if err != nil {
			return err
		}

		customer, err = tx.Users.GetByID(ctx, req.CustomerID)
		if err != nil {
			return wrapError(op, "failed to load customer", err)
		}
		return nil
	})
	if err != nil {
		log.Debug("offer acceptance failed",
			slog.String("request_id", requestID.String()),
			slog.String("offer_id", offerID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("offer accepted",
		slog.String("request_id", requestID.String()),
		slog.String("offer_id", offerID.String()))

	publishAccepted(ctx, s.emitter, result, customer)
	return result.Offer, nil
}

func publishAccepted(ctx context.Context, emitter events.EventEmitter, a *acceptance, customer *domain.User) {
	events.Publish(ctx, emitter, events.TypeOfferAccepted, events.OfferAccepted{
		RequestID:    a.Request.ID,
		OfferID:      a.Offer.ID,
		CustomerID:   a.Request.CustomerID,
		CustomerName: customer.DisplayName(),
		BusinessID:   a.Offer.BusinessID,
		Service:      a.Request.ServiceType,
		Price:        a.Offer.Price,
	})
}

// CompleteWithPhotos implements QuoteService.
func (s *QuoteServiceImpl) CompleteWithPhotos(
	ctx context.Context,
	actor domain.Actor,
	offerID uuid.UUID,
	before, after []string,
) (*domain.QuoteResponse, error) {
	const op = "complete_with_photos"

	var (
		offer    *domain.QuoteResponse
		req      *domain.QuoteRequest
		business *domain.User
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		offer, err = tx.QuoteResponses.GetForUpdate(ctx, offerID)
		if err != nil {
			return wrapError(op, "failed to load offer", err)
		}
		if !actor.Is(offer.BusinessID, domain.RoleBusiness) {
			return newError(op, domain.ErrForbidden, "offer belongs to another business")
		}
		if offer.Status != domain.OfferStatusAccepted {
			return newError(op, domain.ErrInvalidState, "only accepted offers can be completed")
		}

		req, err = tx.QuoteRequests.GetForUpdate(ctx, offer.QuoteRequestID)
		if err != nil {
			return wrapError(op, "failed to load quote request", err)
		}
		if err := req.TransitionTo(domain.RequestStatusCompleted); err != nil {
			return newError(op, domain.ErrInvalidState, "quote request cannot be completed in status "+string(req.Status))
		}

		offer.BeforePhotoRefs = append(offer.BeforePhotoRefs, compactRefs(before)...)
		offer.AfterPhotoRefs = append(offer.AfterPhotoRefs, compactRefs(after)...)
		offer.UpdatedAt = req.UpdatedAt
		if err := tx.QuoteResponses.Update(ctx, offer); err != nil {
			return wrapError(op, "failed to attach photos", err)
		}
		if err := tx.QuoteRequests.Update(ctx, req); err != nil {
			return wrapError(op, "failed to update quote request", err)
		}

		business, err = tx.Users.GetByID(ctx, offer.BusinessID)
		if err != nil {
			return wrapError(op, "failed to load business", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("service completed",
		slog.String("offer_id", offerID.String()),
		slog.Int("before_photos", len(offer.BeforePhotoRefs)),
		slog.Int("after_photos", len(offer.AfterPhotoRefs)))

	events.Publish(ctx, s.emitter, events.TypeCompletionUploaded, events.CompletionUploaded{
		RequestID:    req.ID,
		OfferID:      offer.ID,
		CustomerID:   req.CustomerID,
		BusinessID:   offer.BusinessID,
		BusinessName: business.DisplayName(),
	})
	return offer, nil
}

// ListBusinessOffers implements QuoteService.
func (s *QuoteServiceImpl) ListBusinessOffers(ctx context.Context, actor domain.Actor) ([]*domain.QuoteResponse, error) {
	if actor.Role != domain.RoleBusiness {
		return nil, newError("list_business_offers", domain.ErrForbidden, "only businesses have offers")
	}
	offers, err := s.stores.QuoteResponses.ListByBusiness(ctx, actor.UserID)
	if err != nil {
		return nil, wrapError("list_business_offers", "failed to list offers", err)
	}
	return offers, nil
}

// compactRefs drops empty photo references.
func compactRefs(refs []string) []string {
	return slices.DeleteFunc(slices.Clone(refs), func(r string) bool { return r == "" })
}

var _ QuoteService = (*QuoteServiceImpl)(nil)
