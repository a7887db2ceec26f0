package api

import (
	"log/slog"
	"net/http"

	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/service"
)

// QuoteHandler handles quote requests and the offers made on them.
type QuoteHandler struct {
	quotes service.QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes service.QuoteService, log *slog.Logger) *QuoteHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QuoteHandler")
	}
	return &QuoteHandler{
		quotes: quotes,
		logger: log.With(slog.String("component", "quote_handler")),
	}
}

// CreateRequest handles POST /api/quotes.
func (h *QuoteHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.quotes.CreateRequest(r.Context(), actor, req.Attrs())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create quote request")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("quote request created",
		slog.String("request_id", created.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// ListMine handles GET /api/quotes.
func (h *QuoteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	requests, err := h.quotes.ListCustomerRequests(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list quote requests")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// ListAvailable handles GET /api/quotes/available?lat=&lon=&radius=.
func (h *QuoteHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	lat, err := queryFloat(r, "lat")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	radius, err := queryFloat(r, "radius")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	var radiusKm float64
	if radius != nil {
		radiusKm = *radius
	}

	requests, err := h.quotes.ListAvailable(r.Context(), actor, toLocation(lat, lon), radiusKm)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list available requests")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// GetDetails handles GET /api/quotes/{id}.
func (h *QuoteHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	actor, requestID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	details, err := h.quotes.GetRequestDetails(r.Context(), actor, requestID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load quote request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, details)
}

// Cancel handles POST /api/quotes/{id}/cancel.
func (h *QuoteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, requestID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	cancelled, err := h.quotes.CancelRequest(r.Context(), actor, requestID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel quote request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cancelled)
}

// SubmitOffer handles POST /api/quotes/{id}/offers.
func (h *QuoteHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	actor, requestID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req SubmitOfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offer, err := h.quotes.SubmitOffer(r.Context(), actor, requestID, req.Attrs())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit offer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, offer)
}

// AcceptOffer handles POST /api/quotes/{id}/offers/{offerId}/accept.
func (h *QuoteHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	actor, requestID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	offerID, err := getPathUUID(r, "offerId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	offer, err := h.quotes.AcceptOffer(r.Context(), actor, requestID, offerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept offer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, offer)
}

// Complete handles POST /api/offers/{offerId}/complete.
func (h *QuoteHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, offerID, ok := handleActorAndPathUUID(w, r, "offerId", h.logger)
	if !ok {
		return
	}

	var req CompleteOfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offer, err := h.quotes.CompleteWithPhotos(r.Context(), actor, offerID, req.BeforePhotoRefs, req.AfterPhotoRefs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete service")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, offer)
}

// ListMyOffers handles GET /api/offers/mine.
func (h *QuoteHandler) ListMyOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}
	offers, err := h.quotes.ListBusinessOffers(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list offers")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, offers)
}
