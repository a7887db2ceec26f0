package api

import (
	"log/slog"
	"net/http"

	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/service"
)

// PaymentHandler handles checkout, confirmation and refunds.
type PaymentHandler struct {
	payments service.PaymentService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments service.PaymentService, log *slog.Logger) *PaymentHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PaymentHandler")
	}
	return &PaymentHandler{
		payments: payments,
		logger:   log.With(slog.String("component", "payment_handler")),
	}
}

// Prepare handles POST /api/payments/prepare.
func (h *PaymentHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	var req PreparePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prepared, err := h.payments.PreparePayment(r.Context(), actor, req.QuoteResponseID, domain.PaymentMethod(req.Method))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to prepare payment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, prepared)
}

// Confirm handles POST /api/payments/confirm.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger).With(slog.String("order_id", req.OrderID))
	confirmed, err := h.payments.ConfirmPayment(r.Context(), actor, service.ConfirmInput{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		log.Info("payment confirmation failed", slog.Int("status", MapErrorToStatusCode(err)))
		HandleAPIError(w, r, err, "Failed to confirm payment")
		return
	}

	log.Debug("payment confirmed", slog.String("payment_id", confirmed.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, confirmed)
}

// Cancel handles POST /api/payments/{id}/cancel.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, paymentID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CancelPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	canceled, err := h.payments.CancelPayment(r.Context(), actor, paymentID, req.Reason)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel payment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, canceled)
}

// GetForOffer handles GET /api/payments/offer/{offerId}.
func (h *PaymentHandler) GetForOffer(w http.ResponseWriter, r *http.Request) {
	actor, offerID, ok := handleActorAndPathUUID(w, r, "offerId", h.logger)
	if !ok {
		return
	}

	p, err := h.payments.GetPaymentForOffer(r.Context(), actor, offerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load payment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

// ListMine handles GET /api/payments/mine.
func (h *PaymentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	payments, err := h.payments.ListPayments(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list payments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, payments)
}
