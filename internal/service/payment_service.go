package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/payment"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

// DefaultOrderIDPrefix prefixes generated order ids when none is configured.
const DefaultOrderIDPrefix = "TEOLGOGO"

// compensationReason is sent to the gateway when an approved payment has to
// be reversed because the local commit failed.
const compensationReason = "결제 승인 처리 실패로 인한 자동 취소"

// PreparedPayment is the persisted READY payment and the checkout handle.
type PreparedPayment struct {
	Payment *domain.Payment `json:"payment"`
	Handle  *payment.Handle `json:"handle"`
}

// ConfirmInput is a gateway callback relayed by the client.
type ConfirmInput struct {
	PaymentKey string
	OrderID    string
	Amount     int64
}

// PaymentService orchestrates payments against the external gateway.
type PaymentService interface {
	// PreparePayment records a READY payment for an offer and opens checkout.
	PreparePayment(ctx context.Context, actor domain.Actor, offerID uuid.UUID, method domain.PaymentMethod) (*PreparedPayment, error)

	// ConfirmPayment approves a prepared payment and applies the offer
	// acceptance in the same unit of work. Repeating a successful
	// confirmation returns the DONE payment without side effects.
	ConfirmPayment(ctx context.Context, actor domain.Actor, in ConfirmInput) (*domain.Payment, error)

	// CancelPayment refunds a DONE payment through the gateway.
	CancelPayment(ctx context.Context, actor domain.Actor, paymentID uuid.UUID, reason string) (*domain.Payment, error)

	// GetPaymentForOffer returns the most relevant payment of an offer:
	// the DONE one if any, otherwise the newest.
	GetPaymentForOffer(ctx context.Context, actor domain.Actor, offerID uuid.UUID) (*domain.Payment, error)

	// ListPayments returns the actor's payments, newest first: made by a
	// customer or received by a business.
	ListPayments(ctx context.Context, actor domain.Actor) ([]*domain.Payment, error)
}

// PaymentServiceImpl implements PaymentService.
type PaymentServiceImpl struct {
	tx       store.Transactor
	stores   store.Stores
	gateway  payment.Gateway
	emitter  events.EventEmitter
	prefix   string
	logger   *slog.Logger
	now      func() time.Time
	newToken func() string
}

// NewPaymentService creates a PaymentService. orderIDPrefix defaults to
// DefaultOrderIDPrefix.
func NewPaymentService(
	tx store.Transactor,
	stores store.Stores,
	gateway payment.Gateway,
	emitter events.EventEmitter,
	orderIDPrefix string,
	log *slog.Logger,
) *PaymentServiceImpl {
	if orderIDPrefix == "" {
		orderIDPrefix = DefaultOrderIDPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &PaymentServiceImpl{
		tx:       tx,
		stores:   stores,
		gateway:  gateway,
		emitter:  emitter,
		prefix:   orderIDPrefix,
		logger:   log.With(slog.String("component", "payment_service")),
		now:      time.Now,
		newToken: orderToken,
	}
}

// orderToken returns 32 hex characters of a random UUID.
func orderToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *PaymentServiceImpl) newOrderID() string {
	return s.prefix + "_" + s.newToken()
}

// PreparePayment implements PaymentService.
func (s *PaymentServiceImpl) PreparePayment(
	ctx context.Context,
	actor domain.Actor,
	offerID uuid.UUID,
	method domain.PaymentMethod,
) (*PreparedPayment, error) {
	const op = "prepare_payment"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !method.Valid() {
		return nil, newError(op, domain.ErrInvalidArgument, "unsupported payment method "+string(method))
	}

	var prepared *PreparedPayment
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		offer, err := tx.QuoteResponses.GetForUpdate(ctx, offerID)
		if err != nil {
			return wrapError(op, "failed to load offer", err)
		}
		req, err := tx.QuoteRequests.GetByID(ctx, offer.QuoteRequestID)
		if err != nil {
			return wrapError(op, "failed to load quote request", err)
		}
		if !actor.Is(req.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "only the requesting customer can pay for this offer")
		}

		payable := offer.Status == domain.OfferStatusAccepted ||
			(offer.Status == domain.OfferStatusPending && req.Status.Open())
		if !payable {
			return newError(op, domain.ErrInvalidState, "offer cannot be paid in its current state")
		}

		existing, err := tx.Payments.ListByQuoteResponse(ctx, offerID)
		if err != nil {
			return wrapError(op, "failed to load existing payments", err)
		}

		var reusable *domain.Payment
		for _, p := range existing {
			if p.Status == domain.PaymentStatusDone {
				return newError(op, domain.ErrConflict, "이미 결제가 완료된 견적입니다.")
			}
			if p.Status == domain.PaymentStatusReady && p.Amount == offer.Price && p.Method == method {
				reusable = p
			}
		}

		customer, err := tx.Users.GetByID(ctx, req.CustomerID)
		if err != nil {
			return wrapError(op, "failed to load customer", err)
		}

		p := reusable
		if p == nil {
			p, err = domain.NewPayment(s.newOrderID(), offer, req.CustomerID, method)
			if err != nil {
				return wrapError(op, "invalid payment", err)
			}
			p.OrderName = req.ServiceType.DisplayName() + " 서비스"
		}

		handle, err := s.gateway.Prepare(ctx, payment.PrepareRequest{
			OrderID:       p.OrderID,
			Amount:        p.Amount,
			OrderName:     p.OrderName,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			Method:        method,
		})
		if err != nil {
			return wrapError(op, "gateway prepare failed", gatewayKind(err))
		}

		if reusable == nil {
			if err := tx.Payments.Create(ctx, p); err != nil {
				return wrapError(op, "failed to save payment", err)
			}
		}

		prepared = &PreparedPayment{Payment: p, Handle: handle}
		return nil
	})
	if err != nil {
		log.Debug("payment prepare failed",
			slog.String("offer_id", offerID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("payment prepared",
		slog.String("payment_id", prepared.Payment.ID.String()),
		slog.String("order_id", prepared.Payment.OrderID),
		slog.Int64("amount", prepared.Payment.Amount))
	return prepared, nil
}

// ConfirmPayment implements PaymentService.
//
// The acceptance checks run before the gateway is asked to approve, so a
// rule violation never charges the customer. If the unit of work fails
// after the gateway approved, the approval is reversed with a cancel.
func (s *PaymentServiceImpl) ConfirmPayment(
	ctx context.Context,
	actor domain.Actor,
	in ConfirmInput,
) (*domain.Payment, error) {
	const op = "confirm_payment"
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("order_id", in.OrderID))

	if in.OrderID == "" {
		return nil, newError(op, domain.ErrInvalidArgument, "order id is required")
	}

	var (
		result    *domain.Payment
		accepted  *acceptance
		customer  *domain.User
		approved  *payment.Receipt
		duplicate bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		p, err := tx.Payments.GetByOrderIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return wrapError(op, "failed to load payment", err)
		}
		if actor.Role != domain.RoleAdmin && !actor.Is(p.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "payment belongs to another customer")
		}
		if in.Amount != p.Amount {
			return newError(op, domain.ErrAmountMismatch, "callback amount does not match the prepared amount")
		}

		if p.Status == domain.PaymentStatusDone {
			result = p
			duplicate = true
			return nil
		}

		offer, err := tx.QuoteResponses.GetByID(ctx, p.QuoteResponseID)
		if err != nil {
			return wrapError(op, "failed to load offer", err)
		}
		// Holds the request row lock, so confirmations of sibling payments
		// for the same offer serialize here.
		accepted, err = acceptOfferTx(ctx, tx, op, offer.QuoteRequestID, offer.ID, true)
		if err != nil {
			return err
		}

		siblings, err := tx.Payments.ListByQuoteResponse(ctx, p.QuoteResponseID)
		if err != nil {
			return wrapError(op, "failed to load offer payments", err)
		}
		for _, other := range siblings {
			if other.ID != p.ID && other.Status == domain.PaymentStatusDone {
				return newError(op, domain.ErrConflict, "이미 결제가 완료된 견적입니다.")
			}
		}

		if p.Status != domain.PaymentStatusReady && p.Status != domain.PaymentStatusInProgress {
			return newError(op, domain.ErrInvalidState, "payment cannot be confirmed in status "+string(p.Status))
		}

		receipt, err := s.gateway.Confirm(ctx, payment.ConfirmRequest{
			PaymentKey: in.PaymentKey,
			OrderID:    p.OrderID,
			Amount:     p.Amount,
		})
		if err != nil {
			return wrapError(op, "gateway confirm failed", gatewayKind(err))
		}
		approved = receipt
		if err := payment.CheckReceipt(payment.ConfirmRequest{OrderID: p.OrderID, Amount: p.Amount}, receipt); err != nil {
			return wrapError(op, "gateway approved a different amount", err)
		}

		if err := p.Complete(receipt.PaymentKey, receipt.ReceiptURL, receipt.ApprovedAt); err != nil {
			return newError(op, domain.ErrInvalidState, "payment cannot be completed")
		}
		if err := tx.Payments.Update(ctx, p); err != nil {
			return wrapError(op, "failed to update payment", err)
		}

		for _, other := range siblings {
			if other.ID == p.ID {
				continue
			}
			if err := other.Expire(s.now()); err != nil {
				continue
			}
			if err := tx.Payments.Update(ctx, other); err != nil {
				return wrapError(op, "failed to expire sibling payment", err)
			}
		}

		accepted.Offer.MarkPaid()
		if err := tx.QuoteResponses.Update(ctx, accepted.Offer); err != nil {
			return wrapError(op, "failed to mark offer paid", err)
		}

		customer, err = tx.Users.GetByID(ctx, p.CustomerID)
		if err != nil {
			return wrapError(op, "failed to load customer", err)
		}

		result = p
		return nil
	})
	if err != nil {
		if approved != nil {
			s.compensate(ctx, approved)
		}
		log.Warn("payment confirmation failed", slog.String("error", err.Error()))
		return nil, err
	}

	if duplicate {
		log.Debug("duplicate payment confirmation ignored")
		return result, nil
	}

	log.Info("payment confirmed",
		slog.String("payment_id", result.ID.String()),
		slog.Int64("amount", result.Amount))

	events.Publish(ctx, s.emitter, events.TypePaymentConfirmed, paymentChanged(result))
	if accepted.Applied {
		publishAccepted(ctx, s.emitter, accepted, customer)
	}
	return result, nil
}

// compensate reverses a gateway approval whose local commit failed.
func (s *PaymentServiceImpl) compensate(ctx context.Context, receipt *payment.Receipt) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	err := s.gateway.Cancel(context.WithoutCancel(ctx), payment.CancelRequest{
		PaymentKey: receipt.PaymentKey,
		Amount:     receipt.Amount,
		Reason:     compensationReason,
	})
	if err != nil {
		log.Error("failed to reverse gateway approval",
			slog.String("order_id", receipt.OrderID),
			slog.String("error", err.Error()))
		return
	}
	log.Warn("gateway approval reversed", slog.String("order_id", receipt.OrderID))
}

// ErrRefundNotRecorded reports a refund the provider accepted but that could
// not be written locally. The payment still reads DONE and must be
// reconciled against the provider by order id.
var ErrRefundNotRecorded = errors.New("refund not recorded")

// CancelPayment implements PaymentService.
//
// The payment row stays locked across the provider refund, so concurrent
// cancels cannot refund twice. If the unit of work fails after the refund,
// the cancellation is recorded again in a fresh one.
func (s *PaymentServiceImpl) CancelPayment(
	ctx context.Context,
	actor domain.Actor,
	paymentID uuid.UUID,
	reason string,
) (*domain.Payment, error) {
	const op = "cancel_payment"
	log := logger.FromContextOrDefault(ctx, s.logger)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(op, domain.ErrInvalidArgument, "cancel reason is required")
	}

	var (
		result   *domain.Payment
		refunded bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		p, err := tx.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return wrapError(op, "failed to load payment", err)
		}
		if actor.Role != domain.RoleAdmin && !actor.Is(p.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "payment belongs to another customer")
		}
		if p.Status != domain.PaymentStatusDone {
			return newError(op, domain.ErrInvalidState, "only completed payments can be cancelled")
		}

		if err := s.gateway.Cancel(ctx, payment.CancelRequest{
			PaymentKey: p.PaymentKey,
			Amount:     p.Amount,
			Reason:     reason,
		}); err != nil {
			return wrapError(op, "gateway cancel failed", gatewayKind(err))
		}
		refunded = true

		if err := s.recordCancellation(ctx, tx, op, p, reason); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil && refunded {
		log.Warn("refund accepted but not recorded, retrying",
			slog.String("payment_id", paymentID.String()),
			slog.String("error", err.Error()))
		result, err = s.retryCancellation(ctx, op, paymentID, reason, err)
	}
	if err != nil {
		log.Warn("payment cancellation failed",
			slog.String("payment_id", paymentID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("payment cancelled", slog.String("payment_id", paymentID.String()))
	events.Publish(ctx, s.emitter, events.TypePaymentCanceled, paymentChanged(result))
	return result, nil
}

// recordCancellation marks p CANCELED and its offer REFUNDED inside tx.
func (s *PaymentServiceImpl) recordCancellation(
	ctx context.Context,
	tx store.Stores,
	op string,
	p *domain.Payment,
	reason string,
) error {
	if err := p.Cancel(reason, s.now()); err != nil {
		return newError(op, domain.ErrInvalidState, "payment cannot be cancelled")
	}
	if err := tx.Payments.Update(ctx, p); err != nil {
		return wrapError(op, "failed to update payment", err)
	}

	offer, err := tx.QuoteResponses.GetForUpdate(ctx, p.QuoteResponseID)
	if err != nil {
		return wrapError(op, "failed to load offer", err)
	}
	offer.MarkRefunded()
	if err := tx.QuoteResponses.Update(ctx, offer); err != nil {
		return wrapError(op, "failed to mark offer refunded", err)
	}
	return nil
}

// retryCancellation records an already refunded payment in a new unit of
// work. When that fails too the divergence is logged at error level and
// reported as ErrRefundNotRecorded.
func (s *PaymentServiceImpl) retryCancellation(
	ctx context.Context,
	op string,
	paymentID uuid.UUID,
	reason string,
	cause error,
) (*domain.Payment, error) {
	var (
		result     *domain.Payment
		orderID    string
		paymentKey string
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		p, err := tx.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return wrapError(op, "failed to reload payment", err)
		}
		orderID, paymentKey = p.OrderID, p.PaymentKey
		if p.Status == domain.PaymentStatusCanceled {
			result = p
			return nil
		}
		if err := s.recordCancellation(ctx, tx, op, p, reason); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err == nil {
		return result, nil
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("refund accepted by provider but not recorded",
		slog.String("payment_id", paymentID.String()),
		slog.String("order_id", orderID),
		slog.String("payment_key", paymentKey),
		slog.String("first_error", cause.Error()),
		slog.String("error", err.Error()))
	return nil, &ServiceError{
		Operation: op,
		Message:   "refund accepted by the provider but not recorded",
		Err:       fmt.Errorf("%w: %w", ErrRefundNotRecorded, err),
	}
}

// GetPaymentForOffer implements PaymentService.
func (s *PaymentServiceImpl) GetPaymentForOffer(
	ctx context.Context,
	actor domain.Actor,
	offerID uuid.UUID,
) (*domain.Payment, error) {
	const op = "get_payment_for_offer"

	offer, err := s.stores.QuoteResponses.GetByID(ctx, offerID)
	if err != nil {
		return nil, wrapError(op, "failed to load offer", err)
	}
	req, err := s.stores.QuoteRequests.GetByID(ctx, offer.QuoteRequestID)
	if err != nil {
		return nil, wrapError(op, "failed to load quote request", err)
	}

	parties := req.Participants(offer.BusinessID)
	allowed := actor.Role == domain.RoleAdmin ||
		actor.Is(parties.CustomerID, domain.RoleCustomer) ||
		actor.Is(parties.BusinessID, domain.RoleBusiness)
	if !allowed {
		return nil, newError(op, domain.ErrForbidden, "payment belongs to another account")
	}

	payments, err := s.stores.Payments.ListByQuoteResponse(ctx, offerID)
	if err != nil {
		return nil, wrapError(op, "failed to load payments", err)
	}
	if len(payments) == 0 {
		return nil, wrapError(op, "offer has no payment", store.ErrPaymentNotFound)
	}

	latest := payments[len(payments)-1]
	for _, p := range payments {
		if p.Status == domain.PaymentStatusDone {
			return p, nil
		}
	}
	return latest, nil
}

// ListPayments implements PaymentService.
func (s *PaymentServiceImpl) ListPayments(ctx context.Context, actor domain.Actor) ([]*domain.Payment, error) {
	const op = "list_payments"

	var (
		payments []*domain.Payment
		err      error
	)
	switch actor.Role {
	case domain.RoleCustomer:
		payments, err = s.stores.Payments.ListByCustomer(ctx, actor.UserID)
	case domain.RoleBusiness:
		payments, err = s.stores.Payments.ListByBusiness(ctx, actor.UserID)
	default:
		return nil, newError(op, domain.ErrForbidden, "role has no payments")
	}
	if err != nil {
		return nil, wrapError(op, "failed to list payments", err)
	}
	return payments, nil
}

// gatewayKind makes sure a gateway failure is classified. Provider errors
// already match domain.ErrGatewayError or domain.ErrAmountMismatch; any
// other error from a gateway is reported as a gateway error too.
func gatewayKind(err error) error {
	if errors.Is(err, domain.ErrGatewayError) || errors.Is(err, domain.ErrAmountMismatch) {
		return err
	}
	return payment.NewGatewayError("gateway", "call", "", "", err)
}

func paymentChanged(p *domain.Payment) events.PaymentChanged {
	return events.PaymentChanged{
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		OfferID:    p.QuoteResponseID,
		CustomerID: p.CustomerID,
		BusinessID: p.BusinessID,
		Amount:     p.Amount,
		Status:     p.Status,
	}
}

var _ PaymentService = (*PaymentServiceImpl)(nil)
