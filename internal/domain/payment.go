package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

// Payment methods
const (
	PaymentMethodCard            PaymentMethod = "CARD"
	PaymentMethodVirtualAccount  PaymentMethod = "VIRTUAL_ACCOUNT"
	PaymentMethodAccountTransfer PaymentMethod = "ACCOUNT_TRANSFER"
	PaymentMethodPhone           PaymentMethod = "PHONE"
	PaymentMethodKakaoPay        PaymentMethod = "KAKAO_PAY"
	PaymentMethodTossPay         PaymentMethod = "TOSS_PAY"
	PaymentMethodNaverPay        PaymentMethod = "NAVER_PAY"
	PaymentMethodPayco           PaymentMethod = "PAYCO"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodVirtualAccount, PaymentMethodAccountTransfer,
		PaymentMethodPhone, PaymentMethodKakaoPay, PaymentMethodTossPay,
		PaymentMethodNaverPay, PaymentMethodPayco:
		return true
	}
	return false
}

// PaymentStatus is the gateway-facing status of a payment.
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusReady      PaymentStatus = "READY"
	PaymentStatusInProgress PaymentStatus = "IN_PROGRESS"
	PaymentStatusDone       PaymentStatus = "DONE"
	PaymentStatusCanceled   PaymentStatus = "CANCELED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusExpired    PaymentStatus = "EXPIRED"
)

// Payment validation errors
var (
	ErrEmptyOrderID         = errors.New("order ID cannot be empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyQuoteResponseID = errors.New("quote response ID cannot be empty")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
)

// Payment ties one offer to one gateway transaction.
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	CustomerID      uuid.UUID     `json:"customer_id"`
	BusinessID      uuid.UUID     `json:"business_id"`
	QuoteResponseID uuid.UUID     `json:"quote_response_id"`
	Amount          int64         `json:"amount"`
	Method          PaymentMethod `json:"method"`
	Status          PaymentStatus `json:"status"`
	PaymentKey      string        `json:"-"`
	OrderID         string        `json:"order_id"`
	OrderName       string        `json:"order_name,omitempty"`
	ReceiptURL      string        `json:"receipt_url,omitempty"`
	CancelReason    string        `json:"cancel_reason,omitempty"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
	CanceledAt      *time.Time    `json:"canceled_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewPayment creates a READY payment for an offer.
func NewPayment(orderID string, offer *QuoteResponse, customerID uuid.UUID, method PaymentMethod) (*Payment, error) {
	now := time.Now().UTC()
	p := &Payment{
		ID:              uuid.New(),
		CustomerID:      customerID,
		BusinessID:      offer.BusinessID,
		QuoteResponseID: offer.ID,
		Amount:          offer.Price,
		Method:          method,
		Status:          PaymentStatusReady,
		OrderID:         orderID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the Payment has valid data.
func (p *Payment) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if p.CustomerID == uuid.Nil {
		return NewValidationError("customer_id", "cannot be empty", ErrEmptyCustomerID)
	}
	if p.BusinessID == uuid.Nil {
		return NewValidationError("business_id", "cannot be empty", ErrEmptyBusinessID)
	}
	if p.QuoteResponseID == uuid.Nil {
		return NewValidationError("quote_response_id", "cannot be empty", ErrEmptyQuoteResponseID)
	}
	if p.OrderID == "" {
		return NewValidationError("order_id", "cannot be empty", ErrEmptyOrderID)
	}
	if p.Amount <= 0 {
		return NewValidationError("amount", "must be positive", ErrNonPositiveAmount)
	}
	if !p.Method.Valid() {
		return NewValidationError("method", "is not supported", ErrInvalidPaymentMethod)
	}
	return nil
}

// Complete moves a READY or IN_PROGRESS payment to DONE.
func (p *Payment) Complete(paymentKey, receiptURL string, paidAt time.Time) error {
	if p.Status != PaymentStatusReady && p.Status != PaymentStatusInProgress {
		return ErrInvalidState
	}
	p.Status = PaymentStatusDone
	p.PaymentKey = paymentKey
	p.ReceiptURL = receiptURL
	paid := paidAt.UTC()
	p.PaidAt = &paid
	p.UpdatedAt = paid
	return nil
}

// Cancel moves a DONE payment to CANCELED.
func (p *Payment) Cancel(reason string, at time.Time) error {
	if p.Status != PaymentStatusDone {
		return ErrInvalidState
	}
	p.Status = PaymentStatusCanceled
	p.CancelReason = reason
	canceled := at.UTC()
	p.CanceledAt = &canceled
	p.UpdatedAt = canceled
	return nil
}

// Expire closes a READY or IN_PROGRESS payment that can no longer be
// confirmed, such as a checkout abandoned for another method.
func (p *Payment) Expire(at time.Time) error {
	if p.Status != PaymentStatusReady && p.Status != PaymentStatusInProgress {
		return ErrInvalidState
	}
	p.Status = PaymentStatusExpired
	p.UpdatedAt = at.UTC()
	return nil
}
