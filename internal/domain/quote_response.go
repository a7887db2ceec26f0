package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OfferStatus is the status of a business's offer.
type OfferStatus string

// Offer statuses
const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
)

// OfferPaymentStatus tracks whether an offer has been paid for.
type OfferPaymentStatus string

// Offer payment statuses
const (
	OfferNotPaid  OfferPaymentStatus = "NOT_PAID"
	OfferPaid     OfferPaymentStatus = "PAID"
	OfferRefunded OfferPaymentStatus = "REFUNDED"
)

// Offer validation errors
var (
	ErrEmptyBusinessID     = errors.New("business ID cannot be empty")
	ErrEmptyQuoteRequestID = errors.New("quote request ID cannot be empty")
	ErrNonPositivePrice    = errors.New("price must be positive")
)

// QuoteResponse is a business's offer against a quote request.
type QuoteResponse struct {
	ID              uuid.UUID          `json:"id"`
	QuoteRequestID  uuid.UUID          `json:"quote_request_id"`
	BusinessID      uuid.UUID          `json:"business_id"`
	Price           int64              `json:"price"`
	Description     string             `json:"description,omitempty"`
	EstimatedTime   string             `json:"estimated_time,omitempty"`
	AvailableDate   *time.Time         `json:"available_date,omitempty"`
	Status          OfferStatus        `json:"status"`
	PaymentStatus   OfferPaymentStatus `json:"payment_status"`
	BeforePhotoRefs []string           `json:"before_photo_refs,omitempty"`
	AfterPhotoRefs  []string           `json:"after_photo_refs,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OfferAttrs are the business supplied fields of a new offer.
type OfferAttrs struct {
	Price         int64
	Description   string
	EstimatedTime string
	AvailableDate *time.Time
}

// NewQuoteResponse creates a PENDING, NOT_PAID offer.
func NewQuoteResponse(requestID, businessID uuid.UUID, attrs OfferAttrs) (*QuoteResponse, error) {
	now := time.Now().UTC()
	offer := &QuoteResponse{
		ID:             uuid.New(),
		QuoteRequestID: requestID,
		BusinessID:     businessID,
		Price:          attrs.Price,
		Description:    strings.TrimSpace(attrs.Description),
		EstimatedTime:  attrs.EstimatedTime,
		AvailableDate:  attrs.AvailableDate,
		Status:         OfferStatusPending,
		PaymentStatus:  OfferNotPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := offer.Validate(); err != nil {
		return nil, err
	}

	return offer, nil
}

// Validate checks if the QuoteResponse has valid data.
func (o *QuoteResponse) Validate() error {
	if o.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if o.QuoteRequestID == uuid.Nil {
		return NewValidationError("quote_request_id", "cannot be empty", ErrEmptyQuoteRequestID)
	}
	if o.BusinessID == uuid.Nil {
		return NewValidationError("business_id", "cannot be empty", ErrEmptyBusinessID)
	}
	if o.Price <= 0 {
		return NewValidationError("price", "must be positive", ErrNonPositivePrice)
	}
	return nil
}

// Accept marks the offer as the chosen one.
func (o *QuoteResponse) Accept() {
	o.Status = OfferStatusAccepted
	o.UpdatedAt = time.Now().UTC()
}

// Reject marks the offer as not chosen.
func (o *QuoteResponse) Reject() {
	o.Status = OfferStatusRejected
	o.UpdatedAt = time.Now().UTC()
}

// MarkPaid records that the offer's payment was confirmed.
func (o *QuoteResponse) MarkPaid() {
	o.PaymentStatus = OfferPaid
	o.UpdatedAt = time.Now().UTC()
}

// MarkRefunded records that the offer's payment was cancelled.
func (o *QuoteResponse) MarkRefunded() {
	o.PaymentStatus = OfferRefunded
	o.UpdatedAt = time.Now().UTC()
}
