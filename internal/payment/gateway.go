// Package payment defines the contract the payment orchestrator uses to talk
// to an external payment provider, and the providers shipped with the engine.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teolgogo/quote-engine/internal/domain"
)

// Provider names
const (
	ProviderVirtual = "virtual"
	ProviderToss    = "toss"
)

// PrepareRequest describes a checkout session to open with the provider.
type PrepareRequest struct {
	OrderID       string
	Amount        int64
	OrderName     string
	CustomerName  string
	CustomerEmail string
	Method        domain.PaymentMethod
}

// Handle is what the client needs to continue checkout with the provider.
type Handle struct {
	Provider    string `json:"provider"`
	OrderID     string `json:"order_id"`
	OrderName   string `json:"order_name"`
	Amount      int64  `json:"amount"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	SuccessURL  string `json:"success_url,omitempty"`
	FailURL     string `json:"fail_url,omitempty"`
}

// ConfirmRequest is the gateway callback forwarded by the client.
type ConfirmRequest struct {
	PaymentKey string
	OrderID    string
	Amount     int64
}

// Receipt is the provider's record of an approved payment.
type Receipt struct {
	PaymentKey string
	OrderID    string
	Amount     int64
	Method     string
	ReceiptURL string
	ApprovedAt time.Time
}

// CancelRequest asks the provider to refund an approved payment in full.
type CancelRequest struct {
	PaymentKey string
	Amount     int64
	Reason     string
}

// Gateway is an external payment provider.
//
// Confirm returns an error matching domain.ErrAmountMismatch when the
// provider approved a different amount, and one matching
// domain.ErrGatewayError for any other provider failure.
type Gateway interface {
	Name() string
	Prepare(ctx context.Context, req PrepareRequest) (*Handle, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*Receipt, error)
	Cancel(ctx context.Context, req CancelRequest) error
}

// GatewayError carries the provider's failure details.
type GatewayError struct {
	Provider  string
	Operation string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Operation)
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying transport error, if any.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is makes every GatewayError match domain.ErrGatewayError.
func (e *GatewayError) Is(target error) bool {
	return target == domain.ErrGatewayError
}

// NewGatewayError builds a GatewayError for provider and operation.
func NewGatewayError(provider, operation, code, message string, err error) *GatewayError {
	return &GatewayError{
		Provider:  provider,
		Operation: operation,
		Code:      code,
		Message:   message,
		Err:       err,
	}
}

// ErrUnknownProvider reports a configured provider name with no Gateway.
var ErrUnknownProvider = errors.New("unknown payment provider")

// CheckReceipt verifies that the provider approved exactly the requested amount.
func CheckReceipt(req ConfirmRequest, receipt *Receipt) error {
	if receipt.Amount != req.Amount {
		return fmt.Errorf("%w: requested %d, provider approved %d",
			domain.ErrAmountMismatch, req.Amount, receipt.Amount)
	}
	return nil
}
