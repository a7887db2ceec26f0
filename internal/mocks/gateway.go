package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/teolgogo/quote-engine/internal/payment"
)

// MockGateway is a testify mock of payment.Gateway. Name always reports
// "mock".
type MockGateway struct {
	mock.Mock
}

var _ payment.Gateway = (*MockGateway)(nil)

// Name implements payment.Gateway.
func (m *MockGateway) Name() string { return "mock" }

// Prepare implements payment.Gateway.
func (m *MockGateway) Prepare(ctx context.Context, req payment.PrepareRequest) (*payment.Handle, error) {
	args := m.Called(ctx, req)
	h, _ := args.Get(0).(*payment.Handle)
	return h, args.Error(1)
}

// Confirm implements payment.Gateway.
func (m *MockGateway) Confirm(ctx context.Context, req payment.ConfirmRequest) (*payment.Receipt, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*payment.Receipt)
	return r, args.Error(1)
}

// Cancel implements payment.Gateway.
func (m *MockGateway) Cancel(ctx context.Context, req payment.CancelRequest) error {
	return m.Called(ctx, req).Error(0)
}
