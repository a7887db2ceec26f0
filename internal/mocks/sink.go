package mocks

import (
	"context"
	"sync"

	"github.com/teolgogo/quote-engine/internal/domain"
)

// MockSink records delivered notifications. DeliverFn, when set, decides
// the result of each delivery; recorded notifications include failed ones.
type MockSink struct {
	DeliverFn func(ctx context.Context, n domain.Notification) error

	mu        sync.Mutex
	delivered []domain.Notification
}

// Deliver implements notification.Sink.
func (m *MockSink) Deliver(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	m.delivered = append(m.delivered, n)
	m.mu.Unlock()

	if m.DeliverFn != nil {
		return m.DeliverFn(ctx, n)
	}
	return nil
}

// Delivered returns a copy of every notification passed to Deliver.
func (m *MockSink) Delivered() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.delivered))
	copy(out, m.delivered)
	return out
}
