package store

import "context"

// Stores groups the per-entity stores bound to one database handle.
type Stores struct {
	Users          UserStore
	QuoteRequests  QuoteRequestStore
	QuoteResponses QuoteResponseStore
	Payments       PaymentStore
	Reviews        ReviewStore
}

// Transactor runs a unit of work against stores bound to a single
// transaction. Every mutation made through the given Stores commits
// together or not at all; a returned error rolls the whole unit back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
