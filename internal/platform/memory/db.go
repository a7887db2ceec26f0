// Package memory provides process-local implementations of the store
// interfaces. Transactions are serialized and rolled back by restoring a
// snapshot, which gives the same all-or-nothing behaviour the postgres
// stores get from the database.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

type tables struct {
	users     map[uuid.UUID]*domain.User
	requests  map[uuid.UUID]*domain.QuoteRequest
	responses map[uuid.UUID]*domain.QuoteResponse
	payments  map[uuid.UUID]*domain.Payment
	reviews   map[uuid.UUID]*domain.Review
}

func (t tables) snapshot() tables {
	return tables{
		users:     maps.Clone(t.users),
		requests:  maps.Clone(t.requests),
		responses: maps.Clone(t.responses),
		payments:  maps.Clone(t.payments),
		reviews:   maps.Clone(t.reviews),
	}
}

// DB is an in-memory database shared by every store it hands out.
type DB struct {
	// txMu serializes units of work; mu guards the tables themselves.
	txMu sync.Mutex
	mu   sync.RWMutex
	data tables
}

// New creates an empty database.
func New() *DB {
	return &DB{
		data: tables{
			users:     make(map[uuid.UUID]*domain.User),
			requests:  make(map[uuid.UUID]*domain.QuoteRequest),
			responses: make(map[uuid.UUID]*domain.QuoteResponse),
			payments:  make(map[uuid.UUID]*domain.Payment),
			reviews:   make(map[uuid.UUID]*domain.Review),
		},
	}
}

// Stores returns stores that run each mutation as its own unit of work.
func (db *DB) Stores() store.Stores {
	return db.stores(false)
}

func (db *DB) stores(inTx bool) store.Stores {
	return store.Stores{
		Users:          &UserStore{db: db, inTx: inTx},
		QuoteRequests:  &QuoteRequestStore{db: db, inTx: inTx},
		QuoteResponses: &QuoteResponseStore{db: db, inTx: inTx},
		Payments:       &PaymentStore{db: db, inTx: inTx},
		Reviews:        &ReviewStore{db: db, inTx: inTx},
	}
}

// InTx implements store.Transactor. Only one unit of work runs at a time,
// so every read inside fn behaves like a locking read.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) (err error) {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	saved := db.data.snapshot()
	db.mu.RUnlock()

	rollback := func() {
		db.mu.Lock()
		db.data = saved
		db.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = fn(ctx, db.stores(true)); err != nil {
		logger.FromContext(ctx).Debug("rolling back in-memory transaction", "error", err)
		rollback()
		return err
	}
	return nil
}

// write runs fn with the tables locked for writing. Outside a transaction
// it also takes the unit-of-work lock so it cannot interleave with one.
func (db *DB) write(inTx bool, fn func(t *tables) error) error {
	if !inTx {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(&db.data)
}

func (db *DB) read(fn func(t *tables) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(&db.data)
}

var _ store.Transactor = (*DB)(nil)
