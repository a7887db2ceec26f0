package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// DB binds the PostgreSQL stores to a connection pool and implements
// store.Transactor.
type DB struct {
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewDB wraps an open connection pool.
func NewDB(sqlDB *sql.DB, logger *slog.Logger) *DB {
	if sqlDB == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{sqlDB: sqlDB, logger: logger}
}

// Stores returns stores that run each statement on the pool.
func (d *DB) Stores() store.Stores {
	return newStores(d.sqlDB, d.logger)
}

// InTx implements store.Transactor. Row locks taken with the GetForUpdate
// methods are held until fn returns.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	return store.RunInTransaction(ctx, d.sqlDB, nil, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newStores(tx, d.logger))
	})
}

func newStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Users:          NewPostgresUserStore(db, logger),
		QuoteRequests:  NewPostgresQuoteRequestStore(db, logger),
		QuoteResponses: NewPostgresQuoteResponseStore(db, logger),
		Payments:       NewPostgresPaymentStore(db, logger),
		Reviews:        NewPostgresReviewStore(db, logger),
	}
}

var _ store.Transactor = (*DB)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// location converts a nullable coordinate pair.
func location(lat, lng sql.NullFloat64) *domain.Location {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Location{Latitude: lat.Float64, Longitude: lng.Float64}
}

// coordinates splits loc into nullable column values.
func coordinates(loc *domain.Location) (lat, lng sql.NullFloat64) {
	if loc == nil {
		return lat, lng
	}
	return sql.NullFloat64{Float64: loc.Latitude, Valid: true},
		sql.NullFloat64{Float64: loc.Longitude, Valid: true}
}

// encodeStrings marshals a string list for a JSONB column. Nil encodes as [].
func encodeStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return b, nil
}

// decodeStrings unmarshals a JSONB string list. SQL NULL decodes as nil.
func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return values, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
