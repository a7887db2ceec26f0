package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

const quoteResponseColumns = `id, quote_request_id, business_id, price, description, estimated_time,
	available_date, status, payment_status, before_photo_refs, after_photo_refs,
	created_at, updated_at`

// PostgresQuoteResponseStore implements store.QuoteResponseStore.
type PostgresQuoteResponseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuoteResponseStore creates a PostgresQuoteResponseStore.
func NewPostgresQuoteResponseStore(db store.DBTX, logger *slog.Logger) *PostgresQuoteResponseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuoteResponseStore{
		db:     db,
		logger: logger.With(slog.String("component", "quote_response_store")),
	}
}

var _ store.QuoteResponseStore = (*PostgresQuoteResponseStore)(nil)

// Create implements store.QuoteResponseStore.Create. The
// (quote_request_id, business_id) unique constraint reports a second offer
// as store.ErrOfferExists.
func (s *PostgresQuoteResponseStore) Create(ctx context.Context, offer *domain.QuoteResponse) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := offer.Validate(); err != nil {
		return err
	}
	before, err := encodeStrings(offer.BeforePhotoRefs)
	if err != nil {
		return err
	}
	after, err := encodeStrings(offer.AfterPhotoRefs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quote_responses (`+quoteResponseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		offer.ID, offer.QuoteRequestID, offer.BusinessID, offer.Price, offer.Description,
		offer.EstimatedTime, offer.AvailableDate, offer.Status, offer.PaymentStatus,
		before, after, offer.CreatedAt, offer.UpdatedAt,
	)
	if err != nil {
		err = MapError(err)
		if store.IsDuplicateError(err) {
			log.Debug("duplicate offer rejected",
				slog.String("request_id", offer.QuoteRequestID.String()),
				slog.String("business_id", offer.BusinessID.String()))
			return err
		}
		log.Error("failed to create offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", offer.ID.String()))
		return err
	}
	return nil
}

// GetByID implements store.QuoteResponseStore.GetByID
func (s *PostgresQuoteResponseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	offer, err := scanQuoteResponse(s.db.QueryRowContext(ctx,
		`SELECT `+quoteResponseColumns+` FROM quote_responses WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrQuoteResponseNotFound)
	}
	return offer, nil
}

// GetForUpdate implements store.QuoteResponseStore.GetForUpdate
func (s *PostgresQuoteResponseStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	offer, err := scanQuoteResponse(s.db.QueryRowContext(ctx,
		`SELECT `+quoteResponseColumns+` FROM quote_responses WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrQuoteResponseNotFound)
	}
	return offer, nil
}

// Update implements store.QuoteResponseStore.Update
func (s *PostgresQuoteResponseStore) Update(ctx context.Context, offer *domain.QuoteResponse) error {
	before, err := encodeStrings(offer.BeforePhotoRefs)
	if err != nil {
		return err
	}
	after, err := encodeStrings(offer.AfterPhotoRefs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE quote_responses
		SET status = $2, payment_status = $3, before_photo_refs = $4, after_photo_refs = $5,
			updated_at = $6
		WHERE id = $1`,
		offer.ID, offer.Status, offer.PaymentStatus, before, after, offer.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", offer.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrQuoteResponseNotFound)
}

// ListByRequest implements store.QuoteResponseStore.ListByRequest
func (s *PostgresQuoteResponseStore) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.QuoteResponse, error) {
	return s.list(ctx, `WHERE quote_request_id = $1 ORDER BY created_at, id`, requestID)
}

// ListByBusiness implements store.QuoteResponseStore.ListByBusiness
func (s *PostgresQuoteResponseStore) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*domain.QuoteResponse, error) {
	return s.list(ctx, `WHERE business_id = $1 ORDER BY created_at DESC, id`, businessID)
}

func (s *PostgresQuoteResponseStore) list(ctx context.Context, clause string, arg any) ([]*domain.QuoteResponse, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quoteResponseColumns+` FROM quote_responses `+clause, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var offers []*domain.QuoteResponse
	for rows.Next() {
		offer, err := scanQuoteResponse(rows)
		if err != nil {
			return nil, MapError(err)
		}
		offers = append(offers, offer)
	}
	return offers, MapError(rows.Err())
}

func scanQuoteResponse(row rowScanner) (*domain.QuoteResponse, error) {
	var (
		o             domain.QuoteResponse
		available     sql.NullTime
		before, after []byte
	)
	err := row.Scan(
		&o.ID, &o.QuoteRequestID, &o.BusinessID, &o.Price, &o.Description, &o.EstimatedTime,
		&available, &o.Status, &o.PaymentStatus, &before, &after, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.AvailableDate = nullTime(available)
	if o.BeforePhotoRefs, err = decodeStrings(before); err != nil {
		return nil, err
	}
	if o.AfterPhotoRefs, err = decodeStrings(after); err != nil {
		return nil, err
	}
	return &o, nil
}
