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

const quoteRequestColumns = `r.id, r.customer_id, r.pet_type, r.pet_breed, r.pet_age, r.pet_weight,
	r.service_type, r.description, r.latitude, r.longitude, r.address, r.status,
	r.review_status, r.preferred_date, r.photo_refs, r.created_at, r.updated_at`

const quoteItemColumns = `i.id, i.quote_request_id, i.position, i.item_type, i.description, i.price`

// PostgresQuoteRequestStore implements store.QuoteRequestStore. Line items
// live in quote_items and are loaded with their request.
type PostgresQuoteRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuoteRequestStore creates a PostgresQuoteRequestStore.
func NewPostgresQuoteRequestStore(db store.DBTX, logger *slog.Logger) *PostgresQuoteRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuoteRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "quote_request_store")),
	}
}

var _ store.QuoteRequestStore = (*PostgresQuoteRequestStore)(nil)

// Create implements store.QuoteRequestStore.Create
func (s *PostgresQuoteRequestStore) Create(ctx context.Context, req *domain.QuoteRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		return err
	}
	photos, err := encodeStrings(req.PhotoRefs)
	if err != nil {
		return err
	}

	lat, lng := coordinates(req.Location)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quote_requests (id, customer_id, pet_type, pet_breed, pet_age, pet_weight,
			service_type, description, latitude, longitude, address, status, review_status,
			preferred_date, photo_refs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		req.ID, req.CustomerID, req.Pet.Type, req.Pet.Breed, req.Pet.Age, req.Pet.Weight,
		req.ServiceType, req.Description, lat, lng, req.Address, req.Status, req.ReviewStatus,
		req.PreferredDate, photos, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create quote request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return MapError(err)
	}

	for _, item := range req.Items {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO quote_items (id, quote_request_id, position, item_type, description, price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, req.ID, item.Position, item.Type, item.Description, item.Price,
		)
		if err != nil {
			log.Error("failed to create quote item",
				slog.String("error", err.Error()),
				slog.String("request_id", req.ID.String()))
			return MapError(err)
		}
	}

	log.Debug("quote request created",
		slog.String("request_id", req.ID.String()),
		slog.Int("items", len(req.Items)))
	return nil
}

// GetByID implements store.QuoteRequestStore.GetByID
func (s *PostgresQuoteRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	return s.get(ctx, `SELECT `+quoteRequestColumns+` FROM quote_requests r WHERE r.id = $1`, id)
}

// GetForUpdate implements store.QuoteRequestStore.GetForUpdate
func (s *PostgresQuoteRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	return s.get(ctx, `SELECT `+quoteRequestColumns+` FROM quote_requests r WHERE r.id = $1 FOR UPDATE`, id)
}

func (s *PostgresQuoteRequestStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.QuoteRequest, error) {
	req, err := scanQuoteRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrQuoteRequestNotFound)
	}

	items, err := s.items(ctx, `WHERE i.quote_request_id = $1`, id)
	if err != nil {
		return nil, err
	}
	req.Items = items[req.ID]
	if req.Items == nil {
		req.Items = []domain.QuoteItem{}
	}
	return req, nil
}

// Update implements store.QuoteRequestStore.Update
func (s *PostgresQuoteRequestStore) Update(ctx context.Context, req *domain.QuoteRequest) error {
	photos, err := encodeStrings(req.PhotoRefs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE quote_requests
		SET status = $2, review_status = $3, photo_refs = $4, updated_at = $5
		WHERE id = $1`,
		req.ID, req.Status, req.ReviewStatus, photos, req.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update quote request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrQuoteRequestNotFound)
}

// ListByStatus implements store.QuoteRequestStore.ListByStatus
func (s *PostgresQuoteRequestStore) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.QuoteRequest, error) {
	return s.list(ctx, `WHERE r.status = $1`, status)
}

// ListByCustomer implements store.QuoteRequestStore.ListByCustomer
func (s *PostgresQuoteRequestStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.QuoteRequest, error) {
	return s.list(ctx, `WHERE r.customer_id = $1`, customerID)
}

// list loads the requests matching where, newest first, then their items
// with a second query over the same predicate.
func (s *PostgresQuoteRequestStore) list(ctx context.Context, where string, arg any) ([]*domain.QuoteRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteRequestColumns+` FROM quote_requests r `+where+` ORDER BY r.created_at DESC, r.id`, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var reqs []*domain.QuoteRequest
	for rows.Next() {
		req, err := scanQuoteRequest(rows)
		if err != nil {
			return nil, MapError(err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	if len(reqs) == 0 {
		return reqs, nil
	}

	items, err := s.items(ctx, `JOIN quote_requests r ON r.id = i.quote_request_id `+where, arg)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		req.Items = items[req.ID]
		if req.Items == nil {
			req.Items = []domain.QuoteItem{}
		}
	}
	return reqs, nil
}

// items returns line items grouped by request id in position order.
func (s *PostgresQuoteRequestStore) items(ctx context.Context, clause string, arg any) (map[uuid.UUID][]domain.QuoteItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteItemColumns+` FROM quote_items i `+clause+` ORDER BY i.quote_request_id, i.position`, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[uuid.UUID][]domain.QuoteItem)
	for rows.Next() {
		var (
			item      domain.QuoteItem
			requestID uuid.UUID
		)
		if err := rows.Scan(&item.ID, &requestID, &item.Position, &item.Type, &item.Description, &item.Price); err != nil {
			return nil, MapError(err)
		}
		out[requestID] = append(out[requestID], item)
	}
	return out, MapError(rows.Err())
}

func scanQuoteRequest(row rowScanner) (*domain.QuoteRequest, error) {
	var (
		r         domain.QuoteRequest
		lat, lng  sql.NullFloat64
		preferred sql.NullTime
		photos    []byte
	)
	err := row.Scan(
		&r.ID, &r.CustomerID, &r.Pet.Type, &r.Pet.Breed, &r.Pet.Age, &r.Pet.Weight,
		&r.ServiceType, &r.Description, &lat, &lng, &r.Address, &r.Status,
		&r.ReviewStatus, &preferred, &photos, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Location = location(lat, lng)
	r.PreferredDate = nullTime(preferred)
	if r.PhotoRefs, err = decodeStrings(photos); err != nil {
		return nil, err
	}
	return &r, nil
}
