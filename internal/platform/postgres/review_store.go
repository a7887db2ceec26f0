package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

const reviewColumns = `id, customer_id, business_id, quote_response_id, rating, content, tags,
	public, created_at, updated_at`

// PostgresReviewStore implements store.ReviewStore. Tags are a JSONB array.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a PostgresReviewStore.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Create implements store.ReviewStore.Create
func (s *PostgresReviewStore) Create(ctx context.Context, r *domain.Review) error {
	if err := r.Validate(); err != nil {
		return err
	}
	tags, err := encodeStrings(r.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.CustomerID, r.BusinessID, r.QuoteResponseID, r.Rating, r.Content, tags,
		r.Public, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		err = MapError(err)
		if !store.IsDuplicateError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to create review",
				slog.String("error", err.Error()),
				slog.String("review_id", r.ID.String()))
		}
		return err
	}
	return nil
}

// GetByID implements store.ReviewStore.GetByID
func (s *PostgresReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrReviewNotFound)
	}
	return r, nil
}

// GetByQuoteResponse implements store.ReviewStore.GetByQuoteResponse
func (s *PostgresReviewStore) GetByQuoteResponse(ctx context.Context, offerID uuid.UUID) (*domain.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE quote_response_id = $1`, offerID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrReviewNotFound)
	}
	return r, nil
}

// Update implements store.ReviewStore.Update
func (s *PostgresReviewStore) Update(ctx context.Context, r *domain.Review) error {
	tags, err := encodeStrings(r.Tags)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE reviews
		SET rating = $2, content = $3, tags = $4, public = $5, updated_at = $6
		WHERE id = $1`,
		r.ID, r.Rating, r.Content, tags, r.Public, r.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReviewNotFound)
}

// Delete implements store.ReviewStore.Delete
func (s *PostgresReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReviewNotFound)
}

// ListByBusiness implements store.ReviewStore.ListByBusiness. Tag matching
// ignores case.
func (s *PostgresReviewStore) ListByBusiness(
	ctx context.Context,
	businessID uuid.UUID,
	filter store.ReviewFilter,
) ([]*domain.Review, error) {
	var (
		where = []string{"business_id = $1"}
		args  = []any{businessID}
	)
	if filter.PublicOnly {
		where = append(where, "public")
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE lower(t.tag) = lower($%d))",
			len(args)))
	}

	order := "created_at DESC, id"
	if filter.Sort == store.ReviewSortBest {
		order = "rating DESC, created_at DESC, id"
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, MapError(err)
		}
		reviews = append(reviews, r)
	}
	return reviews, MapError(rows.Err())
}

// RatingsByBusiness implements store.ReviewStore.RatingsByBusiness
func (s *PostgresReviewStore) RatingsByBusiness(ctx context.Context, businessID uuid.UUID) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rating FROM reviews WHERE business_id = $1`, businessID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, MapError(err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, MapError(rows.Err())
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		r       domain.Review
		offerID uuid.NullUUID
		tags    []byte
	)
	err := row.Scan(
		&r.ID, &r.CustomerID, &r.BusinessID, &offerID, &r.Rating, &r.Content, &tags,
		&r.Public, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if offerID.Valid {
		id := offerID.UUID
		r.QuoteResponseID = &id
	}
	if r.Tags, err = decodeStrings(tags); err != nil {
		return nil, err
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return &r, nil
}
