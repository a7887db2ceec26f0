package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// ReviewStore implements store.ReviewStore.
type ReviewStore struct {
	db   *DB
	inTx bool
}

var _ store.ReviewStore = (*ReviewStore)(nil)

// Create saves a review, enforcing one review per offer.
func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	return s.db.write(s.inTx, func(t *tables) error {
		if review.QuoteResponseID != nil {
			for _, existing := range t.reviews {
				if existing.QuoteResponseID != nil && *existing.QuoteResponseID == *review.QuoteResponseID {
					return store.ErrReviewExists
				}
			}
		}
		t.reviews[review.ID] = cloneReview(review)
		return nil
	})
}

// GetByID retrieves a review.
func (s *ReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var out *domain.Review
	err := s.db.read(func(t *tables) error {
		r, ok := t.reviews[id]
		if !ok {
			return store.ErrReviewNotFound
		}
		out = cloneReview(r)
		return nil
	})
	return out, err
}

// GetByQuoteResponse retrieves the review of an offer.
func (s *ReviewStore) GetByQuoteResponse(ctx context.Context, offerID uuid.UUID) (*domain.Review, error) {
	var out *domain.Review
	err := s.db.read(func(t *tables) error {
		for _, r := range t.reviews {
			if r.QuoteResponseID != nil && *r.QuoteResponseID == offerID {
				out = cloneReview(r)
				return nil
			}
		}
		return store.ErrReviewNotFound
	})
	return out, err
}

// Update replaces a stored review.
func (s *ReviewStore) Update(ctx context.Context, review *domain.Review) error {
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.reviews[review.ID]; !ok {
			return store.ErrReviewNotFound
		}
		t.reviews[review.ID] = cloneReview(review)
		return nil
	})
}

// Delete removes a review.
func (s *ReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.reviews[id]; !ok {
			return store.ErrReviewNotFound
		}
		delete(t.reviews, id)
		return nil
	})
}

// ListByBusiness returns a business's reviews matching filter.
func (s *ReviewStore) ListByBusiness(ctx context.Context, businessID uuid.UUID, filter store.ReviewFilter) ([]*domain.Review, error) {
	var out []*domain.Review
	err := s.db.read(func(t *tables) error {
		for _, r := range t.reviews {
			if r.BusinessID != businessID {
				continue
			}
			if filter.PublicOnly && !r.Public {
				continue
			}
			if filter.Tag != "" && !r.HasTag(filter.Tag) {
				continue
			}
			out = append(out, cloneReview(r))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *domain.Review) int {
		if filter.Sort == store.ReviewSortBest {
			if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
				return c
			}
		}
		return newestFirst(a.CreatedAt, b.CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// RatingsByBusiness returns every rating a business has received.
func (s *ReviewStore) RatingsByBusiness(ctx context.Context, businessID uuid.UUID) ([]int, error) {
	var out []int
	err := s.db.read(func(t *tables) error {
		for _, r := range t.reviews {
			if r.BusinessID == businessID {
				out = append(out, r.Rating)
			}
		}
		return nil
	})
	return out, err
}
