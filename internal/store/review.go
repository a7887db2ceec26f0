package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// ReviewSort orders review listings.
type ReviewSort string

// Review orderings
const (
	// ReviewSortRecent orders newest first.
	ReviewSortRecent ReviewSort = "recent"
	// ReviewSortBest orders by rating descending, then newest first.
	ReviewSortBest ReviewSort = "best"
)

// ReviewFilter narrows ListByBusiness.
type ReviewFilter struct {
	PublicOnly bool
	Tag        string
	Sort       ReviewSort
	Limit      int // zero means no limit
}

// ReviewStore defines the interface for review persistence.
type ReviewStore interface {
	// Create saves a new review.
	// Returns ErrReviewExists if the offer already has a review.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review.
	// Returns ErrReviewNotFound if the review does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	// GetByQuoteResponse retrieves the review of an offer.
	// Returns ErrReviewNotFound if the offer has not been reviewed.
	GetByQuoteResponse(ctx context.Context, offerID uuid.UUID) (*domain.Review, error)

	// Update persists rating, content, tags and visibility.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByBusiness returns a business's reviews matching filter.
	ListByBusiness(ctx context.Context, businessID uuid.UUID, filter ReviewFilter) ([]*domain.Review, error)

	// RatingsByBusiness returns every rating a business has received.
	RatingsByBusiness(ctx context.Context, businessID uuid.UUID) ([]int, error)
}
