package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Review validation errors
var (
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrEmptyReviewID    = errors.New("review ID cannot be empty")
)

// Review is a customer's rating of a completed, paid offer.
type Review struct {
	ID              uuid.UUID  `json:"id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	BusinessID      uuid.UUID  `json:"business_id"`
	QuoteResponseID *uuid.UUID `json:"quote_response_id,omitempty"`
	Rating          int        `json:"rating"`
	Content         string     `json:"content"`
	Tags            []string   `json:"tags"`
	Public          bool       `json:"public"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewReview creates a public review of offer by customerID.
func NewReview(customerID uuid.UUID, offer *QuoteResponse, rating int, content string, tags []string) (*Review, error) {
	now := time.Now().UTC()
	offerID := offer.ID
	r := &Review{
		ID:              uuid.New(),
		CustomerID:      customerID,
		BusinessID:      offer.BusinessID,
		QuoteResponseID: &offerID,
		Rating:          rating,
		Content:         strings.TrimSpace(content),
		Tags:            NormalizeTags(tags),
		Public:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// ValidateRating checks the rating bounds.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5", ErrRatingOutOfRange)
	}
	return nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyReviewID)
	}
	if r.CustomerID == uuid.Nil {
		return NewValidationError("customer_id", "cannot be empty", ErrEmptyCustomerID)
	}
	if r.BusinessID == uuid.Nil {
		return NewValidationError("business_id", "cannot be empty", ErrEmptyBusinessID)
	}
	return ValidateRating(r.Rating)
}

// HasTag reports whether the review carries tag, ignoring case.
func (r *Review) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeTags trims tags, drops empty ones and removes case-insensitive
// duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// AverageRating is the arithmetic mean of ratings, zero when there are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
