package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

// RecentReviewLimit bounds the "recent" review listing.
const RecentReviewLimit = 5

// ReviewInput holds the fields of a new review.
type ReviewInput struct {
	Rating  int
	Content string
	Tags    []string
}

// ReviewUpdate holds the fields an author may change. Nil fields are kept.
type ReviewUpdate struct {
	Rating  *int
	Content *string
	Tags    []string
	Public  *bool
}

// ReviewQuery selects a business's public reviews.
type ReviewQuery struct {
	Sort  store.ReviewSort
	Tag   string
	Limit int
}

// ReviewService gates and maintains reviews and the rating aggregate.
type ReviewService interface {
	// CreateReview reviews a paid, accepted offer. One review per offer.
	CreateReview(ctx context.Context, actor domain.Actor, offerID uuid.UUID, in ReviewInput) (*domain.Review, error)

	// UpdateReview edits a review. Only its author may do so.
	UpdateReview(ctx context.Context, actor domain.Actor, reviewID uuid.UUID, in ReviewUpdate) (*domain.Review, error)

	// DeleteReview removes a review. Only its author may do so.
	DeleteReview(ctx context.Context, actor domain.Actor, reviewID uuid.UUID) error

	// ListBusinessReviews returns a business's public reviews.
	ListBusinessReviews(ctx context.Context, businessID uuid.UUID, q ReviewQuery) ([]*domain.Review, error)
}

// ReviewServiceImpl implements ReviewService.
type ReviewServiceImpl struct {
	tx      store.Transactor
	stores  store.Stores
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(tx store.Transactor, stores store.Stores, emitter events.EventEmitter, log *slog.Logger) *ReviewServiceImpl {
	if log == nil {
		log = slog.Default()
	}
	return &ReviewServiceImpl{
		tx:      tx,
		stores:  stores,
		emitter: emitter,
		logger:  log.With(slog.String("component", "review_service")),
	}
}

// CreateReview implements ReviewService.
func (s *ReviewServiceImpl) CreateReview(
	ctx context.Context,
	actor domain.Actor,
	offerID uuid.UUID,
	in ReviewInput,
) (*domain.Review, error) {
	const op = "create_review"

	if err := domain.ValidateRating(in.Rating); err != nil {
		return nil, wrapError(op, "invalid rating", err)
	}

	var (
		review   *domain.Review
		customer *domain.User
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		offer, err := tx.QuoteResponses.GetByID(ctx, offerID)
		if err != nil {
			return wrapError(op, "failed to load offer", err)
		}
		req, err := tx.QuoteRequests.GetForUpdate(ctx, offer.QuoteRequestID)
		if err != nil {
			return wrapError(op, "failed to load quote request", err)
		}
		if !actor.Is(req.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "only the requesting customer can review this offer")
		}

		if _, err := tx.Reviews.GetByQuoteResponse(ctx, offerID); err == nil {
			return newError(op, domain.ErrConflict, "offer has already been reviewed")
		} else if !store.IsNotFoundError(err) {
			return wrapError(op, "failed to check existing review", err)
		}

		if offer.Status != domain.OfferStatusAccepted {
			return newError(op, domain.ErrInvalidState, "only accepted offers can be reviewed")
		}
		paid, err := hasDonePayment(ctx, tx, offerID)
		if err != nil {
			return wrapError(op, "failed to load payments", err)
		}
		if !paid {
			return newError(op, domain.ErrInvalidState, "offer has not been paid")
		}

		review, err = domain.NewReview(actor.UserID, offer, in.Rating, in.Content, in.Tags)
		if err != nil {
			return wrapError(op, "invalid review", err)
		}
		if err := tx.Reviews.Create(ctx, review); err != nil {
			return wrapError(op, "failed to save review", err)
		}

		req.ReviewStatus = domain.ReviewStatusReviewed
		req.UpdatedAt = review.CreatedAt
		if err := tx.QuoteRequests.Update(ctx, req); err != nil {
			return wrapError(op, "failed to update review status", err)
		}

		if err := recomputeRating(ctx, tx, op, offer.BusinessID); err != nil {
			return err
		}

		customer, err = tx.Users.GetByID(ctx, actor.UserID)
		if err != nil {
			return wrapError(op, "failed to load customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("review created",
		slog.String("review_id", review.ID.String()),
		slog.String("business_id", review.BusinessID.String()),
		slog.Int("rating", review.Rating))

	events.Publish(ctx, s.emitter, events.TypeReviewCreated, events.ReviewCreated{
		ReviewID:     review.ID,
		OfferID:      offerID,
		CustomerID:   review.CustomerID,
		CustomerName: customer.DisplayName(),
		BusinessID:   review.BusinessID,
		Rating:       review.Rating,
	})
	return review, nil
}

// UpdateReview implements ReviewService.
func (s *ReviewServiceImpl) UpdateReview(
	ctx context.Context,
	actor domain.Actor,
	reviewID uuid.UUID,
	in ReviewUpdate,
) (*domain.Review, error) {
	const op = "update_review"

	if in.Rating != nil {
		if err := domain.ValidateRating(*in.Rating); err != nil {
			return nil, wrapError(op, "invalid rating", err)
		}
	}

	var review *domain.Review
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		review, err = tx.Reviews.GetByID(ctx, reviewID)
		if err != nil {
			return wrapError(op, "failed to load review", err)
		}
		if !actor.Is(review.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "review belongs to another customer")
		}

		if in.Rating != nil {
			review.Rating = *in.Rating
		}
		if in.Content != nil {
			review.Content = strings.TrimSpace(*in.Content)
		}
		if in.Tags != nil {
			review.Tags = domain.NormalizeTags(in.Tags)
		}
		if in.Public != nil {
			review.Public = *in.Public
		}
		review.UpdatedAt = time.Now().UTC()

		if err := review.Validate(); err != nil {
			return wrapError(op, "invalid review", err)
		}
		if err := tx.Reviews.Update(ctx, review); err != nil {
			return wrapError(op, "failed to save review", err)
		}
		return recomputeRating(ctx, tx, op, review.BusinessID)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("review updated",
		slog.String("review_id", reviewID.String()))
	return review, nil
}

// DeleteReview implements ReviewService.
func (s *ReviewServiceImpl) DeleteReview(ctx context.Context, actor domain.Actor, reviewID uuid.UUID) error {
	const op = "delete_review"

	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		review, err := tx.Reviews.GetByID(ctx, reviewID)
		if err != nil {
			return wrapError(op, "failed to load review", err)
		}
		if !actor.Is(review.CustomerID, domain.RoleCustomer) {
			return newError(op, domain.ErrForbidden, "review belongs to another customer")
		}

		if err := tx.Reviews.Delete(ctx, reviewID); err != nil {
			return wrapError(op, "failed to delete review", err)
		}

		if review.QuoteResponseID != nil {
			offer, err := tx.QuoteResponses.GetByID(ctx, *review.QuoteResponseID)
			if err != nil {
				return wrapError(op, "failed to load offer", err)
			}
			req, err := tx.QuoteRequests.GetForUpdate(ctx, offer.QuoteRequestID)
			if err != nil {
				return wrapError(op, "failed to load quote request", err)
			}
			req.ReviewStatus = domain.ReviewStatusNotReviewed
			req.UpdatedAt = time.Now().UTC()
			if err := tx.QuoteRequests.Update(ctx, req); err != nil {
				return wrapError(op, "failed to update review status", err)
			}
		}

		return recomputeRating(ctx, tx, op, review.BusinessID)
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("review deleted",
		slog.String("review_id", reviewID.String()))
	return nil
}

// ListBusinessReviews implements ReviewService.
func (s *ReviewServiceImpl) ListBusinessReviews(
	ctx context.Context,
	businessID uuid.UUID,
	q ReviewQuery,
) ([]*domain.Review, error) {
	const op = "list_business_reviews"

	switch q.Sort {
	case "":
		q.Sort = store.ReviewSortRecent
	case store.ReviewSortRecent, store.ReviewSortBest:
	default:
		return nil, newError(op, domain.ErrInvalidArgument, "unknown sort "+string(q.Sort))
	}
	if q.Limit < 0 {
		return nil, newError(op, domain.ErrInvalidArgument, "limit cannot be negative")
	}

	business, err := s.stores.Users.GetByID(ctx, businessID)
	if err != nil {
		return nil, wrapError(op, "failed to load business", err)
	}
	if !business.IsBusiness() {
		return nil, newError(op, domain.ErrNotFound, "business not found")
	}

	reviews, err := s.stores.Reviews.ListByBusiness(ctx, businessID, store.ReviewFilter{
		PublicOnly: true,
		Tag:        strings.TrimSpace(q.Tag),
		Sort:       q.Sort,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, wrapError(op, "failed to list reviews", err)
	}
	return reviews, nil
}

// recomputeRating rewrites the business's rating aggregate from every
// review it has received.
func recomputeRating(ctx context.Context, tx store.Stores, op string, businessID uuid.UUID) error {
	ratings, err := tx.Reviews.RatingsByBusiness(ctx, businessID)
	if err != nil {
		return wrapError(op, "failed to load ratings", err)
	}

	business, err := tx.Users.GetForUpdate(ctx, businessID)
	if err != nil {
		return wrapError(op, "failed to load business", err)
	}
	business.AverageRating = domain.AverageRating(ratings)
	business.ReviewCount = len(ratings)
	business.UpdatedAt = time.Now().UTC()
	if err := tx.Users.Update(ctx, business); err != nil {
		return wrapError(op, "failed to update rating", err)
	}
	return nil
}

func hasDonePayment(ctx context.Context, tx store.Stores, offerID uuid.UUID) (bool, error) {
	payments, err := tx.Payments.ListByQuoteResponse(ctx, offerID)
	if err != nil {
		return false, err
	}
	for _, p := range payments {
		if p.Status == domain.PaymentStatusDone {
			return true, nil
		}
	}
	return false, nil
}

var _ ReviewService = (*ReviewServiceImpl)(nil)
