package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// popularTagLimit bounds BusinessStats.PopularTags.
const popularTagLimit = 5

// TagCount is a review tag and how often it was used.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// BusinessStats summarizes a business's marketplace activity.
type BusinessStats struct {
	BusinessID         uuid.UUID        `json:"business_id"`
	OffersSubmitted    int              `json:"offers_submitted"`
	OffersAccepted     int              `json:"offers_accepted"`
	AcceptanceRate     float64          `json:"acceptance_rate"`
	CompletedServices  int              `json:"completed_services"`
	Revenue            int64            `json:"revenue"`
	RevenueByMonth     map[string]int64 `json:"revenue_by_month"`
	AverageRating      float64          `json:"average_rating"`
	ReviewCount        int              `json:"review_count"`
	RatingDistribution map[int]int      `json:"rating_distribution"`
	PopularTags        []TagCount       `json:"popular_tags"`
}

// StatsService computes business statistics.
type StatsService interface {
	// BusinessStats is visible to the business itself and to admins.
	BusinessStats(ctx context.Context, actor domain.Actor, businessID uuid.UUID) (*BusinessStats, error)
}

// StatsServiceImpl implements StatsService from the stores.
type StatsServiceImpl struct {
	stores store.Stores
	logger *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(stores store.Stores, log *slog.Logger) *StatsServiceImpl {
	if log == nil {
		log = slog.Default()
	}
	return &StatsServiceImpl{
		stores: stores,
		logger: log.With(slog.String("component", "stats_service")),
	}
}

// BusinessStats implements StatsService.
func (s *StatsServiceImpl) BusinessStats(
	ctx context.Context,
	actor domain.Actor,
	businessID uuid.UUID,
) (*BusinessStats, error) {
	const op = "business_stats"

	if actor.Role != domain.RoleAdmin && !actor.Is(businessID, domain.RoleBusiness) {
		return nil, newError(op, domain.ErrForbidden, "statistics are private to the business")
	}

	business, err := s.stores.Users.GetByID(ctx, businessID)
	if err != nil {
		return nil, wrapError(op, "failed to load business", err)
	}
	if !business.IsBusiness() {
		return nil, newError(op, domain.ErrNotFound, "business not found")
	}

	offers, err := s.stores.QuoteResponses.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, wrapError(op, "failed to list offers", err)
	}
	payments, err := s.stores.Payments.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, wrapError(op, "failed to list payments", err)
	}
	reviews, err := s.stores.Reviews.ListByBusiness(ctx, businessID, store.ReviewFilter{Sort: store.ReviewSortRecent})
	if err != nil {
		return nil, wrapError(op, "failed to list reviews", err)
	}

	stats := &BusinessStats{
		BusinessID:         businessID,
		OffersSubmitted:    len(offers),
		CompletedServices:  business.CompletedServices,
		RevenueByMonth:     make(map[string]int64),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		PopularTags:        []TagCount{},
	}

	for _, o := range offers {
		if o.Status == domain.OfferStatusAccepted {
			stats.OffersAccepted++
		}
	}
	if stats.OffersSubmitted > 0 {
		stats.AcceptanceRate = float64(stats.OffersAccepted) / float64(stats.OffersSubmitted)
	}

	for _, p := range payments {
		if p.Status != domain.PaymentStatusDone {
			continue
		}
		stats.Revenue += p.Amount
		paidAt := p.CreatedAt
		if p.PaidAt != nil {
			paidAt = *p.PaidAt
		}
		stats.RevenueByMonth[paidAt.Format("2006-01")] += p.Amount
	}

	ratings := make([]int, 0, len(reviews))
	tags := make(map[string]int)
	for _, r := range reviews {
		ratings = append(ratings, r.Rating)
		stats.RatingDistribution[r.Rating]++
		for _, t := range r.Tags {
			tags[t]++
		}
	}
	stats.AverageRating = domain.AverageRating(ratings)
	stats.ReviewCount = len(ratings)
	stats.PopularTags = topTags(tags, popularTagLimit)

	return stats, nil
}

// topTags returns the n most used tags, ties broken alphabetically.
func topTags(counts map[string]int, n int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for tag, c := range counts {
		out = append(out, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

var _ StatsService = (*StatsServiceImpl)(nil)
