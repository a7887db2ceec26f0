package api

import (
	"log/slog"
	"net/http"

	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/service"
	"github.com/teolgogo/quote-engine/internal/store"
)

// ReviewHandler handles reviews and business statistics.
type ReviewHandler struct {
	reviews service.ReviewService
	stats   service.StatsService
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews service.ReviewService, stats service.StatsService, log *slog.Logger) *ReviewHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviews: reviews,
		stats:   stats,
		logger:  log.With(slog.String("component", "review_handler")),
	}
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.reviews.CreateReview(r.Context(), actor, req.QuoteResponseID, service.ReviewInput{
		Rating:  req.Rating,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create review")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, review)
}

// Update handles PUT /api/reviews/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, reviewID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.reviews.UpdateReview(r.Context(), actor, reviewID, service.ReviewUpdate{
		Rating:  req.Rating,
		Content: req.Content,
		Tags:    req.Tags,
		Public:  req.Public,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update review")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, review)
}

// Delete handles DELETE /api/reviews/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, reviewID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), actor, reviewID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListForBusiness handles GET /api/businesses/{id}/reviews?sort=&tag=&limit=.
// It is public.
func (h *ReviewHandler) ListForBusiness(w http.ResponseWriter, r *http.Request) {
	businessID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q := r.URL.Query()
	reviews, err := h.reviews.ListBusinessReviews(r.Context(), businessID, service.ReviewQuery{
		Sort:  store.ReviewSort(q.Get("sort")),
		Tag:   q.Get("tag"),
		Limit: limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reviews)
}

// Stats handles GET /api/businesses/{id}/stats.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, businessID, ok := handleActorAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	stats, err := h.stats.BusinessStats(r.Context(), actor, businessID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
