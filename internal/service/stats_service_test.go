package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/service"
)

func TestBusinessStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	first := env.paidOffer(t, 30000)
	second := env.paidOffer(t, 20000)
	env.submitOffer(t, env.nearBiz, env.createRequest(t).ID, 15000)

	_, err := env.reviews.CreateReview(ctx, actorOf(env.customer), first.ID, service.ReviewInput{
		Rating: 5, Tags: []string{"친절", "꼼꼼함"},
	})
	require.NoError(t, err)
	_, err = env.reviews.CreateReview(ctx, actorOf(env.customer), second.ID, service.ReviewInput{
		Rating: 3, Tags: []string{"친절"},
	})
	require.NoError(t, err)

	stats, err := env.stats.BusinessStats(ctx, actorOf(env.nearBiz), env.nearBiz.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.OffersSubmitted)
	assert.Equal(t, 2, stats.OffersAccepted)
	assert.InDelta(t, 2.0/3.0, stats.AcceptanceRate, 1e-9)
	assert.Equal(t, 2, stats.CompletedServices)
	assert.Equal(t, int64(50000), stats.Revenue)

	var monthly int64
	for _, v := range stats.RevenueByMonth {
		monthly += v
	}
	assert.Equal(t, int64(50000), monthly)

	assert.InDelta(t, 4.0, stats.AverageRating, 1e-9)
	assert.Equal(t, 2, stats.ReviewCount)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 1}, stats.RatingDistribution)
	assert.Equal(t, []service.TagCount{{Tag: "친절", Count: 2}, {Tag: "꼼꼼함", Count: 1}}, stats.PopularTags)
}

func TestBusinessStatsAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	_, err := env.stats.BusinessStats(ctx, actorOf(env.farBiz), env.nearBiz.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.stats.BusinessStats(ctx, actorOf(env.customer), env.nearBiz.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}
	stats, err := env.stats.BusinessStats(ctx, admin, env.nearBiz.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.OffersSubmitted)
	assert.Zero(t, stats.AcceptanceRate)
	assert.Empty(t, stats.PopularTags)

	_, err = env.stats.BusinessStats(ctx, admin, env.customer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
