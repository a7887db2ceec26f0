package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	t.Parallel()

	offer := newTestOffer(t, 1000)
	customerID := uuid.New()

	r, err := NewReview(customerID, offer, 5, " great ", []string{"kind", " Kind ", "", "fast"})
	require.NoError(t, err)

	assert.True(t, r.Public)
	assert.Equal(t, "great", r.Content)
	assert.Equal(t, []string{"kind", "fast"}, r.Tags)
	assert.Equal(t, offer.BusinessID, r.BusinessID)
	require.NotNil(t, r.QuoteResponseID)
	assert.Equal(t, offer.ID, *r.QuoteResponseID)
	assert.True(t, r.HasTag("KIND"))
	assert.False(t, r.HasTag("slow"))
}

func TestValidateRating(t *testing.T) {
	t.Parallel()

	for _, rating := range []int{0, 6, -1} {
		err := ValidateRating(rating)
		assert.ErrorIs(t, err, ErrRatingOutOfRange, "rating %d", rating)
		assert.ErrorIs(t, err, ErrInvalidArgument, "rating %d", rating)
	}
	for rating := MinRating; rating <= MaxRating; rating++ {
		assert.NoError(t, ValidateRating(rating))
	}
}

func TestAverageRating(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 4.0, AverageRating([]int{3, 5}))
	assert.InDelta(t, 3.6667, AverageRating([]int{5, 5, 1}), 1e-4)
}

func TestCounterpart(t *testing.T) {
	t.Parallel()

	p := Participants{CustomerID: uuid.New(), BusinessID: uuid.New()}

	id, ok := Counterpart(RoleCustomer, p)
	assert.True(t, ok)
	assert.Equal(t, p.BusinessID, id)

	id, ok = Counterpart(RoleBusiness, p)
	assert.True(t, ok)
	assert.Equal(t, p.CustomerID, id)

	_, ok = Counterpart(RoleAdmin, p)
	assert.False(t, ok)

	_, ok = Counterpart(RoleCustomer, Participants{CustomerID: p.CustomerID})
	assert.False(t, ok)
}
