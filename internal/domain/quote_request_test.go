package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttrs() QuoteRequestAttrs {
	return QuoteRequestAttrs{
		Pet:         Pet{Type: PetTypeDog, Breed: "poodle", Age: 3, Weight: 4.2},
		ServiceType: ServiceTypeBasic,
		Description: "  trim please ",
		Location:    &Location{Latitude: 37.5, Longitude: 127.0},
		Items: []QuoteItem{
			{Type: ItemTypeBasicGrooming, Price: 30000},
			{Type: ItemTypeNailTrim, Price: 5000},
		},
	}
}

func TestNewQuoteRequest(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	req, err := NewQuoteRequest(customerID, validAttrs())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, req.ID)
	assert.Equal(t, customerID, req.CustomerID)
	assert.Equal(t, RequestStatusPending, req.Status)
	assert.Equal(t, ReviewStatusNotReviewed, req.ReviewStatus)
	assert.Equal(t, "trim please", req.Description)
	require.Len(t, req.Items, 2)
	assert.Equal(t, 0, req.Items[0].Position)
	assert.Equal(t, 1, req.Items[1].Position)
	assert.NotEqual(t, uuid.Nil, req.Items[0].ID)
	assert.Equal(t, int64(35000), req.EstimatedTotal())
}

func TestQuoteRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(a *QuoteRequestAttrs)
		wantErr error
	}{
		{"bad pet type", func(a *QuoteRequestAttrs) { a.Pet.Type = "FISH" }, ErrInvalidPetType},
		{"bad service type", func(a *QuoteRequestAttrs) { a.ServiceType = "PAINT" }, ErrInvalidServiceType},
		{"negative weight", func(a *QuoteRequestAttrs) { a.Pet.Weight = -1 }, ErrInvalidPetWeight},
		{"bad item type", func(a *QuoteRequestAttrs) { a.Items[0].Type = "X" }, ErrInvalidItemType},
		{"negative item price", func(a *QuoteRequestAttrs) { a.Items[1].Price = -1 }, ErrNegativeItemPrice},
		{"bad latitude", func(a *QuoteRequestAttrs) { a.Location.Latitude = 91 }, ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttrs()
			tt.mutate(&attrs)

			_, err := NewQuoteRequest(uuid.New(), attrs)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
		})
	}

	_, err := NewQuoteRequest(uuid.Nil, validAttrs())
	assert.ErrorIs(t, err, ErrEmptyCustomerID)
}

func TestRequestStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := map[RequestStatus][]RequestStatus{
		RequestStatusPending:  {RequestStatusOffered, RequestStatusCancelled},
		RequestStatusOffered:  {RequestStatusAccepted, RequestStatusCancelled},
		RequestStatusAccepted: {RequestStatusCompleted},
	}
	all := []RequestStatus{
		RequestStatusPending, RequestStatusOffered, RequestStatusAccepted,
		RequestStatusCompleted, RequestStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestQuoteRequestTransitionTo(t *testing.T) {
	t.Parallel()

	req, err := NewQuoteRequest(uuid.New(), validAttrs())
	require.NoError(t, err)

	require.NoError(t, req.TransitionTo(RequestStatusOffered))
	assert.ErrorIs(t, req.TransitionTo(RequestStatusPending), ErrInvalidState)
	require.NoError(t, req.TransitionTo(RequestStatusAccepted))
	assert.ErrorIs(t, req.TransitionTo(RequestStatusCancelled), ErrInvalidState)
	require.NoError(t, req.TransitionTo(RequestStatusCompleted))
	assert.ErrorIs(t, req.TransitionTo(RequestStatusCompleted), ErrInvalidState)
	assert.Equal(t, RequestStatusCompleted, req.Status)
}

func TestServiceTypeDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "기본 미용", ServiceTypeBasic.DisplayName())
	assert.Equal(t, "목욕", ServiceTypeBath.DisplayName())
	assert.Empty(t, ServiceType("UNKNOWN").DisplayName())
}
