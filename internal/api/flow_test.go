package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/service"
)

func quoteBody() map[string]any {
	return map[string]any{
		"pet":          map[string]any{"type": "DOG", "breed": "말티즈", "age": 2, "weight": 3.1},
		"service_type": "BASIC",
		"latitude":     37.5,
		"longitude":    127.0,
		"address":      "서울시 강남구",
		"items": []map[string]any{
			{"type": "BASIC_GROOMING", "price": 25000},
			{"type": "NAIL_TRIM", "price": 5000},
		},
	}
}

func TestMarketplaceFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	customer := s.register("customer@example.com", "CUSTOMER", nil, nil)
	near := s.register("near@example.com", "BUSINESS", ptr(37.5), ptr(127.01))
	far := s.register("far@example.com", "BUSINESS", ptr(37.6), ptr(127.0))

	// post a request
	var req domain.QuoteRequest
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/quotes", customer.Token, quoteBody(), &req))
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Len(t, req.Items, 2)

	// discovery is radius bound and business only
	var nearby []domain.QuoteRequest
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/quotes/available", near.Token, nil, &nearby))
	require.Len(t, nearby, 1)
	assert.Equal(t, req.ID, nearby[0].ID)

	var farList []domain.QuoteRequest
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/quotes/available", far.Token, nil, &farList))
	assert.Empty(t, farList)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/quotes/available?radius=20", far.Token, nil, &farList))
	assert.Len(t, farList, 1)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/quotes/available", customer.Token, nil, nil))

	// offers
	offerPath := "/api/quotes/" + req.ID.String() + "/offers"
	var offer domain.QuoteResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, offerPath, near.Token,
		map[string]any{"price": 30000, "description": "기본 미용"}, &offer))
	assert.Equal(t, domain.OfferStatusPending, offer.Status)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, offerPath, near.Token,
		map[string]any{"price": 28000}, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, offerPath, far.Token,
		map[string]any{"price": 0}, nil))

	var details service.RequestDetails
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/quotes/"+req.ID.String(), customer.Token, nil, &details))
	assert.Equal(t, domain.RequestStatusOffered, details.Request.Status)
	assert.Len(t, details.Offers, 1)

	// payment
	var prepared service.PreparedPayment
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/payments/prepare", customer.Token,
		map[string]any{"quote_response_id": offer.ID, "method": "CARD"}, &prepared))
	assert.Equal(t, domain.PaymentStatusReady, prepared.Payment.Status)
	assert.Equal(t, int64(30000), prepared.Handle.Amount)

	confirmPath := "/api/payments/confirm"
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, confirmPath, customer.Token,
		map[string]any{"payment_key": "VIRTUAL_k", "order_id": prepared.Payment.OrderID, "amount": 1000}, nil))

	var paid domain.Payment
	confirm := map[string]any{"payment_key": "VIRTUAL_k", "order_id": prepared.Payment.OrderID, "amount": 30000}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, confirmPath, customer.Token, confirm, &paid))
	assert.Equal(t, domain.PaymentStatusDone, paid.Status)

	var again domain.Payment
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, confirmPath, customer.Token, confirm, &again))
	assert.Equal(t, paid.ID, again.ID)

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/quotes/"+req.ID.String(), customer.Token, nil, &details))
	assert.Equal(t, domain.RequestStatusAccepted, details.Request.Status)

	// completion
	var done domain.QuoteResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/offers/"+offer.ID.String()+"/complete", near.Token,
		map[string]any{"before_photo_refs": []string{"b1"}, "after_photo_refs": []string{"a1"}}, &done))
	assert.Equal(t, []string{"a1"}, done.AfterPhotoRefs)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/offers/"+offer.ID.String()+"/complete", customer.Token,
		map[string]any{}, nil))

	// review
	var review domain.Review
	reviewBody := map[string]any{"quote_response_id": offer.ID, "rating": 5, "content": "최고", "tags": []string{"친절"}}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/reviews", customer.Token, reviewBody, &review))
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/reviews", customer.Token, reviewBody, nil))

	var listed []domain.Review
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/businesses/"+near.ID+"/reviews?sort=best", "", nil, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, review.ID, listed[0].ID)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/businesses/"+near.ID+"/reviews?sort=worst", "", nil, nil))

	var stats service.BusinessStats
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/businesses/"+near.ID+"/stats", near.Token, nil, &stats))
	assert.Equal(t, int64(30000), stats.Revenue)
	assert.Equal(t, 1, stats.CompletedServices)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/businesses/"+near.ID+"/stats", customer.Token, nil, nil))

	// refund
	var mine []domain.Payment
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/payments/mine", near.Token, nil, &mine))
	require.Len(t, mine, 1)

	cancelPath := "/api/payments/" + paid.ID.String() + "/cancel"
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, cancelPath, customer.Token, map[string]any{}, nil))
	var refunded domain.Payment
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, cancelPath, customer.Token,
		map[string]any{"reason": "일정 변경"}, &refunded))
	assert.Equal(t, domain.PaymentStatusCanceled, refunded.Status)

	var current domain.Payment
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/payments/offer/"+offer.ID.String(), customer.Token, nil, &current))
	assert.Equal(t, domain.PaymentStatusCanceled, current.Status)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("customer@example.com", "CUSTOMER", nil, nil)

	tests := []struct {
		name       string
		path       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "duplicate email",
			path:       "/api/auth/register",
			body:       map[string]any{"email": "customer@example.com", "password": "password123", "name": "x", "role": "CUSTOMER"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "admin self registration",
			path:       "/api/auth/register",
			body:       map[string]any{"email": "a@example.com", "password": "password123", "name": "x", "role": "ADMIN"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "business without name",
			path:       "/api/auth/register",
			body:       map[string]any{"email": "b@example.com", "password": "password123", "name": "x", "role": "BUSINESS"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			path:       "/api/auth/register",
			body:       map[string]any{"email": "c@example.com", "password": "short", "name": "x", "role": "CUSTOMER"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "login",
			path:       "/api/auth/login",
			body:       map[string]any{"email": "customer@example.com", "password": "password123"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			path:       "/api/auth/login",
			body:       map[string]any{"email": "customer@example.com", "password": "password124"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			path:       "/api/auth/login",
			body:       map[string]any{"email": "nobody@example.com", "password": "password123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad refresh token",
			path:       "/api/auth/refresh",
			body:       map[string]any{"refresh_token": "nope"},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, s.do(http.MethodPost, tc.path, "", tc.body, nil))
		})
	}
}

func TestRefreshAndProfile(t *testing.T) {
	s := newTestServer(t)
	s.register("biz@example.com", "BUSINESS", nil, nil)

	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    string `json:"expires_at"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", "",
		map[string]any{"email": "biz@example.com", "password": "password123"}, &login))
	assert.NotEmpty(t, login.ExpiresAt)

	// an access token is not a refresh token
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/refresh", "",
		map[string]any{"refresh_token": login.AccessToken}, nil))

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/refresh", "",
		map[string]any{"refresh_token": login.RefreshToken}, &refreshed))

	var me domain.User
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/me", refreshed.AccessToken, nil, &me))
	assert.Equal(t, domain.RoleBusiness, me.Role)
	assert.Nil(t, me.Location)

	var moved domain.User
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/me/location", refreshed.AccessToken,
		map[string]any{"latitude": 37.55, "longitude": 126.98, "address": "서울시 중구"}, &moved))
	require.NotNil(t, moved.Location)
	assert.InDelta(t, 37.55, moved.Location.Latitude, 1e-9)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/me/location", refreshed.AccessToken,
		map[string]any{"latitude": 91.0, "longitude": 126.98}, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", "", nil, nil))
}

func TestPathAndQueryValidation(t *testing.T) {
	s := newTestServer(t)
	customer := s.register("customer@example.com", "CUSTOMER", nil, nil)
	biz := s.register("biz@example.com", "BUSINESS", nil, nil)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/quotes/not-a-uuid", customer.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/quotes/"+biz.ID, customer.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/quotes/available?lat=north", biz.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/businesses/"+biz.ID+"/reviews?limit=x", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/businesses/"+customer.ID+"/reviews", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/quotes", customer.Token,
		map[string]any{"pet": map[string]any{"type": "DOG"}, "service_type": "BASIC", "unknown": 1}, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/quotes", customer.Token,
		map[string]any{"pet": map[string]any{"type": "FISH"}, "service_type": "BASIC"}, nil))
}
