package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/api"
	"github.com/teolgogo/quote-engine/internal/api/middleware"
	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/payment"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/platform/memory"
	"github.com/teolgogo/quote-engine/internal/service"
	"github.com/teolgogo/quote-engine/internal/service/auth"
)

// testServer runs the /api routes against real services on an in-memory
// database and the virtual payment gateway.
type testServer struct {
	t   *testing.T
	srv *httptest.Server
	db  *memory.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := logger.GetTestLogger(t)

	authCfg := config.AuthConfig{
		JWTSecret:                   strings.Repeat("k", 32),
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
		BCryptCost:                  4,
	}
	jwtSvc, err := auth.NewJWTService(authCfg)
	require.NoError(t, err)

	db := memory.New()
	stores := db.Stores()
	emitter := events.NopEmitter{}

	users := service.NewUserService(db, stores.Users, auth.NewBcryptHasher(authCfg.BCryptCost), log)
	quotes := service.NewQuoteService(db, stores, emitter, 5.0, log)
	payments := service.NewPaymentService(db, stores, payment.NewVirtualGateway("", log), emitter, "TEOLGOGO", log)
	reviews := service.NewReviewService(db, stores, emitter, log)
	stats := service.NewStatsService(stores, log)

	handlers := api.Handlers{
		Auth:     api.NewAuthHandler(users, jwtSvc, &authCfg, log),
		Users:    api.NewUserHandler(users, log),
		Quotes:   api.NewQuoteHandler(quotes, log),
		Payments: api.NewPaymentHandler(payments, log),
		Reviews:  api.NewReviewHandler(reviews, stats, log),
	}

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	r.Route("/api", api.Routes(handlers, middleware.NewAuthMiddleware(jwtSvc), nil))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, db: db}
}

// do sends body as JSON with an optional bearer token and decodes a JSON
// response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, s.srv.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// account is a registered user and its access token.
type account struct {
	ID    string
	Token string
}

func (s *testServer) register(email, role string, lat, lng *float64) account {
	s.t.Helper()
	body := map[string]any{
		"email":         email,
		"password":      "password123",
		"name":          email,
		"role":          role,
		"business_name": "샵 " + email,
	}
	if lat != nil {
		body["latitude"], body["longitude"] = *lat, *lng
	}

	var resp struct {
		User        struct{ ID string } `json:"user"`
		AccessToken string              `json:"access_token"`
	}
	require.Equal(s.t, http.StatusCreated, s.do(http.MethodPost, "/api/auth/register", "", body, &resp))
	return account{ID: resp.User.ID, Token: resp.AccessToken}
}

func ptr[T any](v T) *T { return &v }
