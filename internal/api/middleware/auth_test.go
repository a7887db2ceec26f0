package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/api/middleware"
	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/mocks"
	"github.com/teolgogo/quote-engine/internal/service/auth"
)

func newJWT(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   strings.Repeat("s", 32),
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
	})
	require.NoError(t, err)
	return svc
}

// actorEcho writes the authenticated actor back as JSON.
var actorEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"user_id": actor.UserID.String(),
		"role":    string(actor.Role),
	})
})

func TestAuthenticate(t *testing.T) {
	jwtSvc := newJWT(t)
	userID := uuid.New()

	access, err := jwtSvc.GenerateToken(context.Background(), userID, domain.RoleBusiness)
	require.NoError(t, err)
	refresh, err := jwtSvc.GenerateRefreshToken(context.Background(), userID, domain.RoleBusiness)
	require.NoError(t, err)

	handler := middleware.NewAuthMiddleware(jwtSvc).Authenticate(actorEcho)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "valid token", header: "Bearer " + access, wantStatus: http.StatusOK},
		{name: "lower case scheme", header: "bearer " + access, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantError: "Authorization header required"},
		{name: "basic scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "no token", header: "Bearer", wantStatus: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantError: "Invalid token"},
		{name: "refresh token", header: "Bearer " + refresh, wantStatus: http.StatusUnauthorized, wantError: "Invalid token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/offers/mine", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantError != "" {
				var resp shared.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tc.wantError, resp.Error)
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, userID.String(), body["user_id"])
			assert.Equal(t, "BUSINESS", body["role"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := middleware.RequireRole(domain.RoleBusiness, domain.RoleAdmin)(ok)

	tests := []struct {
		name       string
		actor      *domain.Actor
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "customer", actor: &domain.Actor{UserID: uuid.New(), Role: domain.RoleCustomer}, wantStatus: http.StatusForbidden},
		{name: "business", actor: &domain.Actor{UserID: uuid.New(), Role: domain.RoleBusiness}, wantStatus: http.StatusNoContent},
		{name: "admin", actor: &domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, wantStatus: http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/offers/mine", nil)
			if tc.actor != nil {
				req = req.WithContext(shared.WithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestAuthenticateValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "expired", err: auth.ErrExpiredToken, wantStatus: http.StatusUnauthorized},
		{name: "wrong type", err: auth.ErrWrongTokenType, wantStatus: http.StatusUnauthorized},
		{name: "unexpected", err: errors.New("key store unavailable"), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jwtSvc := &mocks.MockJWTService{ValidateErr: tc.err}
			handler := middleware.NewAuthMiddleware(jwtSvc).Authenticate(actorEcho)

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			req.Header.Set("Authorization", "Bearer opaque")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
