package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/service"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	biz, err := env.users.Register(ctx, service.RegisterInput{
		Email:        "  Groomer@Example.com ",
		Password:     "password123",
		Name:         "김미용",
		Role:         domain.RoleBusiness,
		BusinessName: " 멍멍살롱 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "groomer@example.com", biz.Email)
	assert.Equal(t, "멍멍살롱", biz.BusinessName)
	assert.Equal(t, "멍멍살롱", biz.DisplayName())
	assert.Empty(t, biz.Password)
	assert.NotEmpty(t, biz.HashedPassword)

	tests := []struct {
		name    string
		input   service.RegisterInput
		wantErr error
	}{
		{
			name:    "duplicate email",
			input:   service.RegisterInput{Email: "groomer@example.com", Password: "password123", Role: domain.RoleCustomer},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "admin self registration",
			input:   service.RegisterInput{Email: "admin@example.com", Password: "password123", Role: domain.RoleAdmin},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "short password",
			input:   service.RegisterInput{Email: "short@example.com", Password: "abc", Role: domain.RoleCustomer},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "long password",
			input:   service.RegisterInput{Email: "long@example.com", Password: strings.Repeat("a", 73), Role: domain.RoleCustomer},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "bad email",
			input:   service.RegisterInput{Email: "nobody", Password: "password123", Role: domain.RoleCustomer},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name: "bad location",
			input: service.RegisterInput{
				Email: "pole@example.com", Password: "password123", Role: domain.RoleBusiness,
				Location: &domain.Location{Latitude: 91, Longitude: 0},
			},
			wantErr: domain.ErrInvalidArgument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.users.Register(ctx, tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	u, err := env.users.Authenticate(ctx, "Customer@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, env.customer.ID, u.ID)

	_, err = env.users.Authenticate(ctx, "customer@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.users.Authenticate(ctx, "ghost@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateLocation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	updated, err := env.users.UpdateLocation(ctx, actorOf(env.farBiz),
		domain.Location{Latitude: 37.501, Longitude: 127.0}, "서울시 서초구")
	require.NoError(t, err)
	assert.Equal(t, "서울시 서초구", updated.Address)

	got, err := env.users.GetUser(ctx, env.farBiz.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 37.501, got.Location.Latitude, 1e-9)

	_, err = env.users.UpdateLocation(ctx, actorOf(env.farBiz), domain.Location{Latitude: 0, Longitude: 200}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
