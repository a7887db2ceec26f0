//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/platform/postgres"
	"github.com/teolgogo/quote-engine/internal/service"
	"github.com/teolgogo/quote-engine/internal/service/auth"
	"github.com/teolgogo/quote-engine/internal/store"
	"github.com/teolgogo/quote-engine/internal/testdb"
)

type noopEmitter struct{}

func (noopEmitter) EmitEvent(context.Context, *events.Event) error { return nil }

type pgEnv struct {
	quotes   *service.QuoteServiceImpl
	users    *service.UserServiceImpl
	stores   store.Stores
	customer domain.Actor
	bizA     domain.Actor
	bizB     domain.Actor
}

func newPGEnv(t *testing.T) *pgEnv {
	t.Helper()
	sqlDB := testdb.Open(t)
	testdb.Reset(t, sqlDB)

	log, _ := logger.GetTestLogger(t)
	db := postgres.NewDB(sqlDB, log)
	stores := db.Stores()

	env := &pgEnv{
		quotes: service.NewQuoteService(db, stores, noopEmitter{}, 5, log),
		users:  service.NewUserService(db, stores.Users, auth.NewBcryptHasher(4), log),
		stores: stores,
	}
	env.customer = env.register(t, "customer@example.com", domain.RoleCustomer)
	env.bizA = env.register(t, "a@example.com", domain.RoleBusiness)
	env.bizB = env.register(t, "b@example.com", domain.RoleBusiness)
	return env
}

func (e *pgEnv) register(t *testing.T, email string, role domain.Role) domain.Actor {
	t.Helper()
	u, err := e.users.Register(context.Background(), service.RegisterInput{
		Email:        email,
		Password:     "password123",
		Name:         email,
		Role:         role,
		BusinessName: "샵 " + email,
		Location:     &domain.Location{Latitude: 37.5, Longitude: 127.0},
	})
	require.NoError(t, err)
	return domain.Actor{UserID: u.ID, Role: u.Role}
}

func (e *pgEnv) newRequest(t *testing.T) *domain.QuoteRequest {
	t.Helper()
	req, err := e.quotes.CreateRequest(context.Background(), e.customer, domain.QuoteRequestAttrs{
		Pet:         domain.Pet{Type: domain.PetTypeDog, Breed: "포메라니안", Age: 4, Weight: 2.5},
		ServiceType: domain.ServiceTypeStyling,
		Location:    &domain.Location{Latitude: 37.5, Longitude: 127.0},
		Items:       []domain.QuoteItem{{Type: domain.ItemTypeStyling, Price: 40000}},
	})
	require.NoError(t, err)
	return req
}

func TestPostgresAcceptOfferRace(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	req := env.newRequest(t)

	a, err := env.quotes.SubmitOffer(ctx, env.bizA, req.ID, domain.OfferAttrs{Price: 40000})
	require.NoError(t, err)
	b, err := env.quotes.SubmitOffer(ctx, env.bizB, req.ID, domain.OfferAttrs{Price: 38000})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, offerID := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, offerID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.quotes.AcceptOffer(ctx, env.customer, req.ID, offerID)
		}(i, offerID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	require.Equal(t, 1, succeeded)

	offers, err := env.stores.QuoteResponses.ListByRequest(ctx, req.ID)
	require.NoError(t, err)
	accepted := 0
	for _, o := range offers {
		if o.Status == domain.OfferStatusAccepted {
			accepted++
		} else {
			assert.Equal(t, domain.OfferStatusRejected, o.Status)
		}
	}
	assert.Equal(t, 1, accepted)

	stored, err := env.stores.QuoteRequests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, stored.Status)
}

func TestPostgresSubmitOfferUniquePerBusiness(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	req := env.newRequest(t)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.quotes.SubmitOffer(ctx, env.bizA, req.ID, domain.OfferAttrs{Price: int64(30000 + i)})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
}

func TestPostgresQuoteRequestRollback(t *testing.T) {
	sqlDB := testdb.Open(t)
	testdb.Reset(t, sqlDB)
	ctx := context.Background()

	testdb.WithTx(t, sqlDB, func(t *testing.T, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		requests := postgres.NewPostgresQuoteRequestStore(tx, nil)

		u, err := domain.NewUser("rollback@example.com", "password123", "rollback", domain.RoleCustomer)
		require.NoError(t, err)
		u.HashedPassword = "$2a$04$hash"
		u.Password = ""
		require.NoError(t, users.Create(ctx, u))

		req, err := domain.NewQuoteRequest(u.ID, domain.QuoteRequestAttrs{
			Pet:         domain.Pet{Type: domain.PetTypeCat},
			ServiceType: domain.ServiceTypeBath,
			Items:       []domain.QuoteItem{{Type: domain.ItemTypeBath, Price: 20000}},
		})
		require.NoError(t, err)
		require.NoError(t, requests.Create(ctx, req))

		got, err := requests.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 1)
	})

	var count int
	require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM quote_requests").Scan(&count))
	assert.Zero(t, count)
}
