package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/payment"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/platform/memory"
	"github.com/teolgogo/quote-engine/internal/service"
	"github.com/teolgogo/quote-engine/internal/service/auth"
	"github.com/teolgogo/quote-engine/internal/store"
)

// origin is where the test customer lives.
var origin = domain.Location{Latitude: 37.5, Longitude: 127.0}

// recordingEmitter collects published events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) count(t events.Type) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type testEnv struct {
	db       *memory.DB
	stores   store.Stores
	emitter  *recordingEmitter
	users    *service.UserServiceImpl
	quotes   *service.QuoteServiceImpl
	payments *service.PaymentServiceImpl
	reviews  *service.ReviewServiceImpl
	stats    *service.StatsServiceImpl

	customer *domain.User
	other    *domain.User
	nearBiz  *domain.User
	farBiz   *domain.User
}

// newTestEnv wires every service against one in-memory database. A nil
// gateway selects the virtual provider.
func newTestEnv(t *testing.T, gateway payment.Gateway) *testEnv {
	t.Helper()
	log, _ := logger.GetTestLogger(t)

	db := memory.New()
	stores := db.Stores()
	emitter := &recordingEmitter{}
	if gateway == nil {
		gateway = payment.NewVirtualGateway("", log)
	}

	env := &testEnv{
		db:       db,
		stores:   stores,
		emitter:  emitter,
		users:    service.NewUserService(db, stores.Users, auth.NewBcryptHasher(4), log),
		quotes:   service.NewQuoteService(db, stores, emitter, 5.0, log),
		payments: service.NewPaymentService(db, stores, gateway, emitter, "TEOLGOGO", log),
		reviews:  service.NewReviewService(db, stores, emitter, log),
		stats:    service.NewStatsService(stores, log),
	}

	env.customer = env.register(t, "customer@example.com", domain.RoleCustomer, nil)
	env.other = env.register(t, "other@example.com", domain.RoleCustomer, nil)
	env.nearBiz = env.register(t, "near@example.com", domain.RoleBusiness,
		&domain.Location{Latitude: 37.5, Longitude: 127.01})
	env.farBiz = env.register(t, "far@example.com", domain.RoleBusiness,
		&domain.Location{Latitude: 37.6, Longitude: 127.0})
	return env
}

func (e *testEnv) register(t *testing.T, email string, role domain.Role, loc *domain.Location) *domain.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), service.RegisterInput{
		Email:        email,
		Password:     "password123",
		Name:         email,
		Role:         role,
		BusinessName: "샵 " + email,
		Location:     loc,
	})
	require.NoError(t, err)
	return u
}

func actorOf(u *domain.User) domain.Actor {
	return domain.Actor{UserID: u.ID, Role: u.Role}
}

func (e *testEnv) createRequest(t *testing.T) *domain.QuoteRequest {
	t.Helper()
	loc := origin
	req, err := e.quotes.CreateRequest(context.Background(), actorOf(e.customer), domain.QuoteRequestAttrs{
		Pet:         domain.Pet{Type: domain.PetTypeDog, Breed: "말티즈", Age: 2, Weight: 3.1},
		ServiceType: domain.ServiceTypeBasic,
		Location:    &loc,
		Address:     "서울시 강남구",
		Items: []domain.QuoteItem{
			{Type: domain.ItemTypeBasicGrooming, Price: 25000},
			{Type: domain.ItemTypeNailTrim, Price: 5000},
		},
	})
	require.NoError(t, err)
	return req
}

func (e *testEnv) submitOffer(t *testing.T, business *domain.User, requestID uuid.UUID, price int64) *domain.QuoteResponse {
	t.Helper()
	offer, err := e.quotes.SubmitOffer(context.Background(), actorOf(business), requestID, domain.OfferAttrs{
		Price:       price,
		Description: "기본 미용 + 발톱 정리",
	})
	require.NoError(t, err)
	return offer
}

// payFor prepares and confirms a payment for offer as the test customer.
func (e *testEnv) payFor(t *testing.T, offer *domain.QuoteResponse) *domain.Payment {
	t.Helper()
	ctx := context.Background()
	prepared, err := e.payments.PreparePayment(ctx, actorOf(e.customer), offer.ID, domain.PaymentMethodCard)
	require.NoError(t, err)

	p, err := e.payments.ConfirmPayment(ctx, actorOf(e.customer), service.ConfirmInput{
		PaymentKey: "VIRTUAL_test",
		OrderID:    prepared.Payment.OrderID,
		Amount:     prepared.Payment.Amount,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) user(t *testing.T, id uuid.UUID) *domain.User {
	t.Helper()
	u, err := e.stores.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) request(t *testing.T, id uuid.UUID) *domain.QuoteRequest {
	t.Helper()
	r, err := e.stores.QuoteRequests.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (e *testEnv) offer(t *testing.T, id uuid.UUID) *domain.QuoteResponse {
	t.Helper()
	o, err := e.stores.QuoteResponses.GetByID(context.Background(), id)
	require.NoError(t, err)
	return o
}
