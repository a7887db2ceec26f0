package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOffer(t *testing.T, price int64) *QuoteResponse {
	t.Helper()
	offer, err := NewQuoteResponse(uuid.New(), uuid.New(), OfferAttrs{Price: price})
	require.NoError(t, err)
	return offer
}

func TestNewQuoteResponse(t *testing.T) {
	t.Parallel()

	offer := newTestOffer(t, 42000)
	assert.Equal(t, OfferStatusPending, offer.Status)
	assert.Equal(t, OfferNotPaid, offer.PaymentStatus)

	_, err := NewQuoteResponse(uuid.New(), uuid.New(), OfferAttrs{Price: 0})
	assert.ErrorIs(t, err, ErrNonPositivePrice)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPaymentLifecycle(t *testing.T) {
	t.Parallel()

	offer := newTestOffer(t, 42000)
	customerID := uuid.New()

	p, err := NewPayment("TEOLGOGO_abc", offer, customerID, PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusReady, p.Status)
	assert.Equal(t, offer.Price, p.Amount)
	assert.Equal(t, offer.BusinessID, p.BusinessID)

	assert.ErrorIs(t, p.Cancel("early", time.Now()), ErrInvalidState)

	now := time.Now()
	require.NoError(t, p.Complete("pk_1", "https://receipt", now))
	assert.Equal(t, PaymentStatusDone, p.Status)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, "pk_1", p.PaymentKey)

	assert.ErrorIs(t, p.Complete("pk_2", "", now), ErrInvalidState)

	require.NoError(t, p.Cancel("customer request", now))
	assert.Equal(t, PaymentStatusCanceled, p.Status)
	assert.ErrorIs(t, p.Cancel("again", now), ErrInvalidState)
	assert.ErrorIs(t, p.Expire(now), ErrInvalidState)
}

func TestPaymentExpire(t *testing.T) {
	t.Parallel()

	p, err := NewPayment("TEOLGOGO_exp", newTestOffer(t, 10000), uuid.New(), PaymentMethodKakaoPay)
	require.NoError(t, err)

	require.NoError(t, p.Expire(time.Now()))
	assert.Equal(t, PaymentStatusExpired, p.Status)
	assert.ErrorIs(t, p.Complete("pk_1", "", time.Now()), ErrInvalidState)
}

func TestNewPaymentValidation(t *testing.T) {
	t.Parallel()

	offer := newTestOffer(t, 1000)

	_, err := NewPayment("", offer, uuid.New(), PaymentMethodCard)
	assert.ErrorIs(t, err, ErrEmptyOrderID)

	_, err = NewPayment("order", offer, uuid.New(), "BITCOIN")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = NewPayment("order", offer, uuid.Nil, PaymentMethodCard)
	assert.ErrorIs(t, err, ErrEmptyCustomerID)
}
