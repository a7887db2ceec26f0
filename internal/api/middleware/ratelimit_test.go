package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teolgogo/quote-engine/internal/api/middleware"
	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/domain"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Take(ctx context.Context, key string) (middleware.Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(middleware.Decision), args.Error(1)
}

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRateLimitPassthroughWithoutLimiter(t *testing.T) {
	rec := httptest.NewRecorder()
	middleware.RateLimit(nil, 10)(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quotes", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit(t *testing.T) {
	actor := domain.Actor{UserID: uuid.New(), Role: domain.RoleCustomer}
	userKey := middleware.RateLimitKeyPrefix + ":user:" + actor.UserID.String() + ":POST"
	ipKey := middleware.RateLimitKeyPrefix + ":ip:192.0.2.1:POST"

	t.Run("allowed request carries quota headers", func(t *testing.T) {
		lim := &mockLimiter{}
		lim.On("Take", mock.Anything, userKey).Return(middleware.Decision{Allowed: true, Remaining: 4}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/quotes", nil)
		req = req.WithContext(shared.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()
		middleware.RateLimit(lim, 5)(noContent).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		lim.AssertExpectations(t)
	})

	t.Run("exhausted bucket is rejected", func(t *testing.T) {
		lim := &mockLimiter{}
		lim.On("Take", mock.Anything, ipKey).
			Return(middleware.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil)

		rec := httptest.NewRecorder()
		middleware.RateLimit(lim, 5)(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quotes", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("Retry-After"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		lim := &mockLimiter{}
		lim.On("Take", mock.Anything, ipKey).Return(middleware.Decision{}, errors.New("connection refused"))

		rec := httptest.NewRecorder()
		middleware.RateLimit(lim, 5)(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/quotes", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

// fakeScripter answers EvalSha with a canned token bucket result.
type fakeScripter struct {
	result []any
	err    error
	keys   []string
	args   []any
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, "", keys, args...)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.keys, f.args = keys, args
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(f.result)
	return cmd
}

func (f *fakeScripter) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return f.Eval(ctx, script, keys, args...)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, sha1, keys, args...)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 3, RefillPerSecond: 2, TTL: time.Minute}

	t.Run("decodes script result", func(t *testing.T) {
		rdb := &fakeScripter{result: []any{int64(0), int64(0), int64(350)}}
		lim := middleware.NewRedisLimiter(rdb, cfg)

		d, err := lim.Take(context.Background(), "k")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 350*time.Millisecond, d.RetryAfter)
		assert.Equal(t, 3, lim.Capacity())

		assert.Equal(t, []string{"k"}, rdb.keys)
		require.Len(t, rdb.args, 4)
		assert.Equal(t, 3, rdb.args[1])
		assert.Equal(t, int64(500), rdb.args[2])
		assert.Equal(t, int64(60), rdb.args[3])
	})

	t.Run("allowed", func(t *testing.T) {
		lim := middleware.NewRedisLimiter(&fakeScripter{result: []any{int64(1), int64(2), int64(0)}}, cfg)
		d, err := lim.Take(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(2), d.Remaining)
	})

	t.Run("redis error", func(t *testing.T) {
		lim := middleware.NewRedisLimiter(&fakeScripter{err: errors.New("dial tcp: refused")}, cfg)
		_, err := lim.Take(context.Background(), "k")
		assert.Error(t, err)
	})

	t.Run("malformed result", func(t *testing.T) {
		lim := middleware.NewRedisLimiter(&fakeScripter{result: []any{int64(1)}}, cfg)
		_, err := lim.Take(context.Background(), "k")
		assert.Error(t, err)
	})
}
