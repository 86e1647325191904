package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func probeOf(t *testing.T, h *Health, name string) *probe {
	t.Helper()
	for _, p := range h.snapshot() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no probe %q", name)
	return nil
}

// --- Tests ---

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.Register(Check{Name: "ok", Kind: Liveness, Func: passing()})
	h.Register(Check{Name: "db", Kind: Liveness, Func: failing("connection refused")})

	t.Run("healthy until threshold", func(t *testing.T) {
		db := probeOf(t, h, "db")
		db.run(context.Background(), h.threshold)
		db.run(context.Background(), h.threshold)

		rec := serve(h.LiveEndpoint)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("unhealthy after threshold", func(t *testing.T) {
		probeOf(t, h, "db").run(context.Background(), h.threshold)

		rec := serve(h.LiveEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"db":"connection refused"}}`, rec.Body.String())
	})
}

func TestRecoveryAfterSuccess(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	h := New(WithFailureThreshold(1))
	h.Register(Check{Name: "flaky", Kind: Liveness, Func: func(context.Context) error {
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	}})
	p := probeOf(t, h, "flaky")

	p.run(context.Background(), h.threshold)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h.LiveEndpoint).Code)

	fail.Store(false)
	p.run(context.Background(), h.threshold)
	assert.Equal(t, http.StatusOK, serve(h.LiveEndpoint).Code)
}

func TestReadyEndpoint(t *testing.T) {
	h := New(WithFailureThreshold(1))
	h.Register(Check{Name: "catalog", Kind: Readiness, Func: failing("no products")})
	h.Register(Check{Name: "live", Kind: Liveness, Func: failing("ignored by readyz")})

	rec := serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, rec.Body.String())

	h.SetReady(true)
	assert.True(t, h.Ready())
	assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)

	probeOf(t, h, "catalog").run(context.Background(), h.threshold)
	assert.False(t, h.Ready())
	rec = serve(h.ReadyEndpoint)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"catalog":"no products"}}`, rec.Body.String())
}

func TestRun(t *testing.T) {
	h := New(WithFailureThreshold(1))
	var calls atomic.Int32
	h.Register(Check{Name: "count", Kind: Readiness, Func: func(context.Context) error {
		calls.Add(1)
		return errors.New("failing")
	}})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, h.Run(ctx, 10*time.Millisecond))
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	h.SetReady(true)
	assert.False(t, h.Ready())

	cancel()
	wg.Wait()
}

func TestRun_NoChecks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, New().Run(ctx, time.Millisecond))
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, GoroutineCountCheck(1_000_000)(ctx))
	require.Error(t, GoroutineCountCheck(0)(ctx))

	require.NoError(t, NonEmpty("products", func(context.Context) (int, error) { return 2, nil })(ctx))
	require.EqualError(t, NonEmpty("products", func(context.Context) (int, error) { return 0, nil })(ctx), "no products")
	require.Error(t, NonEmpty("products", func(context.Context) (int, error) { return 0, errors.New("db") })(ctx))
}
