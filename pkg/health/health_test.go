package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() CheckFunc {
	return func(_ context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	s := New()
	s.AddLivenessCheck("a", time.Second, passing())
	s.AddLivenessCheck("b", time.Second, passing())

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	s := New()
	s.AddLivenessCheck("mongo", time.Second, failing("connection refused"))

	// Drive the check past the failure threshold.
	ctx := context.Background()
	for range failureThreshold {
		s.liveness[0].run(ctx)
	}

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["mongo"])
}

func TestLiveEndpoint_FailureBelowThreshold(t *testing.T) {
	s := New()
	s.AddLivenessCheck("flaky", time.Second, failing("temporary"))

	ctx := context.Background()
	s.liveness[0].run(ctx)
	s.liveness[0].run(ctx)

	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code, "below threshold stays healthy")
}

func TestReadyEndpoint_Gate(t *testing.T) {
	s := New()
	s.AddReadinessCheck("redis", time.Second, passing())

	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "not ready before SetReady")
	assert.Contains(t, decodeStatus(t, w).Checks, "_readiness")

	s.SetReady(true)
	w = httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	s.SetReady(false)
	w = httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyEndpoint_OneFailingCheck(t *testing.T) {
	s := New()
	s.AddReadinessCheck("mongo", time.Second, passing())
	s.AddReadinessCheck("redis", time.Second, failing("pool exhausted"))
	s.SetReady(true)

	ctx := context.Background()
	for range failureThreshold {
		s.readiness[1].run(ctx)
	}

	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeStatus(t, w)
	assert.Contains(t, body.Checks, "redis")
	assert.NotContains(t, body.Checks, "mongo")
	assert.False(t, s.IsReady())
}

func TestCheckRecovery(t *testing.T) {
	down := true
	s := New()
	s.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})
	c := s.liveness[0]
	ctx := context.Background()

	for range failureThreshold {
		c.run(ctx)
	}
	assert.False(t, c.healthy.Load())

	down = false
	c.run(ctx)
	assert.True(t, c.healthy.Load(), "one success recovers the check")
}

func TestStartAndStop(t *testing.T) {
	s := New()
	s.AddLivenessCheck("goroutines", time.Second, passing())
	s.Start(context.Background(), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	s.AddLivenessCheck("a", time.Second, failing("err"))
	s.AddReadinessCheck("b", time.Second, passing())
	s.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				s.IsReady()
				s.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
				s.ReadyEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	s.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}
