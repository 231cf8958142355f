// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically in the background. A check flips to
// unhealthy only after three consecutive failures, so a single slow probe
// does not bounce the pod.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const failureThreshold = 3

// check holds one registered probe and its state. The fails counter is only
// touched by the scheduler goroutine; healthy and lastErr are read from HTTP
// handlers and therefore atomic.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]
	fails   int
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.healthy.Store(true)
}

func (c *check) failure() string {
	if c.healthy.Load() {
		return ""
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error()
	}
	return "check is unhealthy"
}

// Service manages the probe set for one process. It starts not ready; call
// SetReady(true) after initialization and SetReady(false) when draining.
type Service struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates an empty, not-ready probe service.
func New() *Service {
	return &Service{}
}

func newCheck(name string, timeout time.Duration, fn CheckFunc) *check {
	c := &check{name: name, timeout: timeout, fn: fn}
	// Healthy until proven otherwise, so registration order cannot cause a
	// spurious not-ready window.
	c.healthy.Store(true)
	return c
}

// AddLivenessCheck registers a process-level probe (goroutine leaks, GC
// pressure). A failing liveness check means the process should be restarted.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, newCheck(name, timeout, fn))
}

// AddReadinessCheck registers a dependency probe (database, cache, broker).
// A failing readiness check takes the instance out of rotation.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, newCheck(name, timeout, fn))
}

// Start runs every registered check once immediately, then on each interval
// tick, until the context is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := make([]*check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for _, c := range checks {
			c.run(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.run(ctx)
				}
			}
		}
	}()
}

// Stop cancels the background scheduler. Safe to call repeatedly.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness check
// is passing.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	s.mu.RLock()
	checks := s.readiness
	s.mu.RUnlock()

	for _, c := range checks {
		if !c.healthy.Load() {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness checks pass, 503 with
// per-check failure details otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	checks := s.liveness
	s.mu.RUnlock()

	writeStatus(w, collectFailures(checks))
}

// ReadyEndpoint serves /readyz: 200 only when the service is marked ready
// and all readiness checks pass.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	checks := s.readiness
	s.mu.RUnlock()

	failures := collectFailures(checks)
	if !s.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

func collectFailures(checks []*check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		if msg := c.failure(); msg != "" {
			failures[c.name] = msg
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	status := http.StatusOK
	if len(failures) > 0 {
		resp = statusResponse{Status: "unhealthy", Checks: failures}
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
