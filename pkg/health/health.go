// Package health provides Kubernetes-style liveness and readiness probe
// endpoints. Registered checks run in a single background goroutine at a
// fixed interval; the HTTP handlers only read the last recorded results.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
)

// CheckFunc is a health check. It returns nil if the checked component is
// healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// GoroutineCountCheck reports unhealthy when the number of goroutines exceeds
// threshold. Useful as a liveness check to catch goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

type check struct {
	name    string
	fn      CheckFunc
	lastErr atomic.Pointer[error]
}

func (c *check) run(ctx context.Context) {
	err := c.fn(ctx)
	c.lastErr.Store(&err)
}

func (c *check) failure() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Health manages liveness and readiness checks for a service. The service
// starts not ready; call SetReady(true) once initialization completes and
// SetReady(false) when draining.
type Health struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates an empty Health instance.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness check. Register before Start.
func (h *Health) AddLivenessCheck(name string, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, &check{name: name, fn: fn})
}

// AddReadinessCheck registers a readiness check. Register before Start.
func (h *Health) AddReadinessCheck(name string, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, &check{name: name, fn: fn})
}

// Start runs all registered checks once immediately and then at the given
// interval until the context is cancelled or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append(append([]*check{}, h.liveness...), h.readiness...)
	h.mu.Unlock()

	runAll := func() {
		for _, c := range checks {
			c.run(ctx)
		}
	}
	runAll()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runAll()
			}
		}
	}()
}

// Stop cancels the background check goroutine. Safe to call multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and all readiness
// checks pass.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	return len(h.failures(h.readiness)) == 0
}

func (h *Health) failures(checks []*check) map[string]string {
	h.mu.Lock()
	snapshot := append([]*check{}, checks...)
	h.mu.Unlock()

	var out map[string]string
	for _, c := range snapshot {
		if err := c.failure(); err != nil {
			if out == nil {
				out = make(map[string]string)
			}
			out[c.name] = err.Error()
		}
	}
	return out
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 when all liveness checks pass, 503 with the
// failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(h.liveness))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness checks pass, 503 otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(h.readiness)
	if !h.ready.Load() {
		if failures == nil {
			failures = make(map[string]string)
		}
		failures["ready"] = "service not marked ready"
	}
	writeStatus(w, failures)
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	resp := statusResponse{Status: "ok"}
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
