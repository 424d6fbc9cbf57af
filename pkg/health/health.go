// Package health exposes liveness and readiness HTTP endpoints with
// pluggable dependency checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Check probes one dependency and returns nil when it is healthy.
type Check func(ctx context.Context) error

// Status is the health state of a component.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Report is the JSON body returned by the health endpoints.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency check.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler serves /health/live and /health/ready.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewHandler creates a health handler with no registered checks.
func NewHandler() *Handler {
	return &Handler{checks: make(map[string]Check)}
}

// Register adds a named dependency check used by readiness.
func (h *Handler) Register(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Live reports process liveness; it always returns 200.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, http.StatusOK, Report{Status: StatusUp, Timestamp: time.Now().UTC()})
}

// Ready runs every registered check with a 5s budget and returns 200 when
// all pass, 503 otherwise.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.mu.RLock()
	checks := make(map[string]Check, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	overall := StatusUp
	for name, check := range checks {
		if err := check(ctx); err != nil {
			results[name] = CheckResult{Status: StatusDown, Error: err.Error()}
			overall = StatusDown
		} else {
			results[name] = CheckResult{Status: StatusUp}
		}
	}

	status := http.StatusOK
	if overall == StatusDown {
		status = http.StatusServiceUnavailable
	}
	writeReport(w, status, Report{Status: overall, Timestamp: time.Now().UTC(), Checks: results})
}

func writeReport(w http.ResponseWriter, status int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
