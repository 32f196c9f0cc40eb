// Package health serves liveness, readiness and status probes.
package health

import (
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"courthouse/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func() error

// StatsFunc reports counters shown on the status endpoint.
type StatsFunc func() map[string]int

type Handler struct {
	started     time.Time
	environment string
	now         func() time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc
	stats  StatsFunc
}

func New(environment string) *Handler {
	return &Handler{
		started:     time.Now(),
		environment: environment,
		now:         time.Now,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a readiness check. Registering a name twice replaces it.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// SetStats attaches the counters reported by /health.
func (h *Handler) SetStats(stats StatsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = stats
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleReadiness runs every check in name order; any failure is a 503.
func (h *Handler) HandleReadiness(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	checks := maps.Clone(h.checks)
	h.mu.RUnlock()

	res := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
	status := http.StatusOK
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		if err := checks[name](); err != nil {
			res.Checks[name] = "down: " + err.Error()
			res.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "up"
	}
	httputil.WriteJSON(w, status, res)
}

type StatusResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Environment   string         `json:"environment"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Timestamp     string         `json:"timestamp"`
	Court         map[string]int `json:"court,omitempty"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	stats := h.stats
	h.mu.RUnlock()

	now := h.now()
	res := StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(now.Sub(h.started).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
	if stats != nil {
		res.Court = stats()
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
