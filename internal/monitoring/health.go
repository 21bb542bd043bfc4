package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker reports the outcome of the most recent evaluation
type HealthChecker struct {
	mu             sync.RWMutex
	startTime      time.Time
	lastEvaluation time.Time
	strategy       string
	lastError      string
}

type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Strategy       string    `json:"strategy,omitempty"`
	LastEvaluation time.Time `json:"last_evaluation"`
	Uptime         string    `json:"uptime"`
	Error          string    `json:"error,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{startTime: time.Now()}
}

// MarkEvaluated records a successful evaluation of strategy
func (h *HealthChecker) MarkEvaluated(strategy string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.strategy = strategy
	h.lastEvaluation = time.Now()
	h.lastError = ""
}

// MarkFailed records a failed evaluation
func (h *HealthChecker) MarkFailed(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.lastError = err.Error()
	}
}

// Status returns the current health snapshot
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	switch {
	case h.lastError != "":
		status = "unhealthy"
	case h.lastEvaluation.IsZero():
		status = "starting"
	}

	return HealthStatus{
		Status:         status,
		Timestamp:      time.Now(),
		Strategy:       h.strategy,
		LastEvaluation: h.lastEvaluation,
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		Error:          h.lastError,
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	switch health.Status {
	case "unhealthy":
		w.WriteHeader(http.StatusInternalServerError)
	case "starting":
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// NewServeMux mounts the metrics handler on /metrics and health on /health
func NewServeMux(recorder *Recorder, health *HealthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	mux.Handle("/health", health)
	return mux
}
