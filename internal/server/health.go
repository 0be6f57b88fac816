package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusMissing      = "missing"
)

// HealthChecker serves the probe endpoints of the streamable HTTP transport.
// A missing Google token does not make the server unready; the tools
// report it per call.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker returns a HealthChecker that starts out ready.
// sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady flips the readiness state, e.g. while draining on shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) shuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	// Requests is the number of scheduling requests held in memory.
	Requests int `json:"scheduling_requests"`
	// RequestsByStatus breaks Requests down by request status.
	RequestsByStatus map[string]int `json:"scheduling_requests_by_status,omitempty"`
	// GoogleToken reports whether the default account has a token.
	GoogleToken string `json:"google_token,omitempty"`
}

// status returns the overall probe status and the individual checks.
func (h *HealthChecker) status() (string, map[string]string) {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status := healthStatusOK
	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.shuttingDown() {
		checks["shutdown"] = healthStatusShuttingDown
		status = healthStatusShuttingDown
	}
	return status, checks
}

func writeHealth(w http.ResponseWriter, status string, body any) {
	w.Header().Set("Content-Type", "application/json")
	if status == healthStatusOK {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler serves /healthz. It only fails when the process is gone.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, healthStatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz. It answers 503 once the server is
// marked unready or its context is shutting down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.status()
		resp := HealthResponse{Status: status, Checks: checks}
		if status != healthStatusOK {
			resp.Status = healthStatusNotReady
		}
		writeHealth(w, status, resp)
	})
}

// DetailedHealthHandler serves /healthz/detailed with the scheduling
// request counts and the token state of the default account.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, _ := h.status()
		resp := DetailedHealthResponse{
			Status: status,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if sc := h.serverContext; sc != nil {
			requests := sc.Store().List()
			resp.Requests = len(requests)
			if len(requests) > 0 {
				resp.RequestsByStatus = make(map[string]int)
				for _, r := range requests {
					resp.RequestsByStatus[string(r.Status)]++
				}
			}
			resp.GoogleToken = healthStatusMissing
			if sc.HasTokenForAccount(sc.Settings().DefaultAccount) {
				resp.GoogleToken = healthStatusOK
			}
		}
		writeHealth(w, status, resp)
	})
}

// RegisterHealthEndpoints mounts the probe handlers on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
