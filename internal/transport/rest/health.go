// Package rest serves the plain HTTP endpoints that live outside the
// operation surface: health and readiness probes.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

type storagePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process liveness and storage readiness.
type HealthHandler struct {
	storage storagePinger
	version string
}

func NewHealthHandler(storage storagePinger, version string) *HealthHandler {
	return &HealthHandler{storage: storage, version: version}
}

type probeResponse struct {
	Status  string         `json:"status"`
	Version string         `json:"version,omitempty"`
	Checks  map[string]any `json:"checks,omitempty"`
}

// Live answers 200 whenever the process is serving requests.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, http.StatusOK, probeResponse{Status: "ok"})
}

// Ready answers 200 when storage is reachable, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		writeProbe(w, http.StatusServiceUnavailable, probeResponse{Status: "down"})
		return
	}
	writeProbe(w, http.StatusOK, probeResponse{Status: "ok"})
}

// Health answers the detailed probe: build version plus per-dependency
// status with measured storage latency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	start := time.Now()
	pingErr := h.storage.Ping(ctx)

	resp := probeResponse{
		Status:  "ok",
		Version: h.version,
		Checks:  map[string]any{},
	}
	code := http.StatusOK

	if pingErr != nil {
		resp.Status = "down"
		resp.Checks["database"] = map[string]string{"status": "down"}
		code = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = map[string]string{
			"status":  "ok",
			"latency": time.Since(start).String(),
		}
	}

	writeProbe(w, code, resp)
}

func writeProbe(w http.ResponseWriter, code int, resp probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}
