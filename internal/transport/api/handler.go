// Package api exposes the operation surface over HTTP: a single POST
// endpoint that decodes {operation, arguments} requests, dispatches them
// through the operation registry, and maps domain errors to response codes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/forgewell/appforge-backend/internal/argtree"
)

// dispatcher is what the handler needs from the operation registry.
type dispatcher interface {
	Dispatch(ctx context.Context, name string, args *argtree.Node) (any, error)
}

// Handler serves the operation endpoint.
type Handler struct {
	dispatcher dispatcher
	log        *slog.Logger
	maxBody    int64
}

// NewHandler creates a Handler.
func NewHandler(log *slog.Logger, d dispatcher, maxBody int64) *Handler {
	return &Handler{
		dispatcher: d,
		log:        log.With("component", "api"),
		maxBody:    maxBody,
	}
}

// operationRequest is the request envelope.
type operationRequest struct {
	Operation string          `json:"operation"`
	Arguments json.RawMessage `json:"arguments"`
}

// dataResponse is the success envelope.
type dataResponse struct {
	Data any `json:"data"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErrorEnvelope(w, http.StatusRequestEntityTooLarge, "VALIDATION", "request body too large", nil)
			return
		}
		writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION", "malformed request body", nil)
		return
	}
	io.Copy(io.Discard, r.Body) //nolint:errcheck

	if req.Operation == "" {
		writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION", "operation is required", nil)
		return
	}

	args := argtree.Object(nil)
	if len(req.Arguments) > 0 {
		parsed, err := argtree.FromJSON(req.Arguments)
		if err != nil {
			writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION", "malformed arguments", nil)
			return
		}
		if parsed.Kind() != argtree.KindObject && !parsed.IsNull() {
			writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION", "arguments must be an object", nil)
			return
		}
		if parsed.Kind() == argtree.KindObject {
			args = parsed
		}
	}

	result, err := h.dispatcher.Dispatch(r.Context(), req.Operation, args)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
