package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

// errorBody is the machine-readable error payload.
type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []fieldErrorPayload `json:"fields,omitempty"`
}

// errorResponse is the error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type fieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeError maps domain errors to HTTP status and error codes.
// Unexpected errors are logged and returned as a generic internal failure.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorEnvelope(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)

	case errors.Is(err, domain.ErrAlreadyExists):
		writeErrorEnvelope(w, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)

	case errors.Is(err, domain.ErrValidation):
		var fields []fieldErrorPayload
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			fields = make([]fieldErrorPayload, len(ve.Errors))
			for i, fe := range ve.Errors {
				fields[i] = fieldErrorPayload{Field: fe.Field, Message: fe.Message}
			}
		}
		writeErrorEnvelope(w, http.StatusBadRequest, "VALIDATION", err.Error(), fields)

	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)

	case errors.Is(err, domain.ErrForbidden):
		writeErrorEnvelope(w, http.StatusForbidden, "FORBIDDEN", "access denied", nil)

	case errors.Is(err, domain.ErrResolution):
		writeErrorEnvelope(w, http.StatusBadRequest, "RESOLUTION", "could not resolve the referenced resource", nil)

	case errors.Is(err, domain.ErrConflict):
		message := "conflict"
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			message = ce.Message
		}
		writeErrorEnvelope(w, http.StatusConflict, "CONFLICT", message, nil)

	default:
		// Unexpected error: log it, return generic message to client.
		h.log.ErrorContext(ctx, "unexpected operation error",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
		)
		writeErrorEnvelope(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func writeErrorEnvelope(w http.ResponseWriter, status int, code, message string, fields []fieldErrorPayload) {
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    code,
		Message: message,
		Fields:  fields,
	}})
}
