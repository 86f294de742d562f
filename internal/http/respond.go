package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"obra/internal/core"
	"obra/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// respondError maps domain and storage errors onto HTTP status codes.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case isUnprocessable(err):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		var invalid errInvalidBody
		if errors.As(err, &invalid) {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.msg})
			return
		}
		slog.ErrorContext(ctx, "Request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isUnprocessable(err error) bool {
	for _, target := range []error{
		core.ErrNegativeAmount,
		core.ErrUnknownKind,
		core.ErrMissingProject,
		core.ErrMissingItemName,
		core.ErrInvalidQuantity,
		core.ErrZeroDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
