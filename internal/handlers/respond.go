// Package handlers contains the HTTP handler groups for the orgpress API:
// auth, content, uploads, and the section registry. Handlers are thin
// glue: decode the request, dispatch to the store or service, convert
// errors to an HTTP status at the boundary.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"orgpress/internal/auth"
	"orgpress/internal/storage"
	"orgpress/internal/store"
)

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError sends a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError converts an error from the store or storage layer to an
// HTTP response. Everything unrecognized is a 500; the backing store's
// own failures (including write-precondition conflicts) surface the same
// way since nothing here retries.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrInvalidSection):
		writeError(w, http.StatusBadRequest, "Section does not accept content")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, storage.ErrConflict):
		slog.Warn("content write conflict", "error", err)
		writeError(w, http.StatusInternalServerError, "Content was modified concurrently")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
