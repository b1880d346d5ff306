package http

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/fetchctl/fetchctl/internal/domain"
)

// StateReader is the read-only view of the state store exposed over HTTP.
type StateReader interface {
	Snapshot(ctx context.Context) (map[string]domain.DownloadState, error)
}

// StatusHandler serves the current download states.
type StatusHandler struct {
	store  StateReader
	logger *slog.Logger
}

// NewStatusHandler creates a new StatusHandler with the provided store and logger.
func NewStatusHandler(store StateReader, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		store:  store,
		logger: logger,
	}
}

// GetStatus handles the HTTP GET /status request with a snapshot of every
// known download and its current state.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to snapshot state store", "error", err)
		writeError(w, http.StatusInternalServerError, "state store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"downloads": snap,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
