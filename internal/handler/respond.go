package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/model"
	"github.com/dukerupert/basket/internal/shopping"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and reported as "failed to <op>".
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var ve *model.ValidationError
	var se *kv.StorageError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.Is(err, shopping.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
	case errors.As(err, &se), errors.Is(err, shopping.ErrDisposed):
		logger.Warn(op, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable, try again"})
	default:
		logger.Error(op, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to " + op})
	}
}

// itemResponse is an item plus a warning when its history entry could not be
// recorded.
type itemResponse struct {
	*model.ShoppingItem
	Warning string `json:"warning,omitempty"`
}

// writeItem writes item with status, or the error. A HistoryError still
// reports success since the item change itself was saved.
func writeItem(w http.ResponseWriter, logger *slog.Logger, op string, status int, item *model.ShoppingItem, err error) bool {
	var he *shopping.HistoryError
	if errors.As(err, &he) && item != nil {
		logger.Warn(op, "error", err)
		writeJSON(w, status, itemResponse{ShoppingItem: item, Warning: he.Error()})
		return true
	}
	if err != nil {
		writeError(w, logger, op, err)
		return false
	}
	writeJSON(w, status, itemResponse{ShoppingItem: item})
	return true
}
