package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/basket/internal/auth"
	"github.com/dukerupert/basket/internal/backup"
	ws "github.com/dukerupert/basket/internal/websocket"
)

const minPassphraseLength = 8

type BackupHandler struct {
	manager *backup.Manager
	hub     *ws.Hub
	keep    int
	logger  *slog.Logger
}

// NewBackupHandler serves backups through m. After each export only the
// newest keep snapshots of the user are retained; keep <= 0 retains all.
func NewBackupHandler(m *backup.Manager, hub *ws.Hub, keep int, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, hub: hub, keep: keep, logger: logger}
}

func (h *BackupHandler) writeBackupError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, backup.ErrDisabled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups are not configured"})
	case errors.Is(err, backup.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "backup not found"})
	case errors.Is(err, backup.ErrBadPassphrase):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "wrong passphrase"})
	default:
		writeError(w, h.logger, op, err)
	}
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Passphrase) < minPassphraseLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase must be at least 8 characters"})
		return
	}

	userID := auth.UserID(r.Context())
	info, err := h.manager.Export(r.Context(), userID, req.Passphrase)
	if err != nil {
		h.writeBackupError(w, "create backup", err)
		return
	}

	if h.keep > 0 {
		if n, err := h.manager.Prune(r.Context(), userID, h.keep); err != nil {
			h.logger.Warn("prune backups", "user_id", userID, "error", err)
		} else if n > 0 {
			h.logger.Info("pruned backups", "user_id", userID, "removed", n)
		}
	}
	writeJSON(w, http.StatusCreated, info)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key        string `json:"key"`
		Passphrase string `json:"passphrase"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.manager.Restore(r.Context(), userID, req.Key, req.Passphrase); err != nil {
		h.writeBackupError(w, "restore backup", err)
		return
	}

	h.hub.Publish(userID, ws.NewMessage(entityList, "restored", "", nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.manager.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeBackupError(w, "list backups", err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status(auth.UserID(r.Context())))
}
