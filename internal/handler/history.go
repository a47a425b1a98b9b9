package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/basket/internal/model"
	"github.com/dukerupert/basket/internal/selector"
	"github.com/dukerupert/basket/internal/shopping"
	ws "github.com/dukerupert/basket/internal/websocket"
)

type HistoryHandler struct {
	sessions *shopping.Manager
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewHistoryHandler(sessions *shopping.Manager, hub *ws.Hub, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{sessions: sessions, hub: hub, logger: logger}
}

// List returns the daily history, newest day first, optionally narrowed to
// one action.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	action := r.URL.Query().Get("action")
	if action != "" && action != string(selector.FilterAll) && !model.HistoryAction(action).Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid action"})
		return
	}

	writeJSON(w, http.StatusOK, selector.FilterHistory(sess.History.Daily(), action))
}

func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selector.HistoryStats(sess.History.Entries()))
}

// Orders lists purchase entries, newest first.
func (h *HistoryHandler) Orders(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selector.CompletedOrders(sess.History.Entries()))
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	if err := sess.History.Clear(r.Context()); err != nil {
		writeError(w, h.logger, "clear history", err)
		return
	}
	h.hub.Publish(sess.UserID, ws.NewMessage(entityHistory, "cleared", "", nil))
	w.WriteHeader(http.StatusNoContent)
}
