package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/basket/internal/auth"
	"github.com/dukerupert/basket/internal/grocery"
	"github.com/dukerupert/basket/internal/model"
	"github.com/dukerupert/basket/internal/selector"
	"github.com/dukerupert/basket/internal/shopping"
	ws "github.com/dukerupert/basket/internal/websocket"
)

// Notification entities published on the websocket feed.
const (
	entityItem    = "item"
	entityHistory = "history"
	entityList    = "list"
)

type ItemHandler struct {
	sessions *shopping.Manager
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewItemHandler(sessions *shopping.Manager, hub *ws.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{sessions: sessions, hub: hub, logger: logger}
}

// openSession loads the caller's session, writing an error response when it
// cannot.
func openSession(w http.ResponseWriter, r *http.Request, sessions *shopping.Manager, logger *slog.Logger) (*shopping.Session, bool) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return nil, false
	}
	sess, err := sessions.Open(r.Context(), userID)
	if err != nil {
		writeError(w, logger, "open session", err)
		return nil, false
	}
	return sess, true
}

func (h *ItemHandler) publish(userID, action, id string) {
	h.hub.Publish(userID, ws.NewMessage(entityItem, action, id, nil))
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	c := selector.Criteria{
		Filter:   selector.Filter(q.Get("filter")),
		Category: q.Get("category"),
		Priority: q.Get("priority"),
		Search:   q.Get("q"),
	}
	if !c.Filter.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid filter"})
		return
	}
	if c.Priority != "" && c.Priority != selector.AllPriorities && !model.Priority(c.Priority).Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid priority"})
		return
	}

	writeJSON(w, http.StatusOK, selector.FilteredItems(sess.Items.List(), c))
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	var req model.CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		req.Category = grocery.Categorize(req.Name)
	}

	item, err := sess.Items.Add(r.Context(), req)
	if writeItem(w, h.logger, "create item", http.StatusCreated, item, err) {
		h.publish(sess.UserID, "created", item.ID)
	}
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	var req model.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := sess.Items.Update(r.Context(), r.PathValue("id"), req)
	if writeItem(w, h.logger, "update item", http.StatusOK, item, err) {
		h.publish(sess.UserID, "updated", item.ID)
	}
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	item, err := sess.Items.Delete(r.Context(), r.PathValue("id"))
	if writeItem(w, h.logger, "delete item", http.StatusOK, item, err) {
		h.publish(sess.UserID, "deleted", item.ID)
	}
}

func (h *ItemHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	item, err := sess.Items.ToggleCompletion(r.Context(), r.PathValue("id"))
	if writeItem(w, h.logger, "toggle item", http.StatusOK, item, err) {
		action := "completed"
		if !item.IsCompleted {
			action = "uncompleted"
		}
		h.publish(sess.UserID, action, item.ID)
	}
}

func (h *ItemHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	item, err := sess.Items.ToggleFavorite(r.Context(), r.PathValue("id"))
	if writeItem(w, h.logger, "toggle favorite", http.StatusOK, item, err) {
		h.publish(sess.UserID, "updated", item.ID)
	}
}

func (h *ItemHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	n, err := sess.Items.ClearCompleted(r.Context())
	if err != nil {
		writeError(w, h.logger, "clear completed", err)
		return
	}

	if n > 0 {
		h.hub.Publish(sess.UserID, ws.NewMessage(entityList, "cleared", "", map[string]any{"cleared": n}))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n})
}

func (h *ItemHandler) Categories(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": selector.Categories(sess.Items.List()),
		"suggested":  grocery.Categories,
	})
}

func (h *ItemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, ok := openSession(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selector.Dashboard(sess.Items.List()))
}
