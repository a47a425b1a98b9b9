package handler

import (
	"net/http"
	"testing"

	"github.com/dukerupert/basket/internal/model"
)

func TestHistoryList(t *testing.T) {
	env := setupEnv(t)
	item := createItem(t, env, milkBody())
	serve(env.items.ToggleCompletion, request("POST", "/", nil, "id", item.ID))

	rec := serve(env.history.List, request("GET", "/api/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	days := decode[[]model.DailyHistory](t, rec)
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	if days[0].ItemsAdded != 1 || days[0].ItemsPurchased != 1 || days[0].TotalSpent != 31 {
		t.Errorf("day = %+v", days[0])
	}

	rec = serve(env.history.List, request("GET", "/api/history?action=added", nil))
	days = decode[[]model.DailyHistory](t, rec)
	if len(days) != 1 || len(days[0].Items) != 1 || days[0].TotalSpent != 0 {
		t.Errorf("filtered days = %+v", days)
	}
}

func TestHistoryListInvalidAction(t *testing.T) {
	env := setupEnv(t)
	rec := serve(env.history.List, request("GET", "/api/history?action=bought", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupEnv(t)
	rec := serve(env.history.List, request("GET", "/api/history", nil))
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}

func TestHistoryOrders(t *testing.T) {
	env := setupEnv(t)
	a := createItem(t, env, milkBody())
	createItem(t, env, milkBody())
	serve(env.items.ToggleCompletion, request("POST", "/", nil, "id", a.ID))

	rec := serve(env.history.Orders, request("GET", "/api/history/orders", nil))
	orders := decode[[]model.HistoryEntry](t, rec)
	if len(orders) != 1 || orders[0].ItemID != a.ID {
		t.Errorf("orders = %+v", orders)
	}
}

func TestHistoryClear(t *testing.T) {
	env := setupEnv(t)
	createItem(t, env, milkBody())

	rec := serve(env.history.Clear, request("DELETE", "/api/history", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = serve(env.history.Stats, request("GET", "/api/history/stats", nil))
	if stats := decode[model.HistoryStats](t, rec); stats != (model.HistoryStats{}) {
		t.Errorf("stats after clear = %+v", stats)
	}

	rec = serve(env.items.List, request("GET", "/api/items", nil))
	if items := decode[[]model.ShoppingItem](t, rec); len(items) != 1 {
		t.Errorf("items after history clear = %d, want 1", len(items))
	}
}
