package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/basket/internal/database"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, Config{}, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Sessions().CloseAll)
	return ts
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)
	resp := do(t, "GET", ts.URL+"/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := setupServer(t)
	for _, path := range []string{"/api/items", "/api/history", "/api/stats", "/api/backups/status"} {
		resp := do(t, "GET", ts.URL+path, "", "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", path, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}

func TestShoppingFlow(t *testing.T) {
	ts := setupServer(t)

	resp := do(t, "POST", ts.URL+"/api/register", "",
		`{"email":"sipho@example.com","password":"correct-horse","name":"Sipho"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var reg struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&reg)
	if reg.Token == "" {
		t.Fatal("expected token")
	}

	resp = do(t, "POST", ts.URL+"/api/items", reg.Token,
		`{"name":"Bread","quantity":1,"unit":"loaf","price":18.99,"category":"Bread"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var item struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&item)

	resp = do(t, "POST", ts.URL+"/api/items/"+item.ID+"/toggle", reg.Token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}

	resp = do(t, "GET", ts.URL+"/api/history/stats", reg.Token, "")
	var stats struct {
		TotalAdded     int     `json:"total_added"`
		TotalPurchased int     `json:"total_purchased"`
		TotalSpent     float64 `json:"total_spent"`
	}
	json.NewDecoder(resp.Body).Decode(&stats)
	if stats.TotalAdded != 1 || stats.TotalPurchased != 1 || stats.TotalSpent != 18.99 {
		t.Errorf("stats = %+v", stats)
	}

	resp = do(t, "GET", ts.URL+"/api/backups", reg.Token, "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("backups status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	resp = do(t, "POST", ts.URL+"/api/logout", reg.Token, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	resp = do(t, "GET", ts.URL+"/api/items", reg.Token, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("after logout status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestLoginRateLimited(t *testing.T) {
	ts := setupServer(t)
	var last int
	for i := 0; i < authLimit.Requests+1; i++ {
		resp := do(t, "POST", ts.URL+"/api/login", "", `{"email":"x@example.com","password":"nope"}`)
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", last, http.StatusTooManyRequests)
	}
}
