package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/dukerupert/basket/internal/auth"
	"github.com/dukerupert/basket/internal/database"
	"github.com/dukerupert/basket/internal/middleware"
	"github.com/dukerupert/basket/internal/store"
)

func setupAuth(t *testing.T) (*AuthHandler, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ss := store.NewSessionStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthHandler(store.NewUserStore(db), ss, false, logger), ss
}

func registerBody() map[string]any {
	return map[string]any{
		"email":    "thandi@example.com",
		"password": "correct-horse",
		"name":     "Thandi",
		"surname":  "Nkosi",
	}
}

func sessionCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	h, ss := setupAuth(t)

	rec := serve(h.Register, request("POST", "/api/auth/register", registerBody()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	reg := decode[authResponse](t, rec)
	if reg.User == nil || reg.User.ID == "" || reg.Token == "" {
		t.Fatalf("register response = %+v", reg)
	}
	if c := sessionCookie(rec); c == nil || c.Value != reg.Token || !c.HttpOnly {
		t.Errorf("session cookie = %+v", c)
	}

	rec = serve(h.Login, request("POST", "/api/auth/login", map[string]string{
		"email":    "THANDI@example.com",
		"password": "correct-horse",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	login := decode[authResponse](t, rec)
	if login.User.ID != reg.User.ID {
		t.Errorf("login user = %q, want %q", login.User.ID, reg.User.ID)
	}

	sess, err := ss.GetByToken(login.Token)
	if err != nil || sess == nil {
		t.Fatalf("session lookup: %v, %v", sess, err)
	}
	if sess.UserID != reg.User.ID {
		t.Errorf("session user = %q, want %q", sess.UserID, reg.User.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := setupAuth(t)
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"bad email", "email", "not-an-email"},
		{"missing name", "name", "  "},
		{"short password", "password", "short"},
	}
	for _, tt := range tests {
		body := registerBody()
		body[tt.field] = tt.value
		rec := serve(h.Register, request("POST", "/api/auth/register", body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := setupAuth(t)
	serve(h.Register, request("POST", "/api/auth/register", registerBody()))

	rec := serve(h.Register, request("POST", "/api/auth/register", registerBody()))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, _ := setupAuth(t)
	serve(h.Register, request("POST", "/api/auth/register", registerBody()))

	for _, creds := range []map[string]string{
		{"email": "thandi@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "correct-horse"},
	} {
		rec := serve(h.Login, request("POST", "/api/auth/login", creds))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", creds["email"], rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestLogout(t *testing.T) {
	h, ss := setupAuth(t)
	rec := serve(h.Register, request("POST", "/api/auth/register", registerBody()))
	reg := decode[authResponse](t, rec)
	sess, _ := ss.GetByToken(reg.Token)

	req := request("POST", "/api/auth/logout", nil)
	req = req.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{
		UserID:    reg.User.ID,
		SessionID: sess.ID,
	}))
	rec = serve(h.Logout, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Errorf("expected cookie to be cleared, got %+v", c)
	}
	if got, _ := ss.GetByToken(reg.Token); got != nil {
		t.Error("session still valid after logout")
	}
}

func TestMe(t *testing.T) {
	h, _ := setupAuth(t)
	rec := serve(h.Register, request("POST", "/api/auth/register", registerBody()))
	reg := decode[authResponse](t, rec)

	req := request("GET", "/api/me", nil)
	req = req.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: reg.User.ID}))
	rec = serve(h.Me, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[map[string]any](t, rec); got["name"] != "Thandi" {
		t.Errorf("me = %v", got)
	}

	rec = serve(h.Me, request("GET", "/api/me", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdateMe(t *testing.T) {
	h, _ := setupAuth(t)
	rec := serve(h.Register, request("POST", "/api/auth/register", registerBody()))
	reg := decode[authResponse](t, rec)
	asUser := func(req *http.Request) *http.Request {
		return req.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: reg.User.ID}))
	}

	body := map[string]any{"name": "  Thandeka ", "surname": "Dlamini", "cell_number": "0821234567"}
	rec = serve(h.UpdateMe, asUser(request("PUT", "/api/me", body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[map[string]any](t, rec)
	if got["name"] != "Thandeka" || got["surname"] != "Dlamini" || got["cell_number"] != "0821234567" {
		t.Errorf("updated = %v", got)
	}

	rec = serve(h.Me, asUser(request("GET", "/api/me", nil)))
	if got := decode[map[string]any](t, rec); got["name"] != "Thandeka" || got["email"] != "thandi@example.com" {
		t.Errorf("me after update = %v", got)
	}

	rec = serve(h.UpdateMe, asUser(request("PUT", "/api/me", map[string]any{"name": "   "})))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = serve(h.UpdateMe, request("PUT", "/api/me", map[string]any{"name": "Ghost"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
