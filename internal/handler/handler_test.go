package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/basket/internal/auth"
	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/shopping"
	ws "github.com/dukerupert/basket/internal/websocket"
)

const testUserID = "user-1"

type testEnv struct {
	mem      *kv.Memory
	sessions *shopping.Manager
	hub      *ws.Hub
	items    *ItemHandler
	history  *HistoryHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := kv.NewMemory()
	sessions := shopping.NewManager(mem, logger)
	hub := ws.NewHub(logger)
	return &testEnv{
		mem:      mem,
		sessions: sessions,
		hub:      hub,
		items:    NewItemHandler(sessions, hub, logger),
		history:  NewHistoryHandler(sessions, hub, logger),
	}
}

// request builds an authenticated request for testUserID.
func request(method, target string, body any, pathValues ...string) *http.Request {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{UserID: testUserID, SessionID: 1})
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}
