package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/basket/internal/backup"
	"github.com/dukerupert/basket/internal/database"
	"github.com/dukerupert/basket/internal/handler"
	"github.com/dukerupert/basket/internal/history"
	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/middleware"
	"github.com/dukerupert/basket/internal/shopping"
	"github.com/dukerupert/basket/internal/store"
	ws "github.com/dukerupert/basket/internal/websocket"
)

// DefaultStorageTimeout bounds persistence calls when Config leaves it unset.
const DefaultStorageTimeout = 5 * time.Second

var (
	authLimit = middleware.Limit{Requests: 10, Window: time.Minute}
	apiLimit  = middleware.Limit{Requests: 300, Window: time.Minute}
)

type Config struct {
	StorageTimeout time.Duration
	Location       *time.Location
	SecureCookie   bool
	Backup         backup.S3Config
	BackupKeep     int
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	sessions      *shopping.Manager
	itemH         *handler.ItemHandler
	historyH      *handler.HistoryHandler
	authH         *handler.AuthHandler
	backupH       *handler.BackupHandler
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = DefaultStorageTimeout
	}
	kvStore := kv.WithTimeout(store.NewKVStore(db), cfg.StorageTimeout)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	var opts []shopping.ManagerOption
	if cfg.Location != nil {
		opts = append(opts, shopping.WithLedgerOptions(history.WithLocation(cfg.Location)))
	}
	sessions := shopping.NewManager(kvStore, logger.With("component", "shopping"), opts...)

	backupMgr := backup.NewManager(cfg.Backup, kvStore, sessions, logger)

	return &Server{
		db:            db,
		hub:           hub,
		sessions:      sessions,
		itemH:         handler.NewItemHandler(sessions, hub, logger.With("component", "items")),
		historyH:      handler.NewHistoryHandler(sessions, hub, logger.With("component", "history")),
		authH:         handler.NewAuthHandler(userStore, sessionStore, cfg.SecureCookie, logger.With("component", "auth")),
		backupH:       handler.NewBackupHandler(backupMgr, hub, cfg.BackupKeep, logger.With("component", "backup_handler")),
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Sessions returns the shopping session manager.
func (s *Server) Sessions() *shopping.Manager {
	return s.sessions
}

func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/register", s.rateLimited(middleware.RealIP, authLimit, s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimited(middleware.RealIP, authLimit, s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	requireAuth := middleware.RequireAuth(s.sessionStore)
	perUser := middleware.RateLimit(s.rateLimiter, middleware.ClientKey, apiLimit)
	outerMux.Handle("/", requireAuth(perUser(protectedMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if _, err := database.Version(s.db); err != nil {
		s.logger.Warn("health check", "error", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}` + "\n"))
}

func (s *Server) rateLimited(keyFunc func(*http.Request) string, limit middleware.Limit, h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.rateLimiter, keyFunc, limit)(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateMe)

	// Items
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.itemH.ToggleCompletion)
	mux.HandleFunc("POST /api/items/{id}/favorite", s.itemH.ToggleFavorite)
	mux.HandleFunc("POST /api/items/clear-completed", s.itemH.ClearCompleted)
	mux.HandleFunc("GET /api/categories", s.itemH.Categories)
	mux.HandleFunc("GET /api/stats", s.itemH.Stats)

	// History
	mux.HandleFunc("GET /api/history", s.historyH.List)
	mux.HandleFunc("GET /api/history/stats", s.historyH.Stats)
	mux.HandleFunc("GET /api/history/orders", s.historyH.Orders)
	mux.HandleFunc("DELETE /api/history", s.historyH.Clear)

	// Backups
	mux.HandleFunc("POST /api/backups", s.backupH.Create)
	mux.HandleFunc("POST /api/backups/restore", s.backupH.Restore)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
