package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/basket/internal/history"
	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/model"
)

// Session bundles the item store and history ledger of one user.
type Session struct {
	UserID  string
	Items   *Store
	History *history.Ledger
}

// Manager hands out one Session per user, loading it on first use.
type Manager struct {
	mu       sync.Mutex
	kv       kv.Store
	sessions map[string]*Session
	logger   *slog.Logger

	storeOpts  []Option
	ledgerOpts []history.Option
}

type ManagerOption func(*Manager)

func WithStoreOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.storeOpts = append(m.storeOpts, opts...) }
}

func WithLedgerOptions(opts ...history.Option) ManagerOption {
	return func(m *Manager) { m.ledgerOpts = append(m.ledgerOpts, opts...) }
}

func NewManager(store kv.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		kv:       store,
		sessions: make(map[string]*Session),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns the user's session, loading items and history if it is not
// already open.
func (m *Manager) Open(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	logger := m.logger.With("user_id", userID)
	ledger := history.NewLedger(m.kv, userID, logger, m.ledgerOpts...)
	if _, err := ledger.Load(ctx); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	items := NewStore(m.kv, ledger, userID, logger, m.storeOpts...)
	if err := items.Init(ctx); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	sess := &Session{UserID: userID, Items: items, History: ledger}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have opened the same user while we were loading.
	if existing, ok := m.sessions[userID]; ok {
		items.Dispose()
		return existing, nil
	}
	m.sessions[userID] = sess
	m.logger.Info("session opened", "user_id", userID)
	return sess, nil
}

// Restore replaces the user's items and history, opening the session first
// if needed. The write happens under the session's locks, so concurrent
// mutations land either wholly before or wholly after it.
func (m *Manager) Restore(ctx context.Context, userID string, items []model.ShoppingItem, entries []model.HistoryEntry) error {
	sess, err := m.Open(ctx, userID)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if err := sess.Items.Restore(ctx, items, entries); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

// Close disposes the user's session.
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		sess.Items.Dispose()
		m.logger.Info("session closed", "user_id", userID)
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.Items.Dispose()
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
