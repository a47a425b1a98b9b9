// Package history keeps the append-only log of item lifecycle events for one
// user and derives daily summaries from it.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/model"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Ledger is the history of one user. Entries are held newest first.
type Ledger struct {
	mu      sync.Mutex
	kv      kv.Store
	userID  string
	key     string
	entries []model.HistoryEntry
	logger  *slog.Logger

	now   func() time.Time
	loc   *time.Location
	newID func() string
}

type Option func(*Ledger)

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the location whose calendar day becomes an entry's Date.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

func WithIDFunc(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

func NewLedger(store kv.Store, userID string, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		kv:     store,
		userID: userID,
		key:    kv.HistoryKey(userID),
		logger: logger,
		now:    time.Now,
		loc:    time.Local,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory ledger with the persisted one and returns its
// daily summaries. mu is held across the read so a concurrent Append cannot
// be dropped by the swap.
func (l *Ledger) Load(ctx context.Context) ([]model.DailyHistory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []model.HistoryEntry
	if _, err := kv.GetJSON(ctx, l.kv, l.key, &entries); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	l.entries = entries

	l.logger.Debug("history loaded", "user_id", l.userID, "entries", len(entries))
	return GroupByDate(entries), nil
}

// Append records action for item. The ledger is persisted before the new
// entry becomes visible in memory.
func (l *Ledger) Append(ctx context.Context, item model.ShoppingItem, action model.HistoryAction) (*model.HistoryEntry, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("append history: unknown action %q", action)
	}

	ts := l.now()
	entry := model.HistoryEntry{
		ID:          l.newID(),
		ItemID:      item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		Category:    item.Category,
		Priority:    item.Priority,
		Notes:       item.Notes,
		Image:       item.Image,
		ListID:      item.ListID,
		IsCompleted: item.IsCompleted,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		Action:      action,
		Timestamp:   ts.UTC(),
		Date:        ts.In(l.loc).Format(dateLayout),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]model.HistoryEntry, 0, len(l.entries)+1)
	next = append(next, entry)
	next = append(next, l.entries...)

	if err := kv.SetJSON(ctx, l.kv, l.key, next); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	l.entries = next
	return &entry, nil
}

// Replace persists entries as the whole ledger, newest first, and makes them
// current. An empty slice removes the stored ledger.
func (l *Ledger) Replace(ctx context.Context, entries []model.HistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if len(entries) == 0 {
		err = kv.Delete(ctx, l.kv, l.key)
	} else {
		err = kv.SetJSON(ctx, l.kv, l.key, entries)
	}
	if err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	l.entries = append([]model.HistoryEntry(nil), entries...)
	return nil
}

// Clear removes the whole ledger. It cannot be undone.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := kv.Delete(ctx, l.kv, l.key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	l.entries = nil
	l.logger.Info("history cleared", "user_id", l.userID)
	return nil
}

// Entries returns a copy of the ledger, newest first.
func (l *Ledger) Entries() []model.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Daily recomputes the daily summaries from the current entries.
func (l *Ledger) Daily() []model.DailyHistory {
	return GroupByDate(l.Entries())
}
