// Package shopping owns a user's shopping items and records their lifecycle
// in the history ledger.
package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/basket/internal/history"
	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/model"
	"github.com/google/uuid"
)

// Store is the item list of a single user.
//
// Every mutation holds mu from reading the current list until its history
// entry is recorded, and writes the full list before swapping it in memory.
// A failed write therefore leaves both memory and storage at the previous
// state, and two callers can never build on the same stale list.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	ledger   *history.Ledger
	userID   string
	key      string
	items    []model.ShoppingItem
	disposed bool
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func NewStore(store kv.Store, ledger *history.Ledger, userID string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     store,
		ledger: ledger,
		userID: userID,
		key:    kv.ItemsKey(userID),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted list, replacing whatever is in memory. It may be
// called again to refresh.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	var items []model.ShoppingItem
	if _, err := kv.GetJSON(ctx, s.kv, s.key, &items); err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	s.items = items
	s.logger.Debug("items loaded", "user_id", s.userID, "count", len(items))
	return nil
}

// Dispose drops the in-memory list. Any later call returns ErrDisposed.
func (s *Store) Dispose() {
	s.mu.Lock()
	s.items = nil
	s.disposed = true
	s.mu.Unlock()
}

// List returns a copy of the current items in insertion order.
func (s *Store) List() []model.ShoppingItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id string) (model.ShoppingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.ShoppingItem{}, false
	}
	return s.items[i], true
}

func (s *Store) Add(ctx context.Context, req model.CreateItemRequest) (*model.ShoppingItem, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}

	now := s.now().UTC()
	item := model.ShoppingItem{
		ID:        s.newID(),
		ListID:    s.userID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		Price:     req.Price,
		Category:  req.Category,
		Priority:  req.Priority,
		Notes:     req.Notes,
		Image:     req.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := append(s.snapshot(), item)
	if err := s.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return s.record(ctx, item, model.ActionAdded)
}

// Update merges the present fields of req into the item. Plain edits are not
// recorded in history, including completion changes made this way.
func (s *Store) Update(ctx context.Context, id string, req model.UpdateItemRequest) (*model.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, &NotFoundError{ItemID: id}
	}

	item := s.items[i]
	wasCompleted := item.IsCompleted
	if err := req.Apply(&item); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item.UpdatedAt = now
	if item.IsCompleted != wasCompleted {
		setCompleted(&item, item.IsCompleted, now)
	}

	next := s.snapshot()
	next[i] = item
	if err := s.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

// ToggleCompletion flips the completed flag. Marking an item complete
// records a purchase; returning it to the list records an unmark.
func (s *Store) ToggleCompletion(ctx context.Context, id string) (*model.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, &NotFoundError{ItemID: id}
	}

	item := s.items[i]
	now := s.now().UTC()
	item.UpdatedAt = now
	setCompleted(&item, !item.IsCompleted, now)

	next := s.snapshot()
	next[i] = item
	if err := s.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("toggle completion: %w", err)
	}

	action := model.ActionPurchased
	if !item.IsCompleted {
		action = model.ActionUnmarked
	}
	return s.record(ctx, item, action)
}

func (s *Store) ToggleFavorite(ctx context.Context, id string) (*model.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, &NotFoundError{ItemID: id}
	}

	item := s.items[i]
	item.IsFavorite = !item.IsFavorite
	item.UpdatedAt = s.now().UTC()

	next := s.snapshot()
	next[i] = item
	if err := s.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	return &item, nil
}

// Delete removes the item and records its last state as removed. Earlier
// history entries for the item are kept.
func (s *Store) Delete(ctx context.Context, id string) (*model.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, &NotFoundError{ItemID: id}
	}

	item := s.items[i]
	next := make([]model.ShoppingItem, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return s.record(ctx, item, model.ActionRemoved)
}

// ClearCompleted removes every completed item and returns how many were
// removed. Cleared items already have their purchase in history, so no
// entries are written.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return 0, ErrDisposed
	}

	kept := []model.ShoppingItem{}
	for _, item := range s.items {
		if !item.IsCompleted {
			kept = append(kept, item)
		}
	}
	cleared := len(s.items) - len(kept)
	if cleared == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, kept); err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return cleared, nil
}

// Clear empties the list without recording history.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	if err := s.commit(ctx, []model.ShoppingItem{}); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	return nil
}

// Restore replaces both the list and the ledger, holding mu throughout so
// no mutation can interleave. If the ledger write fails the previous list is
// written back and memory is left unchanged.
func (s *Store) Restore(ctx context.Context, items []model.ShoppingItem, entries []model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	prev := s.snapshot()
	next := append([]model.ShoppingItem{}, items...)
	if err := kv.SetJSON(ctx, s.kv, s.key, next); err != nil {
		return fmt.Errorf("restore items: %w", err)
	}
	if s.ledger != nil {
		if err := s.ledger.Replace(ctx, entries); err != nil {
			if rbErr := kv.SetJSON(ctx, s.kv, s.key, prev); rbErr != nil {
				s.logger.Error("restore rollback failed", "user_id", s.userID, "error", rbErr)
			}
			return fmt.Errorf("restore history: %w", err)
		}
	}
	s.items = next
	s.logger.Info("list restored", "user_id", s.userID, "items", len(next), "entries", len(entries))
	return nil
}

// commit persists next and makes it the current list. Callers hold mu.
func (s *Store) commit(ctx context.Context, next []model.ShoppingItem) error {
	if err := kv.SetJSON(ctx, s.kv, s.key, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// record appends a history entry for item. The item is returned even when
// the append fails, since the item change itself is already durable.
func (s *Store) record(ctx context.Context, item model.ShoppingItem, action model.HistoryAction) (*model.ShoppingItem, error) {
	s.logger.Debug("item changed", "user_id", s.userID, "item_id", item.ID, "action", action)
	if s.ledger == nil {
		return &item, nil
	}
	if _, err := s.ledger.Append(ctx, item, action); err != nil {
		s.logger.Warn("history append failed", "user_id", s.userID, "item_id", item.ID, "action", action, "error", err)
		return &item, &HistoryError{Action: action, Err: err}
	}
	return &item, nil
}

func (s *Store) snapshot() []model.ShoppingItem {
	out := make([]model.ShoppingItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func setCompleted(item *model.ShoppingItem, completed bool, now time.Time) {
	item.IsCompleted = completed
	if completed {
		t := now
		item.CompletedAt = &t
	} else {
		item.CompletedAt = nil
	}
}
