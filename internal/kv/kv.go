// Package kv defines the key-value persistence contract used by the item
// store and the history ledger.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is wrapped by a StorageError when a call exceeds its deadline.
var ErrTimeout = errors.New("storage timeout")

// Store persists opaque values by string key. Get returns nil, nil for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// StorageError reports a failed or timed-out persistence call.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ItemsKey is the key holding a user's shopping items.
func ItemsKey(userID string) string { return "items:" + userID }

// HistoryKey is the key holding a user's history ledger.
func HistoryKey(userID string) string { return "history:" + userID }

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every call on s by d. Failures, including timeouts,
// are returned as *StorageError.
//
// A timed out call is abandoned, not cancelled: its ctx is done, but a
// backend that ignores ctx may still commit a Set or Remove after the
// caller has seen ErrTimeout. Callers must not assume a timed out write
// left the old value in place.
func WithTimeout(s Store, d time.Duration) Store {
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := t.run(ctx, "get", key, func(ctx context.Context) error {
		v, err := t.next.Get(ctx, key)
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *timeoutStore) Set(ctx context.Context, key string, value []byte) error {
	return t.run(ctx, "set", key, func(ctx context.Context) error {
		return t.next.Set(ctx, key, value)
	})
}

func (t *timeoutStore) Remove(ctx context.Context, key string) error {
	return t.run(ctx, "remove", key, func(ctx context.Context) error {
		return t.next.Remove(ctx, key)
	})
}

// run executes fn in its own goroutine so a backend that ignores ctx still
// cannot hold the caller past the deadline.
func (t *timeoutStore) run(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return asStorageError(op, key, err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &StorageError{Op: op, Key: key, Err: ErrTimeout}
		}
		return &StorageError{Op: op, Key: key, Err: ctx.Err()}
	}
}

func asStorageError(op, key string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Key: key, Err: err}
}
