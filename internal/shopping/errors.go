package shopping

import (
	"errors"
	"fmt"

	"github.com/dukerupert/basket/internal/model"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("item not found")
	// ErrDisposed is returned by a Store used after Dispose.
	ErrDisposed = errors.New("store disposed")
)

type NotFoundError struct {
	ItemID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %q not found", e.ItemID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// HistoryError reports that an item mutation was persisted but its history
// entry could not be recorded.
type HistoryError struct {
	Action model.HistoryAction
	Err    error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("item saved, but recording %s history failed: %v", e.Action, e.Err)
}

func (e *HistoryError) Unwrap() error { return e.Err }
