package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/leadboard/internal/store"
)

var (
	// ErrItemNotFound is returned when the item is not in the expected collection
	ErrItemNotFound = errors.New("item not found")

	// ErrCollectionNotFound is returned when a collection's parent document does not exist
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidPosition is returned for a target index outside the collection
	ErrInvalidPosition = errors.New("invalid position")

	// ErrTransactionAborted is returned when a concurrent write won; safe to retry
	ErrTransactionAborted = errors.New("transaction aborted")

	// ErrAlreadyExists is returned when an id is already taken in the collection
	ErrAlreadyExists = errors.New("item already exists")

	// ErrStore wraps any other storage failure
	ErrStore = errors.New("store failure")
)

// Side names one end of a move.
type Side string

const (
	SideSource      Side = "source"
	SideDestination Side = "destination"
)

// CollectionNotFoundError reports which collection of an operation is missing.
// It matches ErrCollectionNotFound with errors.Is.
type CollectionNotFoundError struct {
	Side       Side
	Collection string
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("%s collection %q not found", e.Side, e.Collection)
}

func (e *CollectionNotFoundError) Is(target error) bool {
	return target == ErrCollectionNotFound
}

// IsRetryable reports whether the operation can be retried with fresh reads.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionAborted)
}

// translate maps store errors onto the engine's error kinds. Driver errors are
// flattened into the message so they never match outside this package.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrCollectionNotFound),
		errors.Is(err, ErrInvalidPosition),
		errors.Is(err, ErrTransactionAborted),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrStore):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %v", ErrTransactionAborted, err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrItemNotFound, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	default:
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
}
