// Package ordering keeps ordered collections ordered: appending, inserting,
// reordering, moving items between collections and rebalancing when the
// integer gaps between neighbours run out.
//
// The engine is stateless. Atomicity comes from the store's Batch and RunInTx
// primitives, and every write carries the version read just before it, so a
// concurrent writer turns into ErrTransactionAborted instead of a lost update.
package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/thenoetrevino/leadboard/internal/orderkey"
	"github.com/thenoetrevino/leadboard/internal/store"
	"go.opentelemetry.io/otel/attribute"
)

// Engine runs ordering operations against a store.
type Engine struct {
	store         store.Store
	notifier      Notifier
	logger        *slog.Logger
	versionChecks bool
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets who is told about changed collections.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithoutVersionChecks drops the expected-version precondition from writes.
// Concurrent operations on one collection then resolve last-write-wins per document.
func WithoutVersionChecks() Option {
	return func(e *Engine) { e.versionChecks = false }
}

// New creates an engine over s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		logger:        slog.Default(),
		versionChecks: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store { return e.store }

func (e *Engine) expected(item store.Item) int64 {
	if !e.versionChecks {
		return 0
	}
	return item.Version
}

// List returns the collection sorted by position.
func (e *Engine) List(ctx context.Context, collection string) ([]store.Item, error) {
	items, err := e.store.ListSorted(ctx, collection)
	return items, translate(err)
}

// Get returns one item.
func (e *Engine) Get(ctx context.Context, collection, id string) (store.Item, error) {
	item, err := e.store.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Item{}, fmt.Errorf("%w: %s in %s", ErrItemNotFound, id, collection)
	}
	return item, translate(err)
}

// InsertAtEnd appends a new item after the last one of collection, or at the
// initial position when the collection is empty.
func (e *Engine) InsertAtEnd(ctx context.Context, collection, id string, data json.RawMessage) (item store.Item, err error) {
	ctx, span := startSpan(ctx, "InsertAtEnd",
		attribute.String("ordering.collection", collection),
		attribute.String("ordering.item", id))
	start := time.Now()
	defer func() { finish(span, "insert_at_end", start, err) }()

	err = e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := requireCollection(ctx, tx, collection, SideDestination); err != nil {
			return err
		}
		var last *int64
		tail, err := tx.Last(ctx, collection)
		switch {
		case err == nil:
			last = &tail.Position
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		pos, err := orderkey.NextAfter(last)
		if errors.Is(err, orderkey.ErrPrecisionExhausted) {
			siblings, err := tx.ListSorted(ctx, collection)
			if err != nil {
				return err
			}
			pos, err = e.slotPosition(ctx, tx, collection, siblings, len(siblings), "insert")
			if err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		item, err = tx.Create(ctx, store.Item{
			ID:           id,
			CollectionID: collection,
			Position:     pos,
			Data:         data,
		})
		return err
	})
	if err != nil {
		return store.Item{}, translate(err)
	}
	e.notify(ctx, collection)
	return item, nil
}

// InsertAt creates a new item so that it ends up at index of the collection.
// An index past the end appends. Exhausted gaps re-space the collection in the
// same transaction.
func (e *Engine) InsertAt(ctx context.Context, collection, id string, data json.RawMessage, index int) (item store.Item, err error) {
	ctx, span := startSpan(ctx, "InsertAt",
		attribute.String("ordering.collection", collection),
		attribute.String("ordering.item", id),
		attribute.Int("ordering.index", index))
	start := time.Now()
	defer func() { finish(span, "insert_at", start, err) }()

	if index < 0 {
		return store.Item{}, fmt.Errorf("%w: index %d", ErrInvalidPosition, index)
	}

	err = e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := requireCollection(ctx, tx, collection, SideDestination); err != nil {
			return err
		}
		siblings, err := tx.ListSorted(ctx, collection)
		if err != nil {
			return err
		}
		pos, err := e.slotPosition(ctx, tx, collection, siblings, index, "insert")
		if err != nil {
			return err
		}
		item, err = tx.Create(ctx, store.Item{ID: id, CollectionID: collection, Position: pos, Data: data})
		return err
	})
	if err != nil {
		return store.Item{}, translate(err)
	}
	e.notify(ctx, collection)
	return item, nil
}

// SetPosition writes an explicit position for an item without looking at its
// neighbours. Positions outside [orderkey.MinPosition, orderkey.MaxPosition]
// are rejected with ErrInvalidPosition.
func (e *Engine) SetPosition(ctx context.Context, collection, id string, position int64) (err error) {
	ctx, span := startSpan(ctx, "SetPosition",
		attribute.String("ordering.collection", collection),
		attribute.String("ordering.item", id))
	start := time.Now()
	defer func() { finish(span, "set_position", start, err) }()

	if !orderkey.InRange(position) {
		return fmt.Errorf("%w: position %d outside [%d, %d]", ErrInvalidPosition, position, orderkey.MinPosition, orderkey.MaxPosition)
	}

	item, err := e.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := e.store.Update(ctx, collection, id, store.Patch{Position: &position, ExpectedVersion: e.expected(item)}); err != nil {
		return translate(err)
	}
	e.notify(ctx, collection)
	return nil
}

// UpdateData rewrites an item's payload with mutate, guarded by the version it read.
func (e *Engine) UpdateData(ctx context.Context, collection, id string, mutate func(json.RawMessage) (json.RawMessage, error)) (item store.Item, err error) {
	err = e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		current, err := tx.Get(ctx, collection, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s in %s", ErrItemNotFound, id, collection)
		}
		if err != nil {
			return err
		}
		data, err := mutate(current.Data)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, collection, id, store.Patch{Data: data, ExpectedVersion: e.expected(current)}); err != nil {
			return err
		}
		item, err = tx.Get(ctx, collection, id)
		return err
	})
	if err != nil {
		return store.Item{}, translate(err)
	}
	e.notify(ctx, collection)
	return item, nil
}

// Delete removes one item. Siblings keep their positions.
func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	err := e.store.Delete(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s in %s", ErrItemNotFound, id, collection)
	}
	if err != nil {
		return translate(err)
	}
	e.notify(ctx, collection)
	return nil
}

// DeleteAll removes every item of collection in one batch and returns how many were removed.
func (e *Engine) DeleteAll(ctx context.Context, collection string) (int, error) {
	items, err := e.store.ListSorted(ctx, collection)
	if err != nil {
		return 0, translate(err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	ops := make([]store.Op, 0, len(items))
	for _, it := range items {
		op := store.DeleteOp(collection, it.ID)
		op.Patch.ExpectedVersion = e.expected(it)
		ops = append(ops, op)
	}
	if err := e.store.Batch(ctx, ops); err != nil {
		return 0, translate(err)
	}
	e.notify(ctx, collection)
	return len(items), nil
}

// DeleteWithChildren removes a document together with every item of the given
// child collections, atomically.
func (e *Engine) DeleteWithChildren(ctx context.Context, collection, id string, children ...string) error {
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, child := range children {
			items, err := tx.ListSorted(ctx, child)
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := tx.Delete(ctx, child, it.ID); err != nil {
					return err
				}
			}
		}
		if err := tx.Delete(ctx, collection, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s in %s", ErrItemNotFound, id, collection)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	e.notify(ctx, append([]string{collection}, children...)...)
	return nil
}

// Reorder moves itemID to target within collection. After it commits, the
// item sits exactly at target among the other items.
func (e *Engine) Reorder(ctx context.Context, collection, itemID string, target int) (err error) {
	ctx, span := startSpan(ctx, "Reorder",
		attribute.String("ordering.collection", collection),
		attribute.String("ordering.item", itemID),
		attribute.Int("ordering.target", target))
	start := time.Now()
	defer func() { finish(span, "reorder", start, err) }()

	return e.reorder(ctx, collection, itemID, target)
}

func (e *Engine) reorder(ctx context.Context, collection, itemID string, target int) error {
	items, err := e.store.ListSorted(ctx, collection)
	if err != nil {
		return translate(err)
	}
	if target < 0 || target >= len(items) {
		return fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidPosition, target, len(items))
	}

	current := store.IndexOf(items, itemID)
	if current < 0 {
		return fmt.Errorf("%w: %s in %s", ErrItemNotFound, itemID, collection)
	}
	if current == target {
		e.logger.Debug("reorder is a no-op", "collection", collection, "item", itemID, "index", target)
		return nil
	}

	var pos int64
	if target == 0 || target == len(items)-1 {
		pos, err = orderkey.PositionForInsertAt(target, store.Positions(items))
	} else {
		siblings := slices.Delete(slices.Clone(items), current, current+1)
		pos, err = orderkey.PositionAt(target, store.Positions(siblings))
	}
	if errors.Is(err, orderkey.ErrPrecisionExhausted) {
		e.logger.Debug("no room at target, rebalancing",
			"collection", collection,
			"item", itemID,
			"index", target)
		return e.rebalance(ctx, collection, itemID, target, "reorder")
	}
	if err != nil {
		return err
	}

	patch := store.Patch{Position: &pos, ExpectedVersion: e.expected(items[current])}
	if err := e.store.Update(ctx, collection, itemID, patch); err != nil {
		if errors.Is(err, store.ErrConflict) {
			e.logger.Warn("reorder lost a concurrent write", "collection", collection, "item", itemID)
		}
		return translate(err)
	}
	e.notify(ctx, collection)
	return nil
}

// requireCollection fails with CollectionNotFoundError when collection's parent is missing.
func requireCollection(ctx context.Context, r store.Reader, collection string, side Side) error {
	ok, err := store.CollectionExists(ctx, r, collection)
	if err != nil {
		return err
	}
	if !ok {
		return &CollectionNotFoundError{Side: side, Collection: collection}
	}
	return nil
}
