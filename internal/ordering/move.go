package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thenoetrevino/leadboard/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// MoveRequest relocates ItemID from collection From to collection To.
type MoveRequest struct {
	From   string
	To     string
	ItemID string
	// Index in the destination. Nil appends after the last item; an index at
	// or past the last item also appends.
	Index *int
}

// Move deletes the item from From and recreates it under To in one
// transaction: same id, data and creation time, new collection and position.
// Readers never see it in both collections or in neither.
func (e *Engine) Move(ctx context.Context, req MoveRequest) (moved store.Item, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("ordering.from", req.From),
		attribute.String("ordering.to", req.To),
		attribute.String("ordering.item", req.ItemID),
	}
	if req.Index != nil {
		attrs = append(attrs, attribute.Int("ordering.index", *req.Index))
	}
	ctx, span := startSpan(ctx, "Move", attrs...)
	start := time.Now()
	defer func() { finish(span, "move", start, err) }()

	if req.Index != nil && *req.Index < 0 {
		return store.Item{}, fmt.Errorf("%w: index %d", ErrInvalidPosition, *req.Index)
	}

	if err := e.checkCollections(ctx, req.From, req.To); err != nil {
		return store.Item{}, err
	}

	if req.From == req.To {
		return e.moveWithin(ctx, req)
	}

	err = e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		item, err := tx.Get(ctx, req.From, req.ItemID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s in %s", ErrItemNotFound, req.ItemID, req.From)
		}
		if err != nil {
			return err
		}

		pos, err := e.destinationPosition(ctx, tx, req.To, req.Index)
		if err != nil {
			return err
		}

		if err := tx.Delete(ctx, req.From, req.ItemID); err != nil {
			return err
		}

		item.CollectionID = req.To
		item.Position = pos
		item.UpdatedAt = e.now().UTC()
		created, err := tx.Create(ctx, item)
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("%w: %s already in %s", ErrAlreadyExists, req.ItemID, req.To)
		}
		if err != nil {
			return err
		}
		moved = created
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			e.logger.Warn("move lost a concurrent write", "from", req.From, "to", req.To, "item", req.ItemID)
		}
		return store.Item{}, translate(err)
	}

	e.notify(ctx, req.From, req.To)
	return moved, nil
}

// checkCollections verifies both ends of a move concurrently.
func (e *Engine) checkCollections(ctx context.Context, from, to string) error {
	var fromOK, toOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := store.CollectionExists(gctx, e.store, from)
		fromOK = ok
		return err
	})
	g.Go(func() error {
		ok, err := store.CollectionExists(gctx, e.store, to)
		toOK = ok
		return err
	})
	if err := g.Wait(); err != nil {
		return translate(err)
	}

	if !fromOK {
		return &CollectionNotFoundError{Side: SideSource, Collection: from}
	}
	if !toOK {
		return &CollectionNotFoundError{Side: SideDestination, Collection: to}
	}
	return nil
}

// destinationPosition appends when index is nil or at/after the last item,
// puts the item first for index 0, and bisects its neighbours otherwise.
func (e *Engine) destinationPosition(ctx context.Context, tx store.Tx, to string, index *int) (int64, error) {
	dest, err := tx.ListSorted(ctx, to)
	if err != nil {
		return 0, err
	}
	slot := len(dest)
	if index != nil && (*index <= 0 || *index < len(dest)-1) {
		slot = max(*index, 0)
	}
	return e.slotPosition(ctx, tx, to, dest, slot, "move")
}

// moveWithin handles a move whose source and destination are the same collection.
func (e *Engine) moveWithin(ctx context.Context, req MoveRequest) (store.Item, error) {
	items, err := e.store.ListSorted(ctx, req.From)
	if err != nil {
		return store.Item{}, translate(err)
	}
	if store.IndexOf(items, req.ItemID) < 0 {
		return store.Item{}, fmt.Errorf("%w: %s in %s", ErrItemNotFound, req.ItemID, req.From)
	}

	target := len(items) - 1
	if req.Index != nil && *req.Index < target {
		target = *req.Index
	}
	if err := e.reorder(ctx, req.From, req.ItemID, target); err != nil {
		return store.Item{}, err
	}
	return e.Get(ctx, req.From, req.ItemID)
}
