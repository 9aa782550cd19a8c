package ordering

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/thenoetrevino/leadboard/internal/orderkey"
	"github.com/thenoetrevino/leadboard/internal/store"
	"go.opentelemetry.io/otel/attribute"
)

// assignment is the position a rebalance gives to one existing item.
type assignment struct {
	item     store.Item
	position int64
}

// planSpacing lays others out evenly with a reserved slot at index (clamped to
// [0, len(others)]). It returns the new position of every item in others and
// the position reserved for the slot.
func planSpacing(others []store.Item, index int) ([]assignment, int64) {
	index = max(0, min(index, len(others)))
	positions := orderkey.Spaced(len(others) + 1)

	out := make([]assignment, 0, len(others))
	for i, it := range others {
		slot := i
		if i >= index {
			slot = i + 1
		}
		out = append(out, assignment{item: it, position: positions[slot]})
	}
	return out, positions[index]
}

// Rebalance re-spaces every item of collection to multiples of the increment.
// When movingID is set, that item is placed at target and every other item
// keeps its current relative order. An empty movingID keeps the current order.
// Re-running it converges on the same assignment.
func (e *Engine) Rebalance(ctx context.Context, collection, movingID string, target int) (err error) {
	ctx, span := startSpan(ctx, "Rebalance",
		attribute.String("ordering.collection", collection),
		attribute.String("ordering.item", movingID),
		attribute.Int("ordering.target", target))
	start := time.Now()
	defer func() { finish(span, "rebalance", start, err) }()

	return e.rebalance(ctx, collection, movingID, target, "manual")
}

func (e *Engine) rebalance(ctx context.Context, collection, movingID string, target int, trigger string) error {
	items, err := e.store.ListSorted(ctx, collection)
	if err != nil {
		return translate(err)
	}
	if len(items) == 0 {
		return nil
	}

	var ops []store.Op
	if movingID == "" {
		plan, _ := planSpacing(items, len(items))
		ops = e.positionOps(collection, plan)
	} else {
		idx := store.IndexOf(items, movingID)
		if idx < 0 {
			return fmt.Errorf("%w: %s in %s", ErrItemNotFound, movingID, collection)
		}
		moving := items[idx]
		others := slices.Delete(slices.Clone(items), idx, idx+1)
		plan, slot := planSpacing(others, target)
		ops = e.positionOps(collection, append(plan, assignment{item: moving, position: slot}))
	}

	if err := e.store.Batch(ctx, ops); err != nil {
		if errors.Is(err, store.ErrConflict) {
			e.logger.Warn("rebalance lost a concurrent write", "collection", collection, "trigger", trigger)
		}
		return translate(err)
	}

	recordRebalance(trigger, len(ops))
	e.logger.Debug("collection rebalanced", "collection", collection, "items", len(ops), "trigger", trigger)
	e.notify(ctx, collection)
	return nil
}

func (e *Engine) positionOps(collection string, plan []assignment) []store.Op {
	ops := make([]store.Op, 0, len(plan))
	for _, a := range plan {
		pos := a.position
		ops = append(ops, store.UpdateOp(collection, a.item.ID, store.Patch{
			Position:        &pos,
			ExpectedVersion: e.expected(a.item),
		}))
	}
	return ops
}

// slotPosition returns a position that puts a new entry at index among
// siblings. When the neighbours are too close it re-spaces siblings inside tx
// and returns the reserved slot.
func (e *Engine) slotPosition(ctx context.Context, tx store.Tx, collection string, siblings []store.Item, index int, trigger string) (int64, error) {
	pos, err := orderkey.PositionAt(index, store.Positions(siblings))
	if err == nil {
		return pos, nil
	}
	if !errors.Is(err, orderkey.ErrPrecisionExhausted) {
		return 0, err
	}

	e.logger.Debug("neighbours too close, rebalancing in transaction", "collection", collection, "index", index)
	plan, slot := planSpacing(siblings, index)
	for _, a := range plan {
		p := a.position
		if err := tx.Update(ctx, collection, a.item.ID, store.Patch{Position: &p, ExpectedVersion: e.expected(a.item)}); err != nil {
			return 0, err
		}
	}
	recordRebalance(trigger, len(plan))
	return slot, nil
}
