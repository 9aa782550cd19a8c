package ordering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/leadboard/internal/store"
)

func TestPlanSpacing(t *testing.T) {
	others := []store.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name  string
		index int
		want  map[string]int64
		slot  int64
	}{
		{"head", 0, map[string]int64{"a": 2000, "b": 3000, "c": 4000}, 1000},
		{"middle", 2, map[string]int64{"a": 1000, "b": 2000, "c": 4000}, 3000},
		{"tail", 3, map[string]int64{"a": 1000, "b": 2000, "c": 3000}, 4000},
		{"clamped high", 50, map[string]int64{"a": 1000, "b": 2000, "c": 3000}, 4000},
		{"clamped low", -4, map[string]int64{"a": 2000, "b": 3000, "c": 4000}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, slot := planSpacing(others, tt.index)
			got := make(map[string]int64, len(plan))
			for _, a := range plan {
				got[a.item.ID] = a.position
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.slot, slot)
		})
	}
}

func TestRebalance_PlacesMovingItem(t *testing.T) {
	tests := []struct {
		name   string
		moving string
		target int
		want   []string
	}{
		{"forward to the end", "A", 3, []string{"B", "C", "D", "A"}},
		{"forward to the middle", "A", 2, []string{"B", "C", "A", "D"}},
		{"backward", "D", 1, []string{"A", "D", "B", "C"}},
		{"same index", "B", 1, []string{"A", "B", "C", "D"}},
		{"target past the end", "B", 99, []string{"A", "C", "D", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachStore(t, func(t *testing.T, s store.Store) {
				seed(t, s, col, []string{"A", "B", "C", "D"}, []int64{1, 2, 3, 4})

				require.NoError(t, New(s).Rebalance(context.Background(), col, tt.moving, tt.target))
				assert.Equal(t, tt.want, order(t, s, col))
				assert.Equal(t, []int64{1000, 2000, 3000, 4000}, positionsOf(t, s, col))
			})
		})
	}
}

func TestRebalance_WithoutMovingItemKeepsOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s, col, []string{"A", "B", "C"}, []int64{-7, 3, 4})

		require.NoError(t, New(s).Rebalance(context.Background(), col, "", 0))
		assert.Equal(t, []string{"A", "B", "C"}, order(t, s, col))
		assert.Equal(t, []int64{1000, 2000, 3000}, positionsOf(t, s, col))
	})
}

func TestRebalance_Idempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C", "D"}, []int64{10, 11, 12, 13})

		require.NoError(t, e.Rebalance(ctx, col, "D", 0))
		first := positionsOf(t, s, col)
		firstOrder := order(t, s, col)

		require.NoError(t, e.Rebalance(ctx, col, "D", 0))
		assert.Equal(t, first, positionsOf(t, s, col))
		assert.Equal(t, firstOrder, order(t, s, col))
		assert.Equal(t, []string{"D", "A", "B", "C"}, firstOrder)
	})
}

func TestRebalance_Errors(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()

		// nothing to do on an empty collection
		require.NoError(t, e.Rebalance(ctx, col, "A", 0))

		seed(t, s, col, []string{"A"}, []int64{1})
		assert.ErrorIs(t, e.Rebalance(ctx, col, "ghost", 0), ErrItemNotFound)
	})
}

func TestRebalance_ConcurrentWriteAbortsWholeBatch(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C"}, []int64{1, 2, 3})

		racy := &interleavingStore{Store: s, hook: func() {
			pos := int64(50)
			require.NoError(t, s.Update(ctx, col, "C", store.Patch{Position: &pos}))
		}}

		err := New(racy).Rebalance(ctx, col, "", 0)
		assert.ErrorIs(t, err, ErrTransactionAborted)
		// nothing from the failed batch is visible
		assert.Equal(t, []int64{1, 2, 50}, positionsOf(t, s, col))
	})
}
