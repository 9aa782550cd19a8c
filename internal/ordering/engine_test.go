package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/leadboard/internal/orderkey"
	"github.com/thenoetrevino/leadboard/internal/store"
	"github.com/thenoetrevino/leadboard/internal/store/badgerstore"
	"github.com/thenoetrevino/leadboard/internal/store/sqlstore"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

const col = "leads"

// forEachStore runs fn against every backend
func forEachStore(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		s, err := sqlstore.Open(context.Background(), sqlstore.Config{Dialect: sqlstore.SQLite, Path: ":memory:"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
	t.Run("badger", func(t *testing.T) {
		s, err := badgerstore.Open(badgerstore.InMemoryConfig())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

// seed creates items in order with the given positions
func seed(t *testing.T, s store.Store, collection string, ids []string, positions []int64) {
	t.Helper()
	for i, id := range ids {
		_, err := s.Create(context.Background(), store.Item{
			ID:           id,
			CollectionID: collection,
			Position:     positions[i],
			Data:         json.RawMessage(fmt.Sprintf(`{"name":%q}`, id)),
		})
		require.NoError(t, err)
	}
}

func order(t *testing.T, s store.Store, collection string) []string {
	t.Helper()
	items, err := s.ListSorted(context.Background(), collection)
	require.NoError(t, err)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func positionsOf(t *testing.T, s store.Store, collection string) []int64 {
	t.Helper()
	items, err := s.ListSorted(context.Background(), collection)
	require.NoError(t, err)
	return store.Positions(items)
}

// arrayMove is the reference "remove then insert" result
func arrayMove(ids []string, from, to int) []string {
	out := slices.Clone(ids)
	moving := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, moving)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingNotifier) CollectionsChanged(_ context.Context, collections ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, slices.Clone(collections))
}

// ============================================================================
// INSERT
// ============================================================================

func TestInsertAtEnd_EmptyThenAppend(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()

		first, err := e.InsertAtEnd(ctx, col, "a", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), first.Position)

		second, err := e.InsertAtEnd(ctx, col, "b", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), second.Position)

		_, err = e.InsertAtEnd(ctx, col, "a", nil)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestInsertAtEnd_MissingCollection(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		_, err := New(s).InsertAtEnd(context.Background(), "boards/nope/statuses", "s1", nil)
		assert.ErrorIs(t, err, ErrCollectionNotFound)

		var cnf *CollectionNotFoundError
		require.ErrorAs(t, err, &cnf)
		assert.Equal(t, SideDestination, cnf.Side)
	})
}

func TestInsertAt(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		seed(t, s, col, []string{"a", "b", "c"}, []int64{1000, 2000, 3000})

		_, err := e.InsertAt(ctx, col, "x", nil, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "x", "b", "c"}, order(t, s, col))

		_, err = e.InsertAt(ctx, col, "y", nil, 0)
		require.NoError(t, err)
		_, err = e.InsertAt(ctx, col, "z", nil, 99)
		require.NoError(t, err)
		assert.Equal(t, []string{"y", "a", "x", "b", "c", "z"}, order(t, s, col))

		_, err = e.InsertAt(ctx, col, "bad", nil, -1)
		assert.ErrorIs(t, err, ErrInvalidPosition)
	})
}

func TestInsertAt_ExhaustedGapRespacesInSameTransaction(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		seed(t, s, col, []string{"a", "b"}, []int64{5, 6})

		item, err := e.InsertAt(context.Background(), col, "x", nil, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), item.Position)
		assert.Equal(t, []string{"a", "x", "b"}, order(t, s, col))
		assert.Equal(t, []int64{1000, 2000, 3000}, positionsOf(t, s, col))
	})
}

// ============================================================================
// REORDER
// ============================================================================

func TestReorder_MoveToHead(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s, col, []string{"A", "B", "C", "D"}, []int64{1000, 2000, 3000, 4000})

		require.NoError(t, New(s).Reorder(context.Background(), col, "C", 0))
		assert.Equal(t, []string{"C", "A", "B", "D"}, order(t, s, col))
	})
}

func TestReorder_MatchesArrayMove(t *testing.T) {
	ids := []string{"A", "B", "C", "D", "E"}

	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()

		for from := range ids {
			for to := range ids {
				collection := fmt.Sprintf("reorder-%d-%d", from, to)
				seed(t, s, collection, ids, orderkey.Spaced(len(ids)))

				require.NoError(t, e.Reorder(ctx, collection, ids[from], to))
				assert.Equal(t, arrayMove(ids, from, to), order(t, s, collection), "from %d to %d", from, to)
			}
		}
	})
}

func TestReorder_NoOpWritesNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		n := &recordingNotifier{}
		seed(t, s, col, []string{"A", "B", "C"}, []int64{1000, 2000, 3000})

		require.NoError(t, New(s, WithNotifier(n)).Reorder(ctx, col, "B", 1))

		b, err := s.Get(ctx, col, "B")
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.Version)
		assert.Equal(t, int64(2000), b.Position)
		assert.Empty(t, n.calls)
	})
}

func TestReorder_Errors(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B"}, []int64{1000, 2000})

		assert.ErrorIs(t, e.Reorder(ctx, col, "A", 2), ErrInvalidPosition)
		assert.ErrorIs(t, e.Reorder(ctx, col, "A", -1), ErrInvalidPosition)
		assert.ErrorIs(t, e.Reorder(ctx, col, "missing", 1), ErrItemNotFound)
		// empty collection: every index is out of range
		assert.ErrorIs(t, e.Reorder(ctx, "empty", "A", 0), ErrInvalidPosition)
	})
}

func TestReorder_TooCloseNeighboursTriggerRebalance(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s, col, []string{"X", "Y", "Z"}, []int64{5, 6, 1000})

		require.NoError(t, New(s).Reorder(context.Background(), col, "Z", 1))

		assert.Equal(t, []string{"X", "Z", "Y"}, order(t, s, col))
		for _, p := range positionsOf(t, s, col) {
			assert.Zero(t, p%orderkey.Increment, "position %d is not re-spaced", p)
		}
	})
}

func TestReorder_MiddleWritesSinglePosition(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C", "D"}, []int64{1000, 2000, 3000, 4000})

		require.NoError(t, New(s).Reorder(ctx, col, "A", 2))

		assert.Equal(t, []string{"B", "C", "A", "D"}, order(t, s, col))
		a, err := s.Get(ctx, col, "A")
		require.NoError(t, err)
		assert.Equal(t, int64(3500), a.Position)
		b, err := s.Get(ctx, col, "B")
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.Version, "siblings are untouched")
	})
}

func TestReorder_NotifiesCollection(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		n := &recordingNotifier{}
		seed(t, s, col, []string{"A", "B"}, []int64{1000, 2000})

		require.NoError(t, New(s, WithNotifier(n)).Reorder(context.Background(), col, "B", 0))
		assert.Equal(t, [][]string{{col}}, n.calls)
	})
}

// ============================================================================
// CONCURRENCY
// ============================================================================

// interleavingStore runs hook once, right after the first ListSorted returns,
// to simulate a concurrent writer slipping into the read/write window.
type interleavingStore struct {
	store.Store
	once sync.Once
	hook func()
}

func (s *interleavingStore) ListSorted(ctx context.Context, collection string) ([]store.Item, error) {
	items, err := s.Store.ListSorted(ctx, collection)
	s.once.Do(s.hook)
	return items, err
}

func TestReorder_ConcurrentWriteAborts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C"}, []int64{1000, 2000, 3000})

		racy := &interleavingStore{Store: s, hook: func() {
			pos := int64(10_000)
			require.NoError(t, s.Update(ctx, col, "A", store.Patch{Position: &pos}))
		}}

		err := New(racy).Reorder(ctx, col, "A", 2)
		assert.ErrorIs(t, err, ErrTransactionAborted)
		assert.True(t, IsRetryable(err))
		assert.False(t, errors.Is(err, store.ErrConflict), "store errors must not leak")

		// the concurrent write survives
		a, err := s.Get(ctx, col, "A")
		require.NoError(t, err)
		assert.Equal(t, int64(10_000), a.Position)
	})
}

// Without version checks the engine behaves last-write-wins per document: a
// reorder computed from a stale read silently overwrites a concurrent write.
func TestReorder_WithoutVersionChecksIsLastWriteWins(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C", "D"}, []int64{1000, 2000, 3000, 4000})

		racy := &interleavingStore{Store: s, hook: func() {
			// concurrent writer puts C at the head
			pos := int64(0)
			require.NoError(t, s.Update(ctx, col, "C", store.Patch{Position: &pos}))
		}}

		// reorder based on the stale list puts C between A and B
		require.NoError(t, New(racy, WithoutVersionChecks()).Reorder(ctx, col, "C", 1))
		assert.Equal(t, []string{"A", "C", "B", "D"}, order(t, s, col))
	})
}

func TestRetry_RecoversFromAbortedReorder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C"}, []int64{1000, 2000, 3000})

		racy := &interleavingStore{Store: s, hook: func() {
			pos := int64(10_000)
			require.NoError(t, s.Update(ctx, col, "A", store.Patch{Position: &pos}))
		}}
		e := New(racy)

		calls := 0
		err := Retry(ctx, 3, func(ctx context.Context) error {
			calls++
			return e.Reorder(ctx, col, "A", 0)
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"A", "B", "C"}, order(t, s, col))
	})
}

// ============================================================================
// DATA AND DELETION
// ============================================================================

func TestUpdateData(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		seed(t, s, col, []string{"A"}, []int64{1000})

		item, err := e.UpdateData(ctx, col, "A", func(json.RawMessage) (json.RawMessage, error) {
			return json.RawMessage(`{"name":"renamed"}`), nil
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"renamed"}`, string(item.Data))
		assert.Equal(t, int64(1000), item.Position)
		assert.Equal(t, int64(2), item.Version)

		boom := errors.New("boom")
		_, err = e.UpdateData(ctx, col, "A", func(json.RawMessage) (json.RawMessage, error) { return nil, boom })
		assert.ErrorIs(t, err, ErrStore)

		_, err = e.UpdateData(ctx, col, "missing", func(d json.RawMessage) (json.RawMessage, error) { return d, nil })
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestSetPosition(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B"}, []int64{1000, 2000})

		require.NoError(t, New(s).SetPosition(ctx, col, "B", 500))
		assert.Equal(t, []string{"B", "A"}, order(t, s, col))
		assert.ErrorIs(t, New(s).SetPosition(ctx, col, "missing", 1), ErrItemNotFound)
	})
}

// ============================================================================
// EXTREME POSITIONS
// ============================================================================

func TestSetPosition_RejectsOutOfRange(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B"}, []int64{1000, 2000})
		e := New(s)

		for _, p := range []int64{math.MaxInt64 - 10, math.MinInt64, orderkey.MaxPosition + 1, orderkey.MinPosition - 1} {
			assert.ErrorIs(t, e.SetPosition(ctx, col, "B", p), ErrInvalidPosition, "position %d", p)
		}
		assert.Equal(t, []int64{1000, 2000}, positionsOf(t, s, col))

		require.NoError(t, e.SetPosition(ctx, col, "A", orderkey.MaxPosition))
		assert.Equal(t, []string{"B", "A"}, order(t, s, col))
	})
}

func TestInsertAtEnd_TailAtUpperBoundRespaces(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B"}, []int64{1000, 2000})
		e := New(s)
		require.NoError(t, e.SetPosition(ctx, col, "B", orderkey.MaxPosition-10))

		item, err := e.InsertAtEnd(ctx, col, "C", nil)
		require.NoError(t, err)

		assert.Equal(t, int64(3000), item.Position)
		assert.Equal(t, []string{"A", "B", "C"}, order(t, s, col))
		assert.Equal(t, []int64{1000, 2000, 3000}, positionsOf(t, s, col))
	})
}

func TestReorder_BetweenLargeNeighbours(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s, col, []string{"A", "B", "C", "D"},
			[]int64{1000, math.MaxInt64 - 100, math.MaxInt64 - 10, math.MaxInt64 - 1})

		require.NoError(t, New(s).Reorder(context.Background(), col, "A", 1))

		assert.Equal(t, []string{"B", "A", "C", "D"}, order(t, s, col))
		assert.Equal(t, int64(math.MaxInt64-55), positionsOf(t, s, col)[1])
	})
}

func TestReorder_ToTailAtUpperBoundRebalances(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s, col, []string{"A", "B"}, []int64{1000, orderkey.MaxPosition})

		require.NoError(t, New(s).Reorder(context.Background(), col, "A", 1))

		assert.Equal(t, []string{"B", "A"}, order(t, s, col))
		assert.Equal(t, []int64{1000, 2000}, positionsOf(t, s, col))
	})
}

func TestReorder_ToHeadAtLowerBoundRebalances(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seed(t, s, col, []string{"A", "B"}, []int64{orderkey.MinPosition, 1000})

		require.NoError(t, New(s).Reorder(context.Background(), col, "B", 0))

		assert.Equal(t, []string{"B", "A"}, order(t, s, col))
		assert.Equal(t, []int64{1000, 2000}, positionsOf(t, s, col))
	})
}

func TestDeleteKeepsSiblingPositions(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C"}, []int64{1000, 2000, 3000})

		require.NoError(t, e.Delete(ctx, col, "B"))
		assert.Equal(t, []int64{1000, 3000}, positionsOf(t, s, col))
		assert.ErrorIs(t, e.Delete(ctx, col, "B"), ErrItemNotFound)
	})
}

func TestDeleteAll(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		seed(t, s, col, []string{"A", "B", "C"}, []int64{1000, 2000, 3000})
		seed(t, s, "other", []string{"A"}, []int64{1000})

		n, err := e.DeleteAll(ctx, col)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Empty(t, order(t, s, col))
		assert.Equal(t, []string{"A"}, order(t, s, "other"))

		n, err = e.DeleteAll(ctx, col)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestDeleteWithChildren(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		e := New(s)
		ctx := context.Background()
		statuses := "boards/b1/statuses"
		leads := "boards/b1/statuses/s1/leads"
		seed(t, s, "boards", []string{"b1"}, []int64{1000})
		seed(t, s, statuses, []string{"s1", "s2"}, []int64{1000, 2000})
		seed(t, s, leads, []string{"l1", "l2"}, []int64{1000, 2000})

		require.NoError(t, e.DeleteWithChildren(ctx, statuses, "s1", leads))
		assert.Equal(t, []string{"s2"}, order(t, s, statuses))
		assert.Empty(t, order(t, s, leads))

		assert.ErrorIs(t, e.DeleteWithChildren(ctx, statuses, "s1", leads), ErrItemNotFound)
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"conflict", fmt.Errorf("wrapped: %w", store.ErrConflict), ErrTransactionAborted},
		{"not found", store.ErrNotFound, ErrItemNotFound},
		{"exists", store.ErrAlreadyExists, ErrAlreadyExists},
		{"driver", errors.New("disk I/O error"), ErrStore},
		{"canceled", context.Canceled, context.Canceled},
		{"own kind", ErrInvalidPosition, ErrInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			assert.ErrorIs(t, got, tt.want)
		})
	}
	assert.NoError(t, translate(nil))
	assert.False(t, errors.Is(translate(store.ErrConflict), store.ErrConflict))
}
