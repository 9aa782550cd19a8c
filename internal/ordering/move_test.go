package ordering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/leadboard/internal/orderkey"
	"github.com/thenoetrevino/leadboard/internal/store"
)

const (
	board   = "boards"
	columns = "boards/b1/statuses"
	todo    = "boards/b1/statuses/todo/leads"
	doing   = "boards/b1/statuses/doing/leads"
)

// seedBoard creates board b1 with statuses todo and doing
func seedBoard(t *testing.T, s store.Store) {
	t.Helper()
	seed(t, s, board, []string{"b1"}, []int64{1000})
	seed(t, s, columns, []string{"todo", "doing"}, []int64{1000, 2000})
}

func intPtr(i int) *int { return &i }

func TestMove_AppendsWhenIndexOmitted(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1", "l2"}, []int64{1000, 2000})
		seed(t, s, doing, []string{"d1"}, []int64{7000})

		before, err := s.Get(ctx, todo, "l1")
		require.NoError(t, err)

		moved, err := New(s).Move(ctx, MoveRequest{From: todo, To: doing, ItemID: "l1"})
		require.NoError(t, err)

		assert.Equal(t, "l1", moved.ID)
		assert.Equal(t, doing, moved.CollectionID)
		assert.Equal(t, int64(8000), moved.Position)
		assert.JSONEq(t, string(before.Data), string(moved.Data))
		assert.Equal(t, before.CreatedAt.UnixMicro(), moved.CreatedAt.UnixMicro())
		assert.False(t, moved.UpdatedAt.Before(before.UpdatedAt))

		assert.Equal(t, []string{"l2"}, order(t, s, todo))
		assert.Equal(t, []string{"d1", "l1"}, order(t, s, doing))
		// removal never rewrites the source
		assert.Equal(t, []int64{2000}, positionsOf(t, s, todo))
	})
}

func TestMove_IntoEmptyCollection(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1"}, []int64{1000})

		moved, err := New(s).Move(ctx, MoveRequest{From: todo, To: doing, ItemID: "l1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), moved.Position)

		// todo is now empty; an explicit index still lands on the initial position
		moved, err = New(s).Move(ctx, MoveRequest{From: doing, To: todo, ItemID: "l1", Index: intPtr(0)})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), moved.Position)
	})
}

func TestMove_DestinationIndex(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"head", 0, []string{"x", "a", "b", "c"}},
		{"between first and second", 1, []string{"a", "x", "b", "c"}},
		{"last index appends", 2, []string{"a", "b", "c", "x"}},
		{"past the end appends", 10, []string{"a", "b", "c", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachStore(t, func(t *testing.T, s store.Store) {
				seedBoard(t, s)
				seed(t, s, todo, []string{"x"}, []int64{1000})
				seed(t, s, doing, []string{"a", "b", "c"}, []int64{1000, 2000, 3000})

				_, err := New(s).Move(context.Background(), MoveRequest{From: todo, To: doing, ItemID: "x", Index: intPtr(tt.index)})
				require.NoError(t, err)
				assert.Equal(t, tt.want, order(t, s, doing))
			})
		})
	}
}

func TestMove_TooCloseDestinationIsRespaced(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedBoard(t, s)
		seed(t, s, todo, []string{"x"}, []int64{1000})
		seed(t, s, doing, []string{"a", "b", "c"}, []int64{5, 6, 7})

		moved, err := New(s).Move(context.Background(), MoveRequest{From: todo, To: doing, ItemID: "x", Index: intPtr(1)})
		require.NoError(t, err)

		assert.Equal(t, int64(2000), moved.Position)
		assert.Equal(t, []string{"a", "x", "b", "c"}, order(t, s, doing))
		assert.Equal(t, []int64{1000, 2000, 3000, 4000}, positionsOf(t, s, doing))
	})
}

func TestMove_Atomicity(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1", "l2", "l3"}, []int64{1000, 2000, 3000})

		_, err := New(s).Move(ctx, MoveRequest{From: todo, To: doing, ItemID: "l2", Index: intPtr(0)})
		require.NoError(t, err)

		// read both sides in one transaction: exactly one copy exists
		err = s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			from, err := tx.ListSorted(ctx, todo)
			if err != nil {
				return err
			}
			to, err := tx.ListSorted(ctx, doing)
			if err != nil {
				return err
			}
			count := 0
			if store.IndexOf(from, "l2") >= 0 {
				count++
			}
			if store.IndexOf(to, "l2") >= 0 {
				count++
			}
			assert.Equal(t, 1, count)
			assert.Equal(t, 0, store.IndexOf(to, "l2"))
			return nil
		})
		require.NoError(t, err)
	})
}

func TestMove_ConcurrentReaderSeesExactlyOneCopy(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1", "l2"}, []int64{1000, 2000})
		seed(t, s, doing, []string{"d1"}, []int64{1000})
		e := New(s)

		done := make(chan struct{})
		var moveErr error
		go func() {
			defer close(done)
			from, to := todo, doing
			for i := 0; i < 20; i++ {
				if _, err := e.Move(ctx, MoveRequest{From: from, To: to, ItemID: "l1", Index: intPtr(i % 2)}); err != nil {
					moveErr = err
					return
				}
				from, to = to, from
			}
		}()

		reads := 0
		for running := true; running; {
			select {
			case <-done:
				running = false
			default:
			}

			err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
				from, err := tx.ListSorted(ctx, todo)
				if err != nil {
					return err
				}
				to, err := tx.ListSorted(ctx, doing)
				if err != nil {
					return err
				}
				copies := 0
				if store.IndexOf(from, "l1") >= 0 {
					copies++
				}
				if store.IndexOf(to, "l1") >= 0 {
					copies++
				}
				assert.Equal(t, 1, copies, "read %d", reads)
				return nil
			})
			require.NoError(t, err)
			reads++
		}

		require.NoError(t, moveErr)
		assert.Positive(t, reads)
		assert.Contains(t, order(t, s, todo), "l1")
		assert.NotContains(t, order(t, s, doing), "l1")
	})
}

func TestMove_TailAtUpperBoundRespacesDestination(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedBoard(t, s)
		seed(t, s, todo, []string{"x"}, []int64{1000})
		seed(t, s, doing, []string{"a"}, []int64{orderkey.MaxPosition})

		moved, err := New(s).Move(context.Background(), MoveRequest{From: todo, To: doing, ItemID: "x"})
		require.NoError(t, err)

		assert.Equal(t, int64(2000), moved.Position)
		assert.Equal(t, []string{"a", "x"}, order(t, s, doing))
		assert.Equal(t, []int64{1000, 2000}, positionsOf(t, s, doing))
	})
}

func TestMove_FailedMoveLeavesSourceIntact(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1"}, []int64{1000})
		// an item with the same id already sits in the destination
		seed(t, s, doing, []string{"l1"}, []int64{1000})

		_, err := New(s).Move(ctx, MoveRequest{From: todo, To: doing, ItemID: "l1"})
		assert.ErrorIs(t, err, ErrAlreadyExists)

		assert.Equal(t, []string{"l1"}, order(t, s, todo))
		assert.Equal(t, []string{"l1"}, order(t, s, doing))
	})
}

func TestMove_CollectionNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1"}, []int64{1000})
		missing := "boards/b1/statuses/gone/leads"

		_, err := New(s).Move(ctx, MoveRequest{From: missing, To: doing, ItemID: "l1"})
		var cnf *CollectionNotFoundError
		require.ErrorAs(t, err, &cnf)
		assert.Equal(t, SideSource, cnf.Side)
		assert.Equal(t, missing, cnf.Collection)
		assert.ErrorIs(t, err, ErrCollectionNotFound)

		_, err = New(s).Move(ctx, MoveRequest{From: todo, To: missing, ItemID: "l1"})
		require.ErrorAs(t, err, &cnf)
		assert.Equal(t, SideDestination, cnf.Side)

		assert.Equal(t, []string{"l1"}, order(t, s, todo))
	})
}

func TestMove_ItemNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedBoard(t, s)
		_, err := New(s).Move(context.Background(), MoveRequest{From: todo, To: doing, ItemID: "ghost"})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestMove_NegativeIndex(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1"}, []int64{1000})
		_, err := New(s).Move(context.Background(), MoveRequest{From: todo, To: doing, ItemID: "l1", Index: intPtr(-1)})
		assert.ErrorIs(t, err, ErrInvalidPosition)
	})
}

func TestMove_SameCollectionReorders(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seedBoard(t, s)
		seed(t, s, todo, []string{"a", "b", "c"}, []int64{1000, 2000, 3000})
		e := New(s)

		_, err := e.Move(ctx, MoveRequest{From: todo, To: todo, ItemID: "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, order(t, s, todo))

		moved, err := e.Move(ctx, MoveRequest{From: todo, To: todo, ItemID: "a", Index: intPtr(0)})
		require.NoError(t, err)
		assert.Equal(t, todo, moved.CollectionID)
		assert.Equal(t, []string{"a", "b", "c"}, order(t, s, todo))
	})
}

func TestMove_NotifiesBothCollections(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		n := &recordingNotifier{}
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1"}, []int64{1000})

		_, err := New(s, WithNotifier(n)).Move(context.Background(), MoveRequest{From: todo, To: doing, ItemID: "l1"})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{todo, doing}}, n.calls)
	})
}

func TestMove_CanceledContext(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		seedBoard(t, s)
		seed(t, s, todo, []string{"l1"}, []int64{1000})

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		_, err := New(s).Move(ctx, MoveRequest{From: todo, To: doing, ItemID: "l1"})
		assert.Error(t, err)
		assert.Equal(t, []string{"l1"}, order(t, s, todo))
	})
}
