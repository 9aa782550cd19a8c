// Package storetest holds the behavioural test suite every store.Store backend must pass.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/leadboard/internal/store"
)

// Factory returns a fresh, empty store. Cleanup is registered by the factory.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, newStore(t)) })
	t.Run("ListSortedTieBreak", func(t *testing.T) { testListSorted(t, newStore(t)) })
	t.Run("Last", func(t *testing.T) { testLast(t, newStore(t)) })
	t.Run("UpdateBumpsVersion", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("UpdateStaleVersion", func(t *testing.T) { testUpdateConflict(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("BatchAllOrNothing", func(t *testing.T) { testBatchRollback(t, newStore(t)) })
	t.Run("BatchApplies", func(t *testing.T) { testBatch(t, newStore(t)) })
	t.Run("TxCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("CollectionExists", func(t *testing.T) { testCollectionExists(t, newStore(t)) })
}

func mustCreate(t *testing.T, s store.Store, collection, id string, pos int64) store.Item {
	t.Helper()
	item, err := s.Create(context.Background(), store.Item{
		ID:           id,
		CollectionID: collection,
		Position:     pos,
		Data:         json.RawMessage(`{"name":"` + id + `"}`),
	})
	require.NoError(t, err)
	return item
}

func ids(items []store.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, "boards", "b1", 1000)
	assert.Equal(t, int64(1), created.Version)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, "boards", got.CollectionID)
	assert.Equal(t, int64(1000), got.Position)
	assert.JSONEq(t, `{"name":"b1"}`, string(got.Data))
	assert.Equal(t, created.CreatedAt.UnixMicro(), got.CreatedAt.UnixMicro())

	_, err = s.Get(ctx, "boards", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// same id in another collection is a different document
	_, err = s.Get(ctx, "boards/b1/statuses", "b1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testCreateDuplicate(t *testing.T, s store.Store) {
	mustCreate(t, s, "boards", "b1", 1000)
	_, err := s.Create(context.Background(), store.Item{ID: "b1", CollectionID: "boards", Position: 5})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testListSorted(t *testing.T, s store.Store) {
	ctx := context.Background()
	col := "boards/b1/statuses"
	mustCreate(t, s, col, "c", 3000)
	mustCreate(t, s, col, "b", 1000)
	mustCreate(t, s, col, "a", 1000)
	mustCreate(t, s, col, "d", -1000)
	mustCreate(t, s, "boards/b2/statuses", "x", 1)

	items, err := s.ListSorted(ctx, col)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(items))

	empty, err := s.ListSorted(ctx, "boards/none/statuses")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testLast(t *testing.T, s store.Store) {
	ctx := context.Background()
	col := "boards/b1/statuses"

	_, err := s.Last(ctx, col)
	assert.ErrorIs(t, err, store.ErrNotFound)

	mustCreate(t, s, col, "a", 1000)
	mustCreate(t, s, col, "b", 5000)
	mustCreate(t, s, col, "c", 2000)

	last, err := s.Last(ctx, col)
	require.NoError(t, err)
	assert.Equal(t, "b", last.ID)
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, "boards", "b1", 1000)

	pos := int64(42)
	require.NoError(t, s.Update(ctx, "boards", "b1", store.Patch{Position: &pos, ExpectedVersion: 1}))

	got, err := s.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Position)
	assert.Equal(t, int64(2), got.Version)
	assert.JSONEq(t, `{"name":"b1"}`, string(got.Data))

	require.NoError(t, s.Update(ctx, "boards", "b1", store.Patch{Data: json.RawMessage(`{"name":"renamed"}`)}))
	got, err = s.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Position)
	assert.Equal(t, int64(3), got.Version)
	assert.JSONEq(t, `{"name":"renamed"}`, string(got.Data))

	err = s.Update(ctx, "boards", "missing", store.Patch{Position: &pos})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdateConflict(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, "boards", "b1", 1000)

	pos := int64(7)
	require.NoError(t, s.Update(ctx, "boards", "b1", store.Patch{Position: &pos, ExpectedVersion: 1}))

	// a writer that read version 1 lost the race
	stale := int64(9)
	err := s.Update(ctx, "boards", "b1", store.Patch{Position: &stale, ExpectedVersion: 1})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := s.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Position)

	// a versioned write to a missing document is still "not found"
	err = s.Update(ctx, "boards", "missing", store.Patch{Position: &stale, ExpectedVersion: 1})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, "boards", "b1", 1000)

	require.NoError(t, s.Delete(ctx, "boards", "b1"))
	_, err := s.Get(ctx, "boards", "b1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "boards", "b1"), store.ErrNotFound)
}

func testBatch(t *testing.T, s store.Store) {
	ctx := context.Background()
	col := "boards/b1/statuses"
	mustCreate(t, s, col, "a", 1000)
	mustCreate(t, s, col, "b", 2000)

	p1, p2 := int64(2000), int64(1000)
	err := s.Batch(ctx, []store.Op{
		store.UpdateOp(col, "a", store.Patch{Position: &p1, ExpectedVersion: 1}),
		store.UpdateOp(col, "b", store.Patch{Position: &p2, ExpectedVersion: 1}),
		store.CreateOp(store.Item{ID: "c", CollectionID: col, Position: 3000}),
	})
	require.NoError(t, err)

	items, err := s.ListSorted(ctx, col)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))

	require.NoError(t, s.Batch(ctx, []store.Op{
		store.DeleteOp(col, "a"),
		store.DeleteOp(col, "b"),
	}))
	items, err = s.ListSorted(ctx, col)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(items))

	require.NoError(t, s.Batch(ctx, nil))
}

func testBatchRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	col := "boards/b1/statuses"
	mustCreate(t, s, col, "a", 1000)
	mustCreate(t, s, col, "b", 2000)

	p1, p2 := int64(5000), int64(6000)
	err := s.Batch(ctx, []store.Op{
		store.UpdateOp(col, "a", store.Patch{Position: &p1, ExpectedVersion: 1}),
		// stale version: the whole batch must fail
		store.UpdateOp(col, "b", store.Patch{Position: &p2, ExpectedVersion: 3}),
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	a, err := s.Get(ctx, col, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), a.Position)
	assert.Equal(t, int64(1), a.Version)

	err = s.Batch(ctx, []store.Op{
		store.DeleteOp(col, "a"),
		store.DeleteOp(col, "missing"),
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Get(ctx, col, "a")
	assert.NoError(t, err)
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	from, to := "boards/b1/statuses/s1/leads", "boards/b1/statuses/s2/leads"
	mustCreate(t, s, from, "lead", 1000)

	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		item, err := tx.Get(ctx, from, "lead")
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, from, "lead"); err != nil {
			return err
		}
		item.CollectionID = to
		_, err = tx.Create(ctx, item)
		return err
	})
	require.NoError(t, err)

	_, err = s.Get(ctx, from, "lead")
	assert.ErrorIs(t, err, store.ErrNotFound)
	moved, err := s.Get(ctx, to, "lead")
	require.NoError(t, err)
	assert.Equal(t, to, moved.CollectionID)
}

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	from, to := "boards/b1/statuses/s1/leads", "boards/b1/statuses/s2/leads"
	mustCreate(t, s, from, "lead", 1000)

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Delete(ctx, from, "lead"); err != nil {
			return err
		}
		if _, err := tx.Create(ctx, store.Item{ID: "lead", CollectionID: to, Position: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Get(ctx, from, "lead")
	assert.NoError(t, err)
	_, err = s.Get(ctx, to, "lead")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testCollectionExists(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, "boards", "b1", 1000)
	mustCreate(t, s, "boards/b1/statuses", "s1", 1000)

	tests := []struct {
		collection string
		want       bool
	}{
		{"boards", true},
		{"boards/b1/statuses", true},
		{"boards/b2/statuses", false},
		{"boards/b1/statuses/s1/leads", true},
		{"boards/b1/statuses/s2/leads", false},
		{"boards/b1", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := store.CollectionExists(ctx, s, tt.collection)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.collection)
	}
}
