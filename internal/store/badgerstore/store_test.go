package badgerstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/leadboard/internal/store"
	"github.com/thenoetrevino/leadboard/internal/store/storetest"
)

func setupTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore(t *testing.T) {
	storetest.Run(t, setupTestStore)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestOpen_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	_, err = s.Create(ctx, store.Item{ID: "b1", CollectionID: "boards", Position: 1000})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Position)
}

func TestCollectionPrefixIsolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.Item{ID: "b1", CollectionID: "boards", Position: 1})
	require.NoError(t, err)
	_, err = s.Create(ctx, store.Item{ID: "s1", CollectionID: "boards/b1/statuses", Position: 1})
	require.NoError(t, err)

	boards, err := s.ListSorted(ctx, "boards")
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "b1", boards[0].ID)
}

func TestRunInTx_ConcurrentWritersConflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, store.Item{ID: "l1", CollectionID: "c", Position: 1000})
	require.NoError(t, err)

	// both transactions read l1 before either commits
	var (
		wg      sync.WaitGroup
		readers sync.WaitGroup
		errs    = make([]error, 2)
	)
	readers.Add(2)
	for i := range 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
				item, err := tx.Get(ctx, "c", "l1")
				readers.Done()
				if err != nil {
					return err
				}
				readers.Wait()
				pos := item.Position + int64(i+1)
				return tx.Update(ctx, "c", "l1", store.Patch{Position: &pos})
			})
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, store.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts)
}
