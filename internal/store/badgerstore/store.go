package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/thenoetrevino/leadboard/internal/store"
)

const keyPrefix = "item/"

// Store is a store.Store backed by BadgerDB.
type Store struct {
	db  *badger.DB
	gc  *gcRunner
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: time.Now}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = startGC(db, cfg.GCInterval, cfg.Logger)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}

func (s *Store) ListSorted(ctx context.Context, collection string) ([]store.Item, error) {
	var items []store.Item
	err := s.view(ctx, func(t *txn) error {
		var err error
		items, err = t.ListSorted(ctx, collection)
		return err
	})
	return items, err
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Item, error) {
	var item store.Item
	err := s.view(ctx, func(t *txn) error {
		var err error
		item, err = t.Get(ctx, collection, id)
		return err
	})
	return item, err
}

func (s *Store) Last(ctx context.Context, collection string) (store.Item, error) {
	var item store.Item
	err := s.view(ctx, func(t *txn) error {
		var err error
		item, err = t.Last(ctx, collection)
		return err
	})
	return item, err
}

func (s *Store) Create(ctx context.Context, item store.Item) (store.Item, error) {
	var created store.Item
	err := s.update(ctx, func(t *txn) error {
		var err error
		created, err = t.Create(ctx, item)
		return err
	})
	return created, err
}

func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	return s.update(ctx, func(t *txn) error {
		return t.Update(ctx, collection, id, patch)
	})
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.update(ctx, func(t *txn) error {
		return t.Delete(ctx, collection, id)
	})
}

// Batch applies ops in one Badger transaction.
func (s *Store) Batch(ctx context.Context, ops []store.Op) error {
	if len(ops) == 0 {
		return nil
	}
	return s.update(ctx, func(t *txn) error {
		for i, op := range ops {
			if err := t.apply(ctx, op); err != nil {
				return fmt.Errorf("batch op %d (%s %s/%s): %w", i, op.Kind, op.Item.CollectionID, op.Item.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.update(ctx, func(t *txn) error {
		return fn(ctx, t)
	})
}

func (s *Store) view(ctx context.Context, fn func(*txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(bt *badger.Txn) error {
		return fn(&txn{bt: bt, now: s.now})
	})
}

func (s *Store) update(ctx context.Context, fn func(*txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(bt *badger.Txn) error {
		if err := fn(&txn{bt: bt, now: s.now}); err != nil {
			return err
		}
		// do not commit work the caller already gave up on
		return ctx.Err()
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

// txn implements store.Tx over a Badger transaction.
type txn struct {
	bt  *badger.Txn
	now func() time.Time
}

func itemKey(collection, id string) []byte {
	return []byte(keyPrefix + collection + "\x00" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte(keyPrefix + collection + "\x00")
}

func (t *txn) ListSorted(ctx context.Context, collection string) ([]store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := collectionPrefix(collection)
	it := t.bt.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
	defer it.Close()

	items := make([]store.Item, 0)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var item store.Item
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		items = append(items, item)
	}
	store.SortItems(items)
	return items, nil
}

func (t *txn) Get(ctx context.Context, collection, id string) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return store.Item{}, err
	}
	bi, err := t.bt.Get(itemKey(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.Item{}, store.ErrNotFound
	}
	if err != nil {
		return store.Item{}, err
	}
	var item store.Item
	if err := bi.Value(func(val []byte) error {
		return json.Unmarshal(val, &item)
	}); err != nil {
		return store.Item{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return item, nil
}

func (t *txn) Last(ctx context.Context, collection string) (store.Item, error) {
	items, err := t.ListSorted(ctx, collection)
	if err != nil {
		return store.Item{}, err
	}
	if len(items) == 0 {
		return store.Item{}, store.ErrNotFound
	}
	return items[len(items)-1], nil
}

func (t *txn) Create(ctx context.Context, item store.Item) (store.Item, error) {
	if item.ID == "" || item.CollectionID == "" {
		return store.Item{}, fmt.Errorf("item id and collection are required")
	}
	if _, err := t.Get(ctx, item.CollectionID, item.ID); err == nil {
		return store.Item{}, store.ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Item{}, err
	}

	now := t.now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	item.Version = 1
	return item, t.put(item)
}

func (t *txn) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	item, err := t.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if patch.ExpectedVersion != 0 && item.Version != patch.ExpectedVersion {
		return fmt.Errorf("%w: %s/%s is at version %d, expected %d",
			store.ErrConflict, collection, id, item.Version, patch.ExpectedVersion)
	}
	if patch.Position != nil {
		item.Position = *patch.Position
	}
	if patch.Data != nil {
		item.Data = patch.Data
	}
	item.Version++
	item.UpdatedAt = t.now().UTC()
	return t.put(item)
}

func (t *txn) Delete(ctx context.Context, collection, id string) error {
	return t.delete(ctx, collection, id, 0)
}

func (t *txn) delete(ctx context.Context, collection, id string, expectedVersion int64) error {
	item, err := t.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if expectedVersion != 0 && item.Version != expectedVersion {
		return fmt.Errorf("%w: %s/%s is at version %d, expected %d",
			store.ErrConflict, collection, id, item.Version, expectedVersion)
	}
	return t.bt.Delete(itemKey(collection, id))
}

func (t *txn) apply(ctx context.Context, op store.Op) error {
	switch op.Kind {
	case store.OpCreate:
		_, err := t.Create(ctx, op.Item)
		return err
	case store.OpUpdate:
		return t.Update(ctx, op.Item.CollectionID, op.Item.ID, op.Patch)
	case store.OpDelete:
		return t.delete(ctx, op.Item.CollectionID, op.Item.ID, op.Patch.ExpectedVersion)
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

func (t *txn) put(item store.Item) error {
	val, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", item.CollectionID, item.ID, err)
	}
	return t.bt.Set(itemKey(item.CollectionID, item.ID), val)
}
