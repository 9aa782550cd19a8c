package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thenoetrevino/leadboard/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a store.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// New wraps an already migrated database.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ListSorted(ctx context.Context, collection string) ([]store.Item, error) {
	return s.exec(s.db).listSorted(ctx, collection)
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Item, error) {
	return s.exec(s.db).get(ctx, collection, id)
}

func (s *Store) Last(ctx context.Context, collection string) (store.Item, error) {
	return s.exec(s.db).last(ctx, collection)
}

func (s *Store) Create(ctx context.Context, item store.Item) (store.Item, error) {
	return s.exec(s.db).create(ctx, item)
}

func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	return s.exec(s.db).update(ctx, collection, id, patch)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.exec(s.db).delete(ctx, collection, id, 0)
}

// Batch applies ops inside a single transaction.
func (s *Store) Batch(ctx context.Context, ops []store.Op) error {
	if len(ops) == 0 {
		return nil
	}
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		e := s.exec(tx)
		for i, op := range ops {
			if err := e.apply(ctx, op); err != nil {
				return fmt.Errorf("batch op %d (%s %s/%s): %w", i, op.Kind, op.Item.CollectionID, op.Item.ID, err)
			}
		}
		return nil
	})
}

// RunInTx runs fn in a transaction. PostgreSQL runs it serializable so that
// read-then-write races abort with store.ErrConflict; SQLite serializes all
// transactions on its single connection.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	var opts *sql.TxOptions
	if s.dialect == Postgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return s.withTx(ctx, opts, func(tx *sql.Tx) error {
		return fn(ctx, s.exec(tx))
	})
}

func (s *Store) exec(q querier) *executor {
	return &executor{q: q, dialect: s.dialect, now: s.now}
}

// executor runs item queries against a querier. It implements store.Tx.
type executor struct {
	q       querier
	dialect Dialect
	now     func() time.Time
}

func (e *executor) ListSorted(ctx context.Context, collection string) ([]store.Item, error) {
	return e.listSorted(ctx, collection)
}

func (e *executor) Get(ctx context.Context, collection, id string) (store.Item, error) {
	return e.get(ctx, collection, id)
}

func (e *executor) Last(ctx context.Context, collection string) (store.Item, error) {
	return e.last(ctx, collection)
}

func (e *executor) Create(ctx context.Context, item store.Item) (store.Item, error) {
	return e.create(ctx, item)
}

func (e *executor) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	return e.update(ctx, collection, id, patch)
}

func (e *executor) Delete(ctx context.Context, collection, id string) error {
	return e.delete(ctx, collection, id, 0)
}

const selectColumns = `collection_id, id, position, data, version, created_at, updated_at`

func (e *executor) listSorted(ctx context.Context, collection string) ([]store.Item, error) {
	rows, err := e.q.QueryContext(ctx, e.rebind(`
		SELECT `+selectColumns+`
		FROM items
		WHERE collection_id = ?
		ORDER BY position ASC, id ASC`), collection)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to list %s: %w", collection, err))
	}
	defer func() { _ = rows.Close() }()

	items := make([]store.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(fmt.Errorf("error iterating items: %w", err))
	}
	return items, nil
}

func (e *executor) get(ctx context.Context, collection, id string) (store.Item, error) {
	row := e.q.QueryRowContext(ctx, e.rebind(`
		SELECT `+selectColumns+`
		FROM items
		WHERE collection_id = ? AND id = ?`), collection, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Item{}, store.ErrNotFound
	}
	if err != nil {
		return store.Item{}, mapErr(err)
	}
	return item, nil
}

func (e *executor) last(ctx context.Context, collection string) (store.Item, error) {
	row := e.q.QueryRowContext(ctx, e.rebind(`
		SELECT `+selectColumns+`
		FROM items
		WHERE collection_id = ?
		ORDER BY position DESC, id DESC
		LIMIT 1`), collection)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Item{}, store.ErrNotFound
	}
	if err != nil {
		return store.Item{}, mapErr(err)
	}
	return item, nil
}

func (e *executor) create(ctx context.Context, item store.Item) (store.Item, error) {
	if item.ID == "" || item.CollectionID == "" {
		return store.Item{}, fmt.Errorf("item id and collection are required")
	}
	now := e.now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	item.Version = 1

	res, err := e.q.ExecContext(ctx, e.rebind(`
		INSERT INTO items (collection_id, id, position, data, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection_id, id) DO NOTHING`),
		item.CollectionID, item.ID, item.Position, string(item.Data), item.Version,
		item.CreatedAt.UnixMicro(), item.UpdatedAt.UnixMicro())
	if err != nil {
		return store.Item{}, mapErr(fmt.Errorf("failed to insert item: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Item{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return store.Item{}, store.ErrAlreadyExists
	}
	return item, nil
}

func (e *executor) update(ctx context.Context, collection, id string, patch store.Patch) error {
	sets := []string{"version = version + 1", "updated_at = ?"}
	args := []any{e.now().UTC().UnixMicro()}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}
	if patch.Data != nil {
		sets = append(sets, "data = ?")
		args = append(args, string(patch.Data))
	}

	query := "UPDATE items SET " + strings.Join(sets, ", ") + " WHERE collection_id = ? AND id = ?"
	args = append(args, collection, id)
	if patch.ExpectedVersion != 0 {
		query += " AND version = ?"
		args = append(args, patch.ExpectedVersion)
	}

	res, err := e.q.ExecContext(ctx, e.rebind(query), args...)
	if err != nil {
		return mapErr(fmt.Errorf("failed to update item: %w", err))
	}
	return e.checkAffected(ctx, res, collection, id, patch.ExpectedVersion)
}

func (e *executor) delete(ctx context.Context, collection, id string, expectedVersion int64) error {
	query := "DELETE FROM items WHERE collection_id = ? AND id = ?"
	args := []any{collection, id}
	if expectedVersion != 0 {
		query += " AND version = ?"
		args = append(args, expectedVersion)
	}

	res, err := e.q.ExecContext(ctx, e.rebind(query), args...)
	if err != nil {
		return mapErr(fmt.Errorf("failed to delete item: %w", err))
	}
	return e.checkAffected(ctx, res, collection, id, expectedVersion)
}

// checkAffected tells a missing row apart from a stale version.
func (e *executor) checkAffected(ctx context.Context, res sql.Result, collection, id string, expectedVersion int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if expectedVersion == 0 {
		return store.ErrNotFound
	}
	if _, err := e.get(ctx, collection, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s/%s is no longer at version %d", store.ErrConflict, collection, id, expectedVersion)
}

func (e *executor) apply(ctx context.Context, op store.Op) error {
	switch op.Kind {
	case store.OpCreate:
		_, err := e.create(ctx, op.Item)
		return err
	case store.OpUpdate:
		return e.update(ctx, op.Item.CollectionID, op.Item.ID, op.Patch)
	case store.OpDelete:
		return e.delete(ctx, op.Item.CollectionID, op.Item.ID, op.Patch.ExpectedVersion)
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (e *executor) rebind(query string) string {
	if e.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (store.Item, error) {
	var (
		item             store.Item
		data             string
		created, updated int64
	)
	if err := sc.Scan(&item.CollectionID, &item.ID, &item.Position, &data, &item.Version, &created, &updated); err != nil {
		return store.Item{}, err
	}
	if data != "" {
		item.Data = []byte(data)
	}
	item.CreatedAt = time.UnixMicro(created).UTC()
	item.UpdatedAt = time.UnixMicro(updated).UTC()
	return item, nil
}
