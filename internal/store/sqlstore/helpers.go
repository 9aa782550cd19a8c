package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/thenoetrevino/leadboard/internal/store"
	sqlite3 "modernc.org/sqlite/lib"
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return mapErr(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapErr(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// codeError matches *sqlite.Error from modernc.org/sqlite
type codeError interface {
	Code() int
}

// mapErr tags driver errors that mean "lost a race" with store.ErrConflict.
func mapErr(err error) error {
	if err == nil || errors.Is(err, store.ErrConflict) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		}
		return err
	}

	var sqErr codeError
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		}
	}
	return err
}
