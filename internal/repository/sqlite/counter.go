package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

var _ repository.Counter = (*CounterStore)(nil)

// CounterStore keeps named counters in the counters table. It backs the
// visitor count when Redis is not configured.
type CounterStore struct {
	db *DB
}

func (s *CounterStore) Increment(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := bumpCounter(ctx, tx, name); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("sqlite: incrementing counter %s: %w", name, err)
	}
	return n, nil
}

// Get returns 0 for a counter that was never incremented.
func (s *CounterStore) Get(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.db.conn.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading counter %s: %w", name, err)
	}
	return n, nil
}

func bumpCounter(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`, name)
	if err != nil {
		return fmt.Errorf("sqlite: bumping counter %s: %w", name, err)
	}
	return nil
}

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}
