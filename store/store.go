package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guestlist-backend/models"
)

// ErrNotFound is returned by point operations when no entry has the given id.
var ErrNotFound = errors.New("entry not found")

const schema = `
	CREATE TABLE IF NOT EXISTS entries (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL DEFAULT '',
		checked_in    BOOLEAN NOT NULL DEFAULT FALSE,
		checked_in_at TIMESTAMPTZ
	)
`

// Store persists guest entries in a single Postgres table.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Init creates the entries table if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}
	return nil
}

// Find looks up a single entry by id.
func (s *Store) Find(ctx context.Context, id string) (models.Entry, error) {
	var entry models.Entry
	err := s.db.QueryRow(ctx,
		"SELECT id, name, checked_in, checked_in_at FROM entries WHERE id = $1", id,
	).Scan(&entry.ID, &entry.Name, &entry.CheckedIn, &entry.CheckedInAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Entry{}, ErrNotFound
		}
		return models.Entry{}, fmt.Errorf("find entry: %w", err)
	}
	return entry, nil
}

// ReplaceAll drops the current entry set and inserts the given one in a
// single transaction, so readers never observe a half-replaced roster.
func (s *Store) ReplaceAll(ctx context.Context, entries []models.Entry) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}

	rows, err := tx.CopyFrom(ctx,
		pgx.Identifier{"entries"},
		[]string{"id", "name", "checked_in", "checked_in_at"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{e.ID, e.Name, e.CheckedIn, e.CheckedInAt}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("insert entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	return rows, nil
}

// ExportAll returns every entry ordered by id.
func (s *Store) ExportAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, checked_in, checked_in_at FROM entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.CheckedIn, &entry.CheckedInAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// SetCheckedIn marks the entry as checked in at the given time and returns
// the updated row. A repeat call overwrites the previous timestamp.
func (s *Store) SetCheckedIn(ctx context.Context, id string, at time.Time) (models.Entry, error) {
	var entry models.Entry
	err := s.db.QueryRow(ctx, `
		UPDATE entries
		SET checked_in = TRUE, checked_in_at = $2
		WHERE id = $1
		RETURNING id, name, checked_in, checked_in_at`,
		id, at,
	).Scan(&entry.ID, &entry.Name, &entry.CheckedIn, &entry.CheckedInAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Entry{}, ErrNotFound
		}
		return models.Entry{}, fmt.Errorf("check in entry: %w", err)
	}
	return entry, nil
}

// Reset clears the check-in status of one entry.
func (s *Store) Reset(ctx context.Context, id string) (int64, error) {
	tag, err := s.db.Exec(ctx,
		"UPDATE entries SET checked_in = FALSE, checked_in_at = NULL WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("reset entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return tag.RowsAffected(), nil
}

// ResetAll clears the check-in status of every entry.
func (s *Store) ResetAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		"UPDATE entries SET checked_in = FALSE, checked_in_at = NULL")
	if err != nil {
		return 0, fmt.Errorf("reset entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
