package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists fetched records so offline runs can still show them.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite cache at path and ensures the
// schema exists. Use ":memory:" for a throwaway store.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS constellation_metadata (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		area TEXT NOT NULL,
		brightest_star TEXT NOT NULL,
		reference_url TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create cache schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns a stored record, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Record, error) {
	const q = `SELECT name, description, area, brightest_star, reference_url
		FROM constellation_metadata WHERE name = ?`

	var rec Record
	err := s.db.QueryRowContext(ctx, q, name).Scan(
		&rec.Name, &rec.Description, &rec.Area, &rec.BrightestStar, &rec.ReferenceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Record{}, fmt.Errorf("query cache: %w", err)
	}
	return rec, nil
}

// Put stores or replaces a record. Fallback and offline records are never
// stored.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.Fallback || rec.Local {
		return nil
	}
	const q = `INSERT INTO constellation_metadata
		(name, description, area, brightest_star, reference_url, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			area = excluded.area,
			brightest_star = excluded.brightest_star,
			reference_url = excluded.reference_url,
			fetched_at = excluded.fetched_at`

	_, err := s.db.ExecContext(ctx, q,
		rec.Name, rec.Description, rec.Area, rec.BrightestStar, rec.ReferenceURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store %s: %w", rec.Name, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM constellation_metadata`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}
