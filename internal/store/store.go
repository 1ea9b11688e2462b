// Package store persists an imported gazetteer in a local SQLite database so
// large geonames extracts load without re-parsing the dump files.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/when/internal/gazetteer"
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS places (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    admin_code  TEXT NOT NULL DEFAULT '',
    country     TEXT NOT NULL,
    timezone    TEXT NOT NULL,
    population  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS countries (
    id    INTEGER PRIMARY KEY AUTOINCREMENT,
    code  TEXT NOT NULL UNIQUE,
    name  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Counts summarizes the stored tables.
type Counts struct {
	Places     int
	Countries  int
	ImportedAt time.Time // zero if nothing was imported yet
}

// Store is a gazetteer backed by SQLite in WAL mode.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path, enables WAL mode and busy
// timeout, and creates the schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: open %s", path)
	}

	// SQLite has a single writer; one connection keeps pragmas consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: enable WAL mode")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: set busy timeout")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: create schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the stored tables for places and countries in a single
// transaction. Readers see either the old or the new contents.
func (s *Store) Replace(ctx context.Context, places []gazetteer.Place, countries []gazetteer.Country) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "store: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, q := range []string{"DELETE FROM places", "DELETE FROM countries", "DELETE FROM sqlite_sequence"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return errors.Wrapf(err, "store: %s", q)
		}
	}

	placeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO places (name, admin_code, country, timezone, population) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "store: prepare place insert")
	}
	defer placeStmt.Close()
	for _, p := range places {
		if _, err := placeStmt.ExecContext(ctx, p.Name, p.AdminCode, p.CountryCode, p.TimezoneID, int64(p.Population)); err != nil {
			return errors.Wrapf(err, "store: insert place %q", p.Name)
		}
	}

	countryStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO countries (code, name) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name`)
	if err != nil {
		return errors.Wrap(err, "store: prepare country insert")
	}
	defer countryStmt.Close()
	for _, c := range countries {
		if _, err := countryStmt.ExecContext(ctx, c.Code, c.Name); err != nil {
			return errors.Wrapf(err, "store: insert country %q", c.Code)
		}
	}

	const meta = `INSERT INTO meta (key, value) VALUES ('imported_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, meta, s.now().UTC().Format(time.RFC3339)); err != nil {
		return errors.Wrap(err, "store: record import time")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "store: commit replace")
	}
	return nil
}

// Places returns every stored place in insertion order.
func (s *Store) Places(ctx context.Context) ([]gazetteer.Place, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, admin_code, country, timezone, population FROM places ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "store: query places")
	}
	defer rows.Close()

	var out []gazetteer.Place
	for rows.Next() {
		var p gazetteer.Place
		var pop int64
		if err := rows.Scan(&p.Name, &p.AdminCode, &p.CountryCode, &p.TimezoneID, &pop); err != nil {
			return nil, errors.Wrap(err, "store: scan place")
		}
		p.Population = uint64(max(pop, 0))
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: iterate places")
	}
	return out, nil
}

// Countries returns every stored country in insertion order.
func (s *Store) Countries(ctx context.Context) ([]gazetteer.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM countries ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "store: query countries")
	}
	defer rows.Close()

	var out []gazetteer.Country
	for rows.Next() {
		var c gazetteer.Country
		if err := rows.Scan(&c.Code, &c.Name); err != nil {
			return nil, errors.Wrap(err, "store: scan country")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: iterate countries")
	}
	return out, nil
}

// Load builds a gazetteer from the stored tables. Place order follows the
// insertion order, so population ties resolve the same way they did in the
// imported file.
func (s *Store) Load(ctx context.Context) (*gazetteer.Gazetteer, error) {
	places, err := s.Places(ctx)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, errors.WithStack(gazetteer.ErrEmptyTable)
	}
	countries, err := s.Countries(ctx)
	if err != nil {
		return nil, err
	}
	return gazetteer.New(places, countries), nil
}

// Counts reports the table sizes and the last import time.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&c.Places); err != nil {
		return Counts{}, errors.Wrap(err, "store: count places")
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM countries").Scan(&c.Countries); err != nil {
		return Counts{}, errors.Wrap(err, "store: count countries")
	}

	var ts string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'imported_at'").Scan(&ts)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c, nil
	case err != nil:
		return Counts{}, errors.Wrap(err, "store: read import time")
	}
	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Counts{}, errors.Wrapf(err, "store: parse import time %q", ts)
	}
	c.ImportedAt = at
	return c, nil
}
