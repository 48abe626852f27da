package kv

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var _ KV = (*SQLite)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLite is a KV backed by a single-table sqlite database. It suits clients
// that already ship a sqlite file for other local state.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if necessary initialises) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "[OpenSQLite] sql.Open")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[OpenSQLite] create table")
	}
	return &SQLite{db: db}, nil
}

// Get reports a key as absent when the underlying query fails; the KV
// contract has no error channel for reads, matching the localStorage
// semantics the session store was written against.
func (s *SQLite) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sessions_kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return errors.Wrapf(err, "[SQLite.Set] %q", key)
}

func (s *SQLite) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM sessions_kv WHERE key = ?`, key)
	return errors.Wrapf(err, "[SQLite.Remove] %q", key)
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
