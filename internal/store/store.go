package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for paradigm's samples, feature rows
// and run metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS samples (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT NOT NULL,
  line_count      INTEGER NOT NULL,
  syntax_errors   INTEGER NOT NULL DEFAULT -1,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS features (
  sample_id         INTEGER PRIMARY KEY REFERENCES samples(id),
  language          TEXT NOT NULL,
  has_threads       INTEGER NOT NULL,
  has_locks         INTEGER NOT NULL,
  has_channels      INTEGER NOT NULL,
  has_actors        INTEGER NOT NULL,
  has_async         INTEGER NOT NULL,
  lock_density      REAL NOT NULL,
  channel_density   REAL NOT NULL,
  actor_density     REAL NOT NULL,
  async_density     REAL NOT NULL,
  concurrency_score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_samples_language ON samples(language);
CREATE INDEX IF NOT EXISTS idx_features_language ON features(language);
`

// DeleteSample transactionally removes a sample and its feature row.
func (s *Store) DeleteSample(sampleID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSampleTx(tx, sampleID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteSampleTx(tx *sql.Tx, sampleID int64) error {
	for _, q := range []string{
		"DELETE FROM features WHERE sample_id = ?",
		"DELETE FROM samples WHERE id = ?",
	} {
		if _, err := tx.Exec(q, sampleID); err != nil {
			return fmt.Errorf("store: delete sample %d: %w", sampleID, err)
		}
	}
	return nil
}

// GetMetadata returns the value stored under key, or "" if absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get metadata %q: %w", key, err)
	}
	return value, nil
}

// SetMetadata upserts key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("store: set metadata %q: %w", key, err)
	}
	return nil
}
