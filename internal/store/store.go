package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the ent driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequencer
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: pragmas stick and every write is serialized.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	ctx := context.Background()
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequencer(ctx, drv)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{drv: s.drv, seq: s.seq}
}

// BatchLogRepo returns a BatchLogRepo backed by this store.
func (s *Store) BatchLogRepo() BatchLogRepo {
	return &batchLogRepo{drv: s.drv, seq: s.seq}
}

// applyPragmas configures SQLite for a single-process service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}

// builder renders queries in SQLite's dialect.
var builder = entsql.Dialect(dialect.SQLite)

// DefaultDBPath resolves the database file path in priority order:
// 1. WINTERTHON_DB environment variable
// 2. $XDG_DATA_HOME/winterthon/winterthon.db
// 3. ~/.local/share/winterthon/winterthon.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("WINTERTHON_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome, err := dataDir()
	if err != nil {
		return "", err
	}

	p := filepath.Join(dataHome, "winterthon", "winterthon.db")
	return p, EnsureDir(p)
}

// DefaultLogFilePath resolves the JSONL batch log path:
// WINTERTHON_LOG_FILE, else $XDG_DATA_HOME/winterthon/question_generation.jsonl.
func DefaultLogFilePath() (string, error) {
	if p := os.Getenv("WINTERTHON_LOG_FILE"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome, err := dataDir()
	if err != nil {
		return "", err
	}

	p := filepath.Join(dataHome, "winterthon", "question_generation.jsonl")
	return p, EnsureDir(p)
}

func dataDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
