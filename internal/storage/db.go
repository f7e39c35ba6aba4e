// Package storage persists tenants, stores, and their theme data in
// SQLite. One database file serves the whole instance.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	_ "modernc.org/sqlite"
)

var safeIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent checks that a SQL identifier (table/column name) is safe.
func validIdent(s string) bool {
	return len(s) > 0 && len(s) <= 64 && safeIdentRe.MatchString(s)
}

// DB wraps the instance database.
type DB struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the SQLite database in the given directory.
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "vitrine.db")

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db, path: dbPath}, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stores (
		id            TEXT PRIMARY KEY,
		owner_id      TEXT NOT NULL REFERENCES users(id),
		slug          TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		logo_url      TEXT DEFAULT '',
		primary_color TEXT DEFAULT '',
		whatsapp      TEXT DEFAULT '',
		about         TEXT DEFAULT '',
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS store_settings (
		store_id TEXT PRIMARY KEY REFERENCES stores(id),
		settings TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS announcements (
		id         TEXT PRIMARY KEY,
		store_id   TEXT NOT NULL REFERENCES stores(id),
		text       TEXT NOT NULL,
		icon       TEXT DEFAULT '',
		link_url   TEXT DEFAULT '',
		bg_color   TEXT DEFAULT '',
		text_color TEXT DEFAULT '',
		is_active  INTEGER DEFAULT 1,
		position   INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS banners (
		id        TEXT PRIMARY KEY,
		store_id  TEXT NOT NULL REFERENCES stores(id),
		title     TEXT DEFAULT '',
		image_url TEXT NOT NULL,
		link_url  TEXT DEFAULT '',
		is_active INTEGER DEFAULT 1,
		position  INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS categories (
		id        TEXT PRIMARY KEY,
		store_id  TEXT NOT NULL REFERENCES stores(id),
		name      TEXT NOT NULL,
		is_active INTEGER DEFAULT 1,
		position  INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		store_id    TEXT NOT NULL REFERENCES stores(id),
		category_id TEXT DEFAULT '',
		name        TEXT NOT NULL,
		description TEXT DEFAULT '',
		price       REAL DEFAULT 0,
		image_url   TEXT DEFAULT '',
		is_active   INTEGER DEFAULT 1,
		is_featured INTEGER DEFAULT 0,
		position    INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_stores_owner   ON stores(owner_id);
	CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id);
`

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Exec executes a query without returning rows.
func (d *DB) Exec(query string, args ...any) (sql.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Exec(query, args...)
}

// Query executes a query that returns rows.
func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db.Query(query, args...)
}

// QueryRow executes a query that returns a single row.
func (d *DB) QueryRow(query string, args ...any) *sql.Row {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db.QueryRow(query, args...)
}
