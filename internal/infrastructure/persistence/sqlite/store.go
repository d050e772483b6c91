package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps held items, attributes and the command log in one sqlite file.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// one connection serializes every transaction
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const heldItemsTable = `
CREATE TABLE IF NOT EXISTS held_items (
	actor_id TEXT NOT NULL,
	hand TEXT NOT NULL,
	type TEXT NOT NULL,
	display_name TEXT,
	lore TEXT,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (actor_id, hand)
);`

	if _, err := db.Exec(heldItemsTable); err != nil {
		return fmt.Errorf("sqlite: migrate held_items: %w", err)
	}

	const attributesTable = `
CREATE TABLE IF NOT EXISTS attributes (
	actor_id TEXT NOT NULL,
	attribute TEXT NOT NULL,
	base REAL NOT NULL,
	modifiers TEXT,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (actor_id, attribute)
);`

	if _, err := db.Exec(attributesTable); err != nil {
		return fmt.Errorf("sqlite: migrate attributes: %w", err)
	}

	const commandLogTable = `
CREATE TABLE IF NOT EXISTS command_log (
	id TEXT PRIMARY KEY,
	issuer TEXT NOT NULL,
	line TEXT NOT NULL,
	command TEXT,
	outcome TEXT NOT NULL,
	detail TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_log_created_at ON command_log(created_at DESC);`

	if _, err := db.Exec(commandLogTable); err != nil {
		return fmt.Errorf("sqlite: migrate command_log: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// encodeLines keeps empty entries; lore may contain blank lines.
func encodeLines(values []string) interface{} {
	if len(values) == 0 {
		return nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodeLines(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}
