package credstore

import (
	"database/sql"
	"errors"
	"fmt"

	"blogctl/internal/credstore/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists credentials in a small SQLite database. Both durable
// entries live in one kv table so a Save or Clear replaces them together.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the credential database at path
// and migrates it to the latest schema.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating credential database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// Exported for tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Multiple blogctl processes may share the credential database.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) Load() (Credentials, error) {
	var creds Credentials

	token, err := s.get(KeyToken)
	if err != nil {
		return Credentials{}, err
	}
	creds.Token = string(token)

	user, err := s.get(KeyUser)
	if err != nil {
		return Credentials{}, err
	}
	creds.User = user

	return creds, nil
}

func (s *SQLiteStore) get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not stored
		}
		return nil, fmt.Errorf("reading %s entry: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Save(c Credentials) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	upsert := "INSERT INTO credentials (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	if _, err := tx.Exec(upsert, KeyToken, []byte(c.Token)); err != nil {
		return fmt.Errorf("saving token entry: %w", err)
	}

	if len(c.User) == 0 {
		if _, err := tx.Exec("DELETE FROM credentials WHERE key = ?", KeyUser); err != nil {
			return fmt.Errorf("removing user entry: %w", err)
		}
	} else if _, err := tx.Exec(upsert, KeyUser, c.User); err != nil {
		return fmt.Errorf("saving user entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM credentials"); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
