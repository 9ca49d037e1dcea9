package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	sgns "github.com/n0madic/go-sgns"
)

// SQLiteStore keeps both model blobs of each model in one row.
type SQLiteStore struct {
	db   *sql.DB
	opts []sgns.ModelOption
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string, opts ...sgns.ModelOption) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, opts: opts}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS models (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		words INTEGER NOT NULL,
		dim INTEGER NOT NULL,
		embed_matrix BLOB,
		words_voc BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Save upserts both blobs in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, name string, m *sgns.Model) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	matrix, vocab, err := m.MarshalBlobs()
	if err != nil {
		return "", err
	}
	entry := newEntry(name, uuid.New().String(), m)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO models (name, id, words, dim, embed_matrix, words_voc, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   id = excluded.id,
		   words = excluded.words,
		   dim = excluded.dim,
		   embed_matrix = excluded.embed_matrix,
		   words_voc = excluded.words_voc,
		   created_at = excluded.created_at`,
		entry.Name, entry.ID, entry.Words, entry.Dim, matrix, vocab, entry.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to store model %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Load decodes the row stored under name. A row missing either blob is
// reported as sgns.ErrCorruptModelState.
func (s *SQLiteStore) Load(ctx context.Context, name string) (*sgns.Model, error) {
	var matrix, vocab []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT embed_matrix, words_voc FROM models WHERE name = ?`, name,
	).Scan(&matrix, &vocab)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return sgns.ModelFromBlobs(matrix, vocab, s.opts...)
}

// List returns all stored models sorted by name.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, id, words, dim, created_at FROM models ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.ID, &e.Words, &e.Dim, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
