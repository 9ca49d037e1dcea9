// Package store persists trained models by name.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sgns "github.com/n0madic/go-sgns"
)

// ErrNotFound is returned when no model is stored under a name.
var ErrNotFound = errors.New("model not found")

// Entry describes one stored model.
type Entry struct {
	Name      string    `yaml:"name" json:"name"`
	ID        string    `yaml:"id" json:"id"`
	Words     int       `yaml:"words" json:"words"`
	Dim       int       `yaml:"dim" json:"dim"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Store defines model persistence operations.
type Store interface {
	// Save stores m under name, replacing any previous model, and returns the new artifact ID.
	Save(ctx context.Context, name string, m *sgns.Model) (string, error)
	Load(ctx context.Context, name string) (*sgns.Model, error)
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Open returns the store for backend ("dir" or "sqlite") rooted at path.
// opts are applied to every loaded model.
func Open(backend, path string, opts ...sgns.ModelOption) (Store, error) {
	switch backend {
	case "dir", "":
		return NewDiskStore(path, opts...)
	case "sqlite":
		return NewSQLiteStore(path, opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("invalid model name %q", name)
	}
	return nil
}

func newEntry(name, id string, m *sgns.Model) Entry {
	return Entry{
		Name:      name,
		ID:        id,
		Words:     m.Vocab().Len(),
		Dim:       m.Dim(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
