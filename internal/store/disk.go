package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	sgns "github.com/n0madic/go-sgns"
)

// MetaFilename holds the Entry of a model directory.
const MetaFilename = "meta.yaml"

// DiskStore keeps one directory per model under root.
type DiskStore struct {
	root string
	opts []sgns.ModelOption
}

// NewDiskStore creates root if it does not exist.
func NewDiskStore(root string, opts ...sgns.ModelOption) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &DiskStore{root: root, opts: opts}, nil
}

// Save writes the model blobs, then the metadata with a fresh ID.
func (s *DiskStore) Save(ctx context.Context, name string, m *sgns.Model) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, name)
	if err := m.SaveModel(dir); err != nil {
		return "", err
	}

	entry := newEntry(name, uuid.New().String(), m)
	data, err := yaml.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFilename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return entry.ID, nil
}

// Load reads the model stored under name.
func (s *DiskStore) Load(ctx context.Context, name string) (*sgns.Model, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := sgns.LoadModel(filepath.Join(s.root, name), s.opts...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return m, err
}

// List returns the entries of every model directory, sorted by name.
// Directories without metadata are skipped.
func (s *DiskStore) List(ctx context.Context) ([]Entry, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, d.Name(), MetaFilename))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var e Entry
		if err := yaml.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to parse metadata of %s: %w", d.Name(), err)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Close is a no-op.
func (s *DiskStore) Close() error { return nil }
