package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	sgns "github.com/n0madic/go-sgns"
)

func testModel(t *testing.T) *sgns.Model {
	t.Helper()
	vocab, err := sgns.VocabularyFromWords([]string{"cat", "dog", "fish"})
	require.NoError(t, err)
	m, err := sgns.NewModel(mat.NewDense(3, 2, []float64{1, 0, 0.9, 0.1, 0, 1}), vocab)
	require.NoError(t, err)
	return m
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	disk, err := Open("dir", filepath.Join(dir, "models"))
	require.NoError(t, err)
	lite, err := Open("sqlite", filepath.Join(dir, "db", "models.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = disk.Close()
		_ = lite.Close()
	})
	return map[string]Store{"dir": disk, "sqlite": lite}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			m := testModel(t)

			id, err := s.Save(ctx, "animals", m)
			require.NoError(t, err)
			assert.Len(t, id, 36)

			loaded, err := s.Load(ctx, "animals")
			require.NoError(t, err)
			assert.Equal(t, m.Vocab().Words(), loaded.Vocab().Words())
			assert.True(t, mat.Equal(m.Matrix(), loaded.Matrix()))

			sim, err := loaded.WordsSimilarity("cat", "dog")
			require.NoError(t, err)
			assert.InDelta(t, 0.9938837346736189, sim, 1e-9)
		})
	}
}

func TestStoreReplaceAndList(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			first, err := s.Save(ctx, "b-model", testModel(t))
			require.NoError(t, err)
			second, err := s.Save(ctx, "b-model", testModel(t))
			require.NoError(t, err)
			assert.NotEqual(t, first, second)

			_, err = s.Save(ctx, "a-model", testModel(t))
			require.NoError(t, err)

			entries, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "a-model", entries[0].Name)
			assert.Equal(t, "b-model", entries[1].Name)
			assert.Equal(t, second, entries[1].ID)
			assert.Equal(t, 3, entries[1].Words)
			assert.Equal(t, 2, entries[1].Dim)
			assert.False(t, entries[1].CreatedAt.IsZero())
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			_, err := s.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreInvalidName(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
				_, err := s.Save(ctx, name, testModel(t))
				assert.Error(t, err, "name %q", name)
			}
		})
	}
}

func TestDiskStoreHalfWrittenModel(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewDiskStore(root)
	require.NoError(t, err)

	_, err = s.Save(ctx, "partial", testModel(t))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "partial", sgns.MatrixFilename)))

	_, err = s.Load(ctx, "partial")
	assert.ErrorIs(t, err, sgns.ErrCorruptModelState)
}

func TestDiskStoreListSkipsForeignDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scratch"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	s, err := NewDiskStore(root)
	require.NoError(t, err)
	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLiteStoreMissingBlob(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Save(ctx, "broken", testModel(t))
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE models SET words_voc = NULL WHERE name = ?`, "broken")
	require.NoError(t, err)

	_, err = s.Load(ctx, "broken")
	assert.ErrorIs(t, err, sgns.ErrCorruptModelState)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("s3", t.TempDir())
	assert.Error(t, err)
}
