package sgns

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func assertSameModel(t *testing.T, got, want *Model, tol float64) {
	t.Helper()
	if !reflect.DeepEqual(got.Vocab().Words(), want.Vocab().Words()) {
		t.Fatalf("vocabulary = %v, want %v", got.Vocab().Words(), want.Vocab().Words())
	}
	gr, gc := got.Matrix().Dims()
	wr, wc := want.Matrix().Dims()
	if gr != wr || gc != wc {
		t.Fatalf("matrix dims = %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			if math.Abs(got.Matrix().At(i, j)-want.Matrix().At(i, j)) > tol {
				t.Fatalf("matrix[%d][%d] = %v, want %v", i, j, got.Matrix().At(i, j), want.Matrix().At(i, j))
			}
		}
	}
}

func TestModelBlobsRoundTrip(t *testing.T) {
	m := colorModel(t)

	matrix, vocab, err := m.MarshalBlobs()
	if err != nil {
		t.Fatalf("MarshalBlobs() error = %v", err)
	}
	loaded, err := ModelFromBlobs(matrix, vocab)
	if err != nil {
		t.Fatalf("ModelFromBlobs() error = %v", err)
	}
	assertSameModel(t, loaded, m, 0)

	words, _, err := loaded.FindKMostSimilar("red", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(words, []string{"green", "white"}) {
		t.Errorf("reloaded FindKMostSimilar() = %v, want [green white]", words)
	}
}

func TestModelFromBlobsErrors(t *testing.T) {
	m := colorModel(t)
	matrix, vocab, err := m.MarshalBlobs()
	if err != nil {
		t.Fatal(err)
	}
	short, _, _ := newTestModel(t, []string{"a"}, [][]float64{{1, 2, 3, 4, 5}}).MarshalBlobs()

	tests := []struct {
		name   string
		matrix []byte
		vocab  []byte
	}{
		{"Missing matrix", nil, vocab},
		{"Missing vocabulary", matrix, nil},
		{"Garbage matrix", []byte("not a matrix"), vocab},
		{"Garbage vocabulary", matrix, []byte("not a vocabulary")},
		{"Row mismatch", short, vocab},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ModelFromBlobs(tt.matrix, tt.vocab); !errors.Is(err, ErrCorruptModelState) {
				t.Errorf("ModelFromBlobs() error = %v, want ErrCorruptModelState", err)
			}
		})
	}
}

func TestSaveLoadModel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	m := colorModel(t)

	if err := m.SaveModel(dir); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	for _, name := range []string{MatrixFilename, VocabFilename} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("blob %s not written: %v", name, err)
		}
	}

	loaded, err := LoadModel(dir)
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	assertSameModel(t, loaded, m, 0)
}

func TestLoadModelMissingBlobs(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadModel(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadModel(empty dir) error = %v, want fs.ErrNotExist", err)
	}

	if err := colorModel(t).SaveModel(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, VocabFilename)); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModel(dir); !errors.Is(err, ErrCorruptModelState) {
		t.Errorf("LoadModel(matrix only) error = %v, want ErrCorruptModelState", err)
	}
}

func TestSaveLoadVectors(t *testing.T) {
	m := colorModel(t)

	for _, header := range []bool{true, false} {
		var buf bytes.Buffer
		if err := m.SaveVectors(&buf, header); err != nil {
			t.Fatalf("SaveVectors() error = %v", err)
		}

		first := strings.SplitN(buf.String(), "\n", 2)[0]
		if header && first != "6 5" {
			t.Errorf("header line = %q, want %q", first, "6 5")
		}
		if !header && !strings.HasPrefix(first, "black ") {
			t.Errorf("first line = %q, want black vector", first)
		}

		loaded, err := LoadVectors(&buf, header)
		if err != nil {
			t.Fatalf("LoadVectors(header=%v) error = %v", header, err)
		}
		assertSameModel(t, loaded, m, 1e-6)
	}
}

func TestLoadVectorsErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header bool
	}{
		{"Empty", "", false},
		{"No components", "word\n", false},
		{"Ragged", "a 1 2\nb 1\n", false},
		{"Bad number", "a 1 x\n", false},
		{"Duplicate word", "a 1 2\na 3 4\n", false},
		{"Missing header", "a 1 2\nb 3 4\n", true},
		{"Header only", "2 2\n", true},
		{"Header word count mismatch", "3 2\na 1 2\nb 3 4\n", true},
		{"Header dim mismatch", "2 3\na 1 2\nb 3 4\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadVectors(strings.NewReader(tt.input), tt.header); err == nil {
				t.Error("LoadVectors() expected error")
			}
		})
	}
}

func TestLoadVectorsNumericFirstWord(t *testing.T) {
	// Without a header, a first row that looks like "words dim" is data
	input := "2 1\nb 0.5\n"

	m, err := LoadVectors(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("LoadVectors() error = %v", err)
	}
	if !reflect.DeepEqual(m.Vocab().Words(), []string{"2", "b"}) {
		t.Errorf("vocabulary = %v, want [2 b]", m.Vocab().Words())
	}
	if v, ok := m.Vector("2"); !ok || v[0] != 1 {
		t.Errorf("Vector(\"2\") = %v, %v, want [1]", v, ok)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 5
	cfg.Epochs = 3
	filename := filepath.Join(t.TempDir(), "run.ckpt")

	sg := newInitialized(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	err := sg.TrainWithCallback(ctx, func(p TrainingProgress) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TrainWithCallback() error = %v, want context.Canceled", err)
	}
	if err := sg.SaveCheckpoint(filename); err != nil {
		t.Fatalf("SaveCheckpoint() error = %v", err)
	}

	restored, err := LoadCheckpoint(filename)
	if err != nil {
		t.Fatalf("LoadCheckpoint() error = %v", err)
	}
	if restored.State() != StateTraining {
		t.Errorf("restored State() = %v, want %v", restored.State(), StateTraining)
	}
	if !reflect.DeepEqual(restored.Theta(), sg.Theta()) {
		t.Error("restored theta differs")
	}
	if !reflect.DeepEqual(restored.Positives(), sg.Positives()) || !reflect.DeepEqual(restored.Negatives(), sg.Negatives()) {
		t.Error("restored pairs differ")
	}
	if !reflect.DeepEqual(restored.WordVocab().Words(), sg.WordVocab().Words()) {
		t.Error("restored word vocabulary differs")
	}

	if err := sg.Train(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := restored.Train(context.Background()); err != nil {
		t.Fatal(err)
	}
	want, _ := sg.Model()
	got, _ := restored.Model()
	assertSameModel(t, got, want, 0)
}

func TestSaveCheckpointRequiresPairs(t *testing.T) {
	sg, err := NewSkipGram(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := sg.SaveCheckpoint(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("SaveCheckpoint() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestLoadCheckpointCorrupt(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.ckpt")
	if err := os.WriteFile(filename, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCheckpoint(filename); !errors.Is(err, ErrCorruptModelState) {
		t.Errorf("LoadCheckpoint() error = %v, want ErrCorruptModelState", err)
	}
}
