package sgns

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Model is a trained embedding matrix with its word vocabulary. It is not
// modified after construction and is safe for concurrent queries.
type Model struct {
	matrix *mat.Dense
	vocab  *Vocabulary
	logger *zap.Logger
	oov    []float64
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithModelLogger sets the logger that records out-of-vocabulary lookups.
func WithModelLogger(logger *zap.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithOOVValue sets the component value of the out-of-vocabulary vector.
func WithOOVValue(v float64) ModelOption {
	return func(m *Model) {
		for i := range m.oov {
			m.oov[i] = v
		}
	}
}

func newModel(matrix *mat.Dense, vocab *Vocabulary, logger *zap.Logger) *Model {
	_, dim := matrix.Dims()
	oov := make([]float64, dim)
	for i := range oov {
		oov[i] = OOV_VALUE
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{matrix: matrix, vocab: vocab, logger: logger, oov: oov}
}

// NewModel pairs an embedding matrix with the vocabulary indexing its rows.
func NewModel(matrix *mat.Dense, vocab *Vocabulary, opts ...ModelOption) (*Model, error) {
	if matrix == nil || vocab == nil {
		return nil, fmt.Errorf("%w: embedding matrix and vocabulary are both required", ErrCorruptModelState)
	}
	if matrix.IsEmpty() {
		return nil, fmt.Errorf("%w: empty embedding matrix", ErrCorruptModelState)
	}
	rows, _ := matrix.Dims()
	if rows != vocab.Len() {
		return nil, fmt.Errorf("%w: %d embedding rows for %d vocabulary words",
			ErrCorruptModelState, rows, vocab.Len())
	}

	m := newModel(matrix, vocab, nil)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Matrix returns the embedding matrix, one row per word.
func (m *Model) Matrix() mat.Matrix { return m.matrix }

// Vocab returns the word vocabulary.
func (m *Model) Vocab() *Vocabulary { return m.vocab }

// Dim returns the embedding dimension.
func (m *Model) Dim() int {
	_, dim := m.matrix.Dims()
	return dim
}

// Vector returns the embedding row of word.
func (m *Model) Vector(word string) ([]float64, bool) {
	idx, ok := m.vocab.Index(word)
	if !ok {
		return nil, false
	}
	return m.matrix.RawRowView(idx), true
}

// lookup returns the embedding of word, falling back to the OOV vector.
func (m *Model) lookup(word string) []float64 {
	if vec, ok := m.Vector(word); ok {
		return vec
	}
	m.logger.Info("out of vocabulary", zap.String("word", word))
	return m.oov
}

// CosineSimilarity computes |a·b| / (‖a‖‖b‖).
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector lengths differ: %d vs %d", len(a), len(b))
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("%w: cosine similarity of a zero-norm vector", ErrDivisionByZero)
	}
	if floats.Equal(a, b) {
		return 1, nil
	}

	// Rounding can push collinear vectors just above 1
	return math.Min(1, math.Abs(floats.Dot(a, b))/(normA*normB)), nil
}

// WordsSimilarity returns the cosine similarity of two words in [0, 1].
// Words missing from the vocabulary share one constant vector, so any two of
// them score 1.0 against each other.
func (m *Model) WordsSimilarity(word1, word2 string) (float64, error) {
	sim, err := CosineSimilarity(m.lookup(word1), m.lookup(word2))
	if err != nil {
		return 0, fmt.Errorf("similarity of %q and %q: %w", word1, word2, err)
	}
	return sim, nil
}

// FindKMostSimilar ranks every vocabulary word by similarity to target and
// returns positions [1, k] of the ranking with the scores of all words. An
// in-vocabulary target is excluded by name; for an unknown target the top
// entry is dropped instead. At most min(k, vocabulary size - 1) words are
// returned. Equal scores keep vocabulary order.
func (m *Model) FindKMostSimilar(target string, k int) ([]string, map[string]float64, error) {
	type WordSim struct {
		Word string
		Sim  float64
	}

	words := m.vocab.Words()
	scores := make(map[string]float64, len(words))
	similarities := make([]WordSim, 0, len(words))

	targetVec := m.lookup(target)
	for i, word := range words {
		sim, err := CosineSimilarity(targetVec, m.matrix.RawRowView(i))
		if err != nil {
			return nil, nil, fmt.Errorf("similarity of %q and %q: %w", target, word, err)
		}
		scores[word] = sim
		similarities = append(similarities, WordSim{word, sim})
	}

	// Sort by descending similarity
	sort.SliceStable(similarities, func(i, j int) bool {
		return similarities[i].Sim > similarities[j].Sim
	})

	limit := max(0, min(k, len(similarities)-1))
	_, known := m.vocab.Index(target)
	ranked := similarities
	if !known && len(ranked) > 0 {
		ranked = ranked[1:]
	}

	result := make([]string, 0, limit)
	for _, ws := range ranked {
		if len(result) >= limit {
			break
		}
		if known && ws.Word == target {
			continue
		}
		result = append(result, ws.Word)
	}

	return result, scores, nil
}
