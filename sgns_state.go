package sgns

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// File names of the two model blobs inside a model directory
const (
	MatrixFilename = "embed_matrix"
	VocabFilename  = "words_voc"
)

// MarshalBlobs encodes the embedding matrix and the word vocabulary as two
// independent blobs that together form the model artifact.
func (m *Model) MarshalBlobs() (matrix, vocab []byte, err error) {
	matrix, err = m.matrix.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("encode embedding matrix: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m.vocab.Words()); err != nil {
		return nil, nil, fmt.Errorf("encode vocabulary: %w", err)
	}
	return matrix, buf.Bytes(), nil
}

// ModelFromBlobs decodes a model written by MarshalBlobs. Both blobs are
// required and must agree on the number of words.
func ModelFromBlobs(matrix, vocab []byte, opts ...ModelOption) (*Model, error) {
	if len(matrix) == 0 || len(vocab) == 0 {
		return nil, fmt.Errorf("%w: embedding matrix and vocabulary blobs are both required", ErrCorruptModelState)
	}

	var dense mat.Dense
	if err := dense.UnmarshalBinary(matrix); err != nil {
		return nil, fmt.Errorf("%w: decode embedding matrix: %v", ErrCorruptModelState, err)
	}

	var words []string
	if err := gob.NewDecoder(bytes.NewReader(vocab)).Decode(&words); err != nil {
		return nil, fmt.Errorf("%w: decode vocabulary: %v", ErrCorruptModelState, err)
	}
	v, err := VocabularyFromWords(words)
	if err != nil {
		return nil, err
	}

	return NewModel(&dense, v, opts...)
}

// SaveModel writes the model blobs into dir, creating it if needed.
func (m *Model) SaveModel(dir string) error {
	matrix, vocab, err := m.MarshalBlobs()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, MatrixFilename), matrix); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, VocabFilename), vocab)
}

// LoadModel reads a model directory written by SaveModel. A directory holding
// only one of the two blobs is reported as ErrCorruptModelState.
func LoadModel(dir string, opts ...ModelOption) (*Model, error) {
	matrix, matrixErr := os.ReadFile(filepath.Join(dir, MatrixFilename))
	vocab, vocabErr := os.ReadFile(filepath.Join(dir, VocabFilename))

	matrixMissing := errors.Is(matrixErr, fs.ErrNotExist)
	vocabMissing := errors.Is(vocabErr, fs.ErrNotExist)
	switch {
	case matrixMissing && vocabMissing:
		return nil, fmt.Errorf("no model in %s: %w", dir, matrixErr)
	case matrixMissing || vocabMissing:
		return nil, fmt.Errorf("%w: %s holds only one of %s and %s",
			ErrCorruptModelState, dir, MatrixFilename, VocabFilename)
	case matrixErr != nil:
		return nil, matrixErr
	case vocabErr != nil:
		return nil, vocabErr
	}

	return ModelFromBlobs(matrix, vocab, opts...)
}

func writeFileAtomic(filename string, data []byte) error {
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}

// SaveVectors writes one "word v1 v2 ..." line per vocabulary word in index
// order, preceded by a "words dim" line when header is set.
func (m *Model) SaveVectors(w io.Writer, header bool) error {
	writer := bufio.NewWriter(w)
	rows, dim := m.matrix.Dims()

	if header {
		fmt.Fprintf(writer, "%d %d\n", rows, dim)
	}

	for i := 0; i < rows; i++ {
		writer.WriteString(m.vocab.Word(i))
		for _, v := range m.matrix.RawRowView(i) {
			writer.WriteByte(' ')
			writer.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
		}
		writer.WriteByte('\n')
	}

	return writer.Flush()
}

// LoadVectors reads the text format written by SaveVectors. header must match
// the flag the file was saved with; a declared header is checked against the
// rows that follow it.
func LoadVectors(r io.Reader, header bool, opts ...ModelOption) (*Model, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading vectors: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty vectors file", ErrCorruptModelState)
	}

	first := 1
	wantWords, wantDim := -1, -1
	if header {
		parts := strings.Fields(lines[0])
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: header %q is not \"words dim\"", ErrCorruptModelState, lines[0])
		}
		var err1, err2 error
		wantWords, err1 = strconv.Atoi(parts[0])
		wantDim, err2 = strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: header %q is not \"words dim\"", ErrCorruptModelState, lines[0])
		}
		lines = lines[1:]
		first = 2
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: no vectors after the header", ErrCorruptModelState)
		}
	}

	dim := len(strings.Fields(lines[0])) - 1
	if dim < 1 {
		return nil, fmt.Errorf("%w: line %d has no vector components", ErrCorruptModelState, first)
	}
	if header && (wantWords != len(lines) || wantDim != dim) {
		return nil, fmt.Errorf("%w: header declares %d words of dim %d, file has %d of dim %d",
			ErrCorruptModelState, wantWords, wantDim, len(lines), dim)
	}

	words := make([]string, 0, len(lines))
	data := make([]float64, 0, len(lines)*dim)
	for i, line := range lines {
		parts := strings.Fields(line)
		if len(parts) != dim+1 {
			return nil, fmt.Errorf("%w: line %d has %d components, want %d",
				ErrCorruptModelState, i+first, len(parts)-1, dim)
		}
		words = append(words, parts[0])
		for _, p := range parts[1:] {
			val, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing vector component for word '%s': %v", parts[0], err)
			}
			data = append(data, val)
		}
	}

	vocab, err := VocabularyFromWords(words)
	if err != nil {
		return nil, err
	}
	return NewModel(mat.NewDense(len(words), dim, data), vocab, opts...)
}

// checkpoint contains the complete state of an unfinished training run
type checkpoint struct {
	Config      Config
	Words       []string
	Contexts    []string
	Positive    []Pair
	Negative    []Pair
	Theta       []float64
	EpochsDone  int
	BatchesDone int
}

// SaveCheckpoint saves the training state to a file using gob encoding so the
// run can continue after LoadCheckpoint.
func (s *SkipGram) SaveCheckpoint(filename string) error {
	if s.state != StateInitialized && s.state != StateTraining {
		return fmt.Errorf("%w: cannot checkpoint a %s model", ErrInvalidConfiguration, s.state)
	}

	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(checkpoint{
		Config:      s.config,
		Words:       s.words.Words(),
		Contexts:    s.contexts.Words(),
		Positive:    s.positive,
		Negative:    s.negative,
		Theta:       s.theta,
		EpochsDone:  s.epochsDone,
		BatchesDone: s.batchesDone,
	})
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return writeFileAtomic(filename, buf.Bytes())
}

// LoadCheckpoint restores a training run saved by SaveCheckpoint.
func LoadCheckpoint(filename string, opts ...Option) (*SkipGram, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cp checkpoint
	if err := gob.NewDecoder(file).Decode(&cp); err != nil {
		return nil, fmt.Errorf("%w: decode checkpoint: %v", ErrCorruptModelState, err)
	}

	s, err := NewSkipGram(cp.Config, opts...)
	if err != nil {
		return nil, err
	}

	words, err := VocabularyFromWords(cp.Words)
	if err != nil {
		return nil, err
	}
	contexts, err := VocabularyFromWords(cp.Contexts)
	if err != nil {
		return nil, err
	}

	l := layout{dim: cp.Config.EmbeddingDim, numWords: words.Len(), numContexts: contexts.Len()}
	if err := l.checkPairs(cp.Positive); err != nil {
		return nil, fmt.Errorf("%w: positive %v", ErrCorruptModelState, err)
	}
	if err := l.checkPairs(cp.Negative); err != nil {
		return nil, fmt.Errorf("%w: negative %v", ErrCorruptModelState, err)
	}
	if len(cp.Negative) != len(cp.Positive)*cp.Config.NegativeRate {
		return nil, fmt.Errorf("%w: %d negative pairs for %d positive pairs at rate %d",
			ErrCorruptModelState, len(cp.Negative), len(cp.Positive), cp.Config.NegativeRate)
	}
	if cp.Theta != nil && len(cp.Theta) != l.size() {
		return nil, fmt.Errorf("%w: theta has %d values, want %d", ErrCorruptModelState, len(cp.Theta), l.size())
	}

	s.words = words
	s.contexts = contexts
	s.positive = cp.Positive
	s.negative = cp.Negative
	s.theta = cp.Theta
	s.epochsDone = cp.EpochsDone
	s.batchesDone = cp.BatchesDone
	s.state = StateInitialized
	if s.theta != nil && (s.epochsDone > 0 || s.batchesDone > 0) {
		s.state = StateTraining
	}
	return s, nil
}
