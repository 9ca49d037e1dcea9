package sgns

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WordPair is one row of a similarity query file.
type WordPair struct {
	Word1         string
	Word2         string
	Similarity    float64 // Reference score, when the file has one
	HasSimilarity bool
}

// ScoredPair is a word pair with its computed similarity.
type ScoredPair struct {
	Word1      string
	Word2      string
	Similarity float64
}

// ReadWordPairs reads a tab-delimited file with a "word_1 word_2 [similarity]" header.
func ReadWordPairs(r io.Reader) ([]WordPair, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	w1, ok1 := cols["word_1"]
	w2, ok2 := cols["word_2"]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("header %q lacks word_1 and word_2 columns", header)
	}
	simCol, hasSim := cols["similarity"]

	var pairs []WordPair
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) <= max(w1, w2) {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, max(w1, w2)+1, len(record))
		}

		pair := WordPair{Word1: record[w1], Word2: record[w2]}
		if hasSim && simCol < len(record) && strings.TrimSpace(record[simCol]) != "" {
			pair.Similarity, err = strconv.ParseFloat(strings.TrimSpace(record[simCol]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse similarity: %w", line, err)
			}
			pair.HasSimilarity = true
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

// WriteSimilarities writes a comma-delimited "word_1,word_2,similarity" file.
func WriteSimilarities(w io.Writer, results []ScoredPair) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"word_1", "word_2", "similarity"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{r.Word1, r.Word2, strconv.FormatFloat(r.Similarity, 'g', -1, 64)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ScorePairs computes the similarity of every pair, in input order.
func (m *Model) ScorePairs(pairs []WordPair) ([]ScoredPair, error) {
	results := make([]ScoredPair, 0, len(pairs))
	for _, p := range pairs {
		sim, err := m.WordsSimilarity(p.Word1, p.Word2)
		if err != nil {
			return nil, err
		}
		results = append(results, ScoredPair{Word1: p.Word1, Word2: p.Word2, Similarity: sim})
	}
	return results, nil
}
