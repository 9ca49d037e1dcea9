package sgns

import "fmt"

// Vocabulary maps tokens to dense zero-based indices in first-seen order.
type Vocabulary struct {
	index map[string]int // Mapping word -> index
	words []string       // Mapping index -> word
}

// NewVocabulary creates an empty vocabulary
func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// VocabularyFromWords builds a vocabulary whose indices follow the slice order.
func VocabularyFromWords(words []string) (*Vocabulary, error) {
	v := &Vocabulary{
		index: make(map[string]int, len(words)),
		words: make([]string, 0, len(words)),
	}
	for i, w := range words {
		if _, dup := v.index[w]; dup {
			return nil, fmt.Errorf("%w: duplicate word %q at index %d", ErrCorruptModelState, w, i)
		}
		v.Add(w)
	}
	return v, nil
}

// VocabularyFromMap rebuilds a vocabulary from a word -> index mapping.
// Indices must be exactly 0..len(m)-1.
func VocabularyFromMap(m map[string]int) (*Vocabulary, error) {
	words := make([]string, len(m))
	seen := make([]bool, len(m))
	for w, idx := range m {
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("%w: index %d of %q outside 0..%d", ErrCorruptModelState, idx, w, len(m)-1)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: index %d assigned twice", ErrCorruptModelState, idx)
		}
		seen[idx] = true
		words[idx] = w
	}
	return VocabularyFromWords(words)
}

// Add returns the index of token, assigning the next free index on first sight.
func (v *Vocabulary) Add(token string) int {
	if idx, ok := v.index[token]; ok {
		return idx
	}
	idx := len(v.words)
	v.index[token] = idx
	v.words = append(v.words, token)
	return idx
}

// Index returns the index of token if it is present.
func (v *Vocabulary) Index(token string) (int, bool) {
	idx, ok := v.index[token]
	return idx, ok
}

// Word returns the token stored at index i.
func (v *Vocabulary) Word(i int) string {
	return v.words[i]
}

// Len returns the number of distinct tokens.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.words)
}

// Words returns a copy of the tokens in index order.
func (v *Vocabulary) Words() []string {
	out := make([]string, len(v.words))
	copy(out, v.words)
	return out
}

// Map returns a copy of the token -> index mapping.
func (v *Vocabulary) Map() map[string]int {
	out := make(map[string]int, len(v.index))
	for w, i := range v.index {
		out[w] = i
	}
	return out
}

// Pair is a (word, context) index pair.
type Pair struct {
	Word    int // Index in the word vocabulary
	Context int // Index in the context vocabulary
}

// Sampler is the random source used for negative sampling and parameter
// initialization. *rand.Rand satisfies it.
type Sampler interface {
	Intn(n int) int
}

// PositivePairs scans every sentence and emits a (word, context) pair for each
// token within windowSize/2 positions of the center word, the center excluded.
// Word and context vocabularies grow independently in scan order.
func PositivePairs(sentences [][]string, windowSize int) ([]Pair, *Vocabulary, *Vocabulary) {
	words := NewVocabulary()
	contexts := NewVocabulary()
	half := windowSize / 2

	var pairs []Pair
	for _, sentence := range sentences {
		for i, token := range sentence {
			w := words.Add(token)

			left := max(0, i-half)
			right := min(len(sentence)-1, i+half)
			for j := left; j <= right; j++ {
				if j == i {
					continue
				}
				pairs = append(pairs, Pair{Word: w, Context: contexts.Add(sentence[j])})
			}
		}
	}

	return pairs, words, contexts
}

// NegativePairs draws negativeRate contexts for every positive pair by picking a
// random positive pair and keeping its context. Draws for one positive pair are
// consecutive, so negatives[k] shares its word with positive[k/negativeRate].
// Draws are not checked against true co-occurrence.
func NegativePairs(positive []Pair, negativeRate int, src Sampler) []Pair {
	if len(positive) == 0 || negativeRate <= 0 {
		return nil
	}

	negatives := make([]Pair, 0, len(positive)*negativeRate)
	for _, p := range positive {
		for r := 0; r < negativeRate; r++ {
			drawn := positive[src.Intn(len(positive))]
			negatives = append(negatives, Pair{Word: p.Word, Context: drawn.Context})
		}
	}

	return negatives
}
