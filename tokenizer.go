package sgns

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode"
)

type WordFreq struct {
	Word string
	Freq int
}

// Transform is one step of the sentence preprocessing pipeline
type Transform func(tokens []string) []string

// Compose chains transforms, applying them left to right.
func Compose(fns ...Transform) Transform {
	return func(tokens []string) []string {
		for _, fn := range fns {
			tokens = fn(tokens)
		}
		return tokens
	}
}

// LowerWords splits a line on whitespace and lowercases every token.
func LowerWords(line string) []string {
	return strings.Fields(strings.ToLower(line))
}

// RemovePunctuation strips ASCII punctuation from every token and drops
// tokens left empty.
func RemovePunctuation(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		stripped := strings.Map(func(r rune) rune {
			if r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
				return -1
			}
			return r
		}, token)
		if stripped != "" {
			result = append(result, stripped)
		}
	}
	return result
}

// KeepAlphabetical drops tokens containing anything but letters.
func KeepAlphabetical(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if isAlphabetical(token) {
			result = append(result, token)
		}
	}
	return result
}

func isAlphabetical(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// DefaultPipeline cleans lowercased tokens of punctuation and non-alphabetic words
var DefaultPipeline = Compose(RemovePunctuation, KeepAlphabetical)

// TokenizeSentences reads one sentence per line and runs it through
// LowerWords and DefaultPipeline. Empty lines become empty sentences.
func TokenizeSentences(reader io.Reader) ([][]string, error) {
	return TokenizeSentencesWith(reader, DefaultPipeline)
}

// TokenizeSentencesWith is TokenizeSentences with a custom pipeline.
func TokenizeSentencesWith(reader io.Reader, pipeline Transform) ([][]string, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var sentences [][]string
	for scanner.Scan() {
		sentences = append(sentences, pipeline(LowerWords(scanner.Text())))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

// countTokens returns how often every token occurs across sentences
func countTokens(sentences [][]string) map[string]int {
	counts := make(map[string]int)
	for _, sentence := range sentences {
		for _, token := range sentence {
			counts[token]++
		}
	}
	return counts
}

// CountWords returns token frequencies sorted by descending frequency, for
// equal frequency alphabetically.
func CountWords(sentences [][]string) []WordFreq {
	counts := countTokens(sentences)

	result := make([]WordFreq, 0, len(counts))
	for word, freq := range counts {
		result = append(result, WordFreq{Word: word, Freq: freq})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Freq != result[j].Freq {
			return result[i].Freq > result[j].Freq
		}
		return result[i].Word < result[j].Word
	})

	return result
}

// PruneRareWords removes tokens occurring minCount times or fewer in the whole
// corpus. Sentence order and token order are preserved.
func PruneRareWords(sentences [][]string, minCount int) [][]string {
	counts := countTokens(sentences)

	pruned := make([][]string, len(sentences))
	for i, sentence := range sentences {
		kept := make([]string, 0, len(sentence))
		for _, token := range sentence {
			if counts[token] > minCount {
				kept = append(kept, token)
			}
		}
		pruned[i] = kept
	}
	return pruned
}
