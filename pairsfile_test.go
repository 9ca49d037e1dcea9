package sgns

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestReadWordPairs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []WordPair
		wantErr bool
	}{
		{
			name:  "With similarity",
			input: "word_1\tword_2\tsimilarity\ntiger\tcat\t7.35\nbook\tpaper\t\n",
			want: []WordPair{
				{Word1: "tiger", Word2: "cat", Similarity: 7.35, HasSimilarity: true},
				{Word1: "book", Word2: "paper"},
			},
		},
		{
			name:  "Without similarity",
			input: "word_1\tword_2\nred\tblue\n",
			want:  []WordPair{{Word1: "red", Word2: "blue"}},
		},
		{
			name:  "Reordered columns",
			input: "word_2\tword_1\nb\ta\n",
			want:  []WordPair{{Word1: "a", Word2: "b"}},
		},
		{
			name:  "Empty file",
			input: "",
			want:  nil,
		},
		{
			name:    "Missing column",
			input:   "first\tsecond\na\tb\n",
			wantErr: true,
		},
		{
			name:    "Short row",
			input:   "word_1\tword_2\nlonely\n",
			wantErr: true,
		},
		{
			name:    "Bad similarity",
			input:   "word_1\tword_2\tsimilarity\na\tb\thigh\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadWordPairs(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadWordPairs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadWordPairs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScorePairsAndWrite(t *testing.T) {
	m := colorModel(t)
	pairs := []WordPair{
		{Word1: "red", Word2: "green"},
		{Word1: "red", Word2: "red"},
		{Word1: "unknown", Word2: "missing"},
	}

	results, err := m.ScorePairs(pairs)
	if err != nil {
		t.Fatalf("ScorePairs() error = %v", err)
	}
	want := []float64{0.5677188782302137, 1, 1}
	for i, r := range results {
		if r.Word1 != pairs[i].Word1 || r.Word2 != pairs[i].Word2 {
			t.Errorf("result %d = %s/%s, want input order", i, r.Word1, r.Word2)
		}
		if math.Abs(r.Similarity-want[i]) > TestEpsilon {
			t.Errorf("result %d similarity = %v, want %v", i, r.Similarity, want[i])
		}
	}

	var buf bytes.Buffer
	if err := WriteSimilarities(&buf, results); err != nil {
		t.Fatalf("WriteSimilarities() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("wrote %d lines, want 4", len(lines))
	}
	if lines[0] != "word_1,word_2,similarity" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "red,green,0.5677") {
		t.Errorf("line 2 = %q, want red,green,0.5677...", lines[1])
	}
}
