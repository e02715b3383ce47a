package tokenize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohmanhakim/campus-crawler/internal/tokenize"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "simple words",
			text: "the quick brown fox",
			want: map[string]int{"the": 1, "quick": 1, "brown": 1, "fox": 1},
		},
		{
			name: "lowercased",
			text: "The THE tHe",
			want: map[string]int{"the": 3},
		},
		{
			name: "punctuation splits tokens",
			text: "don't stop-believing",
			want: map[string]int{"don": 1, "t": 1, "stop": 1, "believing": 1},
		},
		{
			name: "digits are token characters",
			text: "cs161 meets in ICS2",
			want: map[string]int{"cs161": 1, "meets": 1, "in": 1, "ics2": 1},
		},
		{
			name: "trailing buffer emitted at EOF",
			text: "end",
			want: map[string]int{"end": 1},
		},
		{
			name: "empty text",
			text: "",
			want: map[string]int{},
		},
		{
			name: "only separators",
			text: " \t\n .,;",
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize.Tokenize(tt.text))
		})
	}
}

func TestWords_FiltersToDictionaryMinusStopwords(t *testing.T) {
	lex := tokenize.NewLexicon(
		[]string{"the", "and"},
		[]string{"the", "crawler", "polite", "fox"},
	)

	words := lex.Words("The polite crawler and the polite fox xyzzy a")

	assert.Equal(t, map[string]int{
		"polite":  2,
		"crawler": 1,
		"fox":     1,
	}, words)
	// stopword excluded even though it is in the dictionary
	assert.NotContains(t, words, "the")
	// not a dictionary word
	assert.NotContains(t, words, "xyzzy")
	// single characters never count
	assert.NotContains(t, words, "a")
}

func TestWords_SingleCharacterTokensExcluded(t *testing.T) {
	lex := tokenize.NewLexicon(nil, []string{"a", "i", "ab"})

	words := lex.Words("a i ab")

	assert.Equal(t, map[string]int{"ab": 1}, words)
}

func TestWords_CountsRepeats(t *testing.T) {
	lex := tokenize.NewLexicon(nil, []string{"foo"})

	text := strings.Repeat("foo ", 115) + "baz bar"
	words := lex.Words(text)

	assert.Equal(t, 115, words["foo"])
	assert.Zero(t, words["baz"])
	assert.Equal(t, 115, tokenize.TotalCount(words))
}

func TestTotalCount(t *testing.T) {
	assert.Equal(t, 0, tokenize.TotalCount(nil))
	assert.Equal(t, 6, tokenize.TotalCount(map[string]int{"a": 1, "b": 2, "c": 3}))
}
