package tokenize

import (
	"strings"
	"unicode"
)

/*
Tokenizer - segments page text into lowercased alphanumeric tokens.

Tokenize reports every token; Lexicon.Words filters down to dictionary
words minus stopwords. The "word count" deliverables are computed over
Words, never over raw tokens.
*/

// Tokenize returns the count of all tokens in text. A token is a maximal
// run of alphanumeric characters, lowercased. Typically the text comes
// from a parsed page via pages.Text.
func Tokenize(text string) map[string]int {
	tokens := make(map[string]int)

	var buffer strings.Builder
	for _, char := range text {
		if unicode.IsLetter(char) || unicode.IsDigit(char) {
			buffer.WriteRune(unicode.ToLower(char))
		} else if buffer.Len() > 0 {
			tokens[buffer.String()]++
			buffer.Reset()
		}
	}
	// anything leftover in the buffer
	if buffer.Len() > 0 {
		tokens[buffer.String()]++
	}

	return tokens
}

// Words returns the count of all words in text: tokens longer than one
// character that appear in the dictionary and are not stopwords.
func (l Lexicon) Words(text string) map[string]int {
	words := make(map[string]int)
	for token, count := range Tokenize(text) {
		if len([]rune(token)) <= 1 {
			continue
		}
		if _, stop := l.stopwords[token]; stop {
			continue
		}
		if _, known := l.dictionary[token]; !known {
			continue
		}
		words[token] = count
	}
	return words
}

// TotalCount sums the counts of a token or word multiset.
func TotalCount(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}
