package tokenize

import (
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/fileutil"
)

// Lexicon holds the stopword list and the English dictionary word set,
// both loaded once at startup.
type Lexicon struct {
	stopwords  map[string]struct{}
	dictionary map[string]struct{}
}

// LoadLexicon reads the whitespace-separated stopword and dictionary files.
// Empty files are rejected: they would silently zero every deliverable.
func LoadLexicon(stopwordsPath, dictionaryPath string) (Lexicon, failure.ClassifiedError) {
	stopwords, err := fileutil.ReadWordFile(stopwordsPath)
	if err != nil {
		return Lexicon{}, &LexiconError{Message: err.Error(), Cause: ErrCauseStopwordsUnreadable}
	}
	if len(stopwords) == 0 {
		return Lexicon{}, &LexiconError{Message: stopwordsPath, Cause: ErrCauseStopwordsEmpty}
	}

	dictionary, err := fileutil.ReadWordFile(dictionaryPath)
	if err != nil {
		return Lexicon{}, &LexiconError{Message: err.Error(), Cause: ErrCauseDictionaryUnreadable}
	}
	if len(dictionary) == 0 {
		return Lexicon{}, &LexiconError{Message: dictionaryPath, Cause: ErrCauseDictionaryEmpty}
	}

	return Lexicon{stopwords: stopwords, dictionary: dictionary}, nil
}

// NewLexicon builds a Lexicon from in-memory word lists. Intended for tests.
func NewLexicon(stopwords, dictionary []string) Lexicon {
	lex := Lexicon{
		stopwords:  make(map[string]struct{}, len(stopwords)),
		dictionary: make(map[string]struct{}, len(dictionary)),
	}
	for _, w := range stopwords {
		lex.stopwords[w] = struct{}{}
	}
	for _, w := range dictionary {
		lex.dictionary[w] = struct{}{}
	}
	return lex
}
