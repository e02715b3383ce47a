package tokenize

import (
	"fmt"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

type LexiconErrorCause string

const (
	ErrCauseStopwordsUnreadable  LexiconErrorCause = "stopwords file unreadable"
	ErrCauseDictionaryUnreadable LexiconErrorCause = "dictionary file unreadable"
	ErrCauseStopwordsEmpty       LexiconErrorCause = "stopwords file empty"
	ErrCauseDictionaryEmpty      LexiconErrorCause = "dictionary file empty"
)

type LexiconError struct {
	Message string
	Cause   LexiconErrorCause
}

func (e *LexiconError) Error() string {
	return fmt.Sprintf("lexicon error: %s: %s", e.Cause, e.Message)
}

// A missing or empty lexicon makes every word count wrong; never continue.
func (e *LexiconError) Severity() failure.Severity {
	return failure.SeverityFatal
}
