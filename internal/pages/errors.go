package pages

import (
	"fmt"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

type PageErrorCause string

const (
	ErrCauseUnparseableBody PageErrorCause = "unparseable body"
	// the admissibility filter must reject out-of-scope URLs upstream;
	// reaching the processor with one is a scheduling bug
	ErrCauseOutOfScopePage PageErrorCause = "out-of-scope page"
)

type PageError struct {
	Message string
	Cause   PageErrorCause
}

func (e *PageError) Error() string {
	return fmt.Sprintf("pages error: %s: %s", e.Cause, e.Message)
}

func (e *PageError) Severity() failure.Severity {
	if e.Cause == ErrCauseOutOfScopePage {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}
