package frontier

import (
	"fmt"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

type FrontierErrorCause string

const (
	// marking a URL complete twice indicates a scheduling bug
	ErrCauseDoubleCompletion FrontierErrorCause = "url already downloaded"
	// completing a URL the seen-set never saw indicates a scheduling bug
	ErrCauseCompleteUnseen FrontierErrorCause = "url never seen"
	ErrCauseStoreFailure   FrontierErrorCause = "seen-set store failure"
)

type FrontierError struct {
	Message   string
	Retryable bool
	Cause     FrontierErrorCause
}

func (e *FrontierError) Error() string {
	return fmt.Sprintf("frontier error: %s: %s", e.Cause, e.Message)
}

func (e *FrontierError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
