package stats

import (
	"fmt"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

type StatsErrorCause string

const (
	ErrCauseShelfFailure  StatsErrorCause = "aggregate shelf failure"
	ErrCauseReportFailure StatsErrorCause = "report write failure"
)

type StatsError struct {
	Message   string
	Retryable bool
	Cause     StatsErrorCause
}

func (e *StatsError) Error() string {
	return fmt.Sprintf("stats error: %s: %s", e.Cause, e.Message)
}

func (e *StatsError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
