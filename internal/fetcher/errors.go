package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout        FetchErrorCause = "timeout"
	ErrCauseNetworkFailure FetchErrorCause = "network issues"
	ErrCauseBadRequest     FetchErrorCause = "request could not be built"
	ErrCauseReadBodyError  FetchErrorCause = "failed to read response body"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseReadBodyError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
