package store

import (
	"fmt"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseReadFailure   StorageErrorCause = "read failure"
	ErrCauseWriteFailure  StorageErrorCause = "write failure"
	ErrCauseDecodeFailure StorageErrorCause = "decode failure"
	ErrCauseEncodeFailure StorageErrorCause = "encode failure"
	ErrCausePathError     StorageErrorCause = "path error"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
