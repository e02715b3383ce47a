package metadata

import (
	"time"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	CauseUnknown ErrorCause = iota
	// network transport or remote availability: timeouts, resets, DNS
	CauseNetworkFailure
	// crawling disallowed by explicit policy: scope filter, hard-coded robots tables
	CausePolicyDisallow
	// content fetched but not processable: empty body, broken DOM, non-200
	CauseContentInvalid
	// failure persisting crawl state: seen-set shelf, aggregate shelf, report files
	CauseStorageFailure
	// a system-level invariant was violated: double completion, out-of-scope page processed
	CauseInvariantViolation
)

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrWorker     AttributeKey = "worker"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWordCount  AttributeKey = "word_count"
	AttrLinksSeen  AttributeKey = "links_seen"
	AttrWritePath  AttributeKey = "write_path"
	AttrChecksum   AttributeKey = "checksum"
)
