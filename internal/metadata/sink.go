package metadata

import "time"

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Per-page word and link counts
- Crawl lifecycle events (seed start, resume, idle, worker shutdown)
- Failure diagnostics

Metadata emission is observational only and MUST NOT influence
scheduling, retries, or crawl termination.

Allowed values:
- Primitives, timestamps, durations
- URLs and hosts (as values, not objects with behavior)
- Hashes, status codes, identifiers (worker ID, shelf path)
*/

type MetadataSink interface {
	// RecordFetch records one completed fetch attempt, successful or not.
	RecordFetch(
		fetchURL string,
		httpStatus int,
		duration time.Duration,
		sizeBytes int,
		workerID int,
	)

	// RecordPage records one successfully processed page.
	RecordPage(
		pageURL string,
		wordCount int,
		linksSeen int,
	)

	// RecordEvent records a lifecycle event.
	RecordEvent(
		packageName string,
		action string,
		message string,
		attrs []Attribute,
	)

	// RecordError records a classified failure.
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		errorString string,
		attrs []Attribute,
	)
}

// CrawlFinalizer records the terminal, derived summary of a completed crawl.
// It is computed by the crawler after termination and recorded exactly once.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		totalPages int,
		totalErrors int,
		duration time.Duration,
	)
}

// NoopSink discards everything. Used by tests that assert on behavior,
// not on logging.
type NoopSink struct{}

func (NoopSink) RecordFetch(string, int, time.Duration, int, int) {}

func (NoopSink) RecordPage(string, int, int) {}

func (NoopSink) RecordEvent(string, string, string, []Attribute) {}

func (NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}

func (NoopSink) RecordFinalCrawlStats(int, int, time.Duration) {}
