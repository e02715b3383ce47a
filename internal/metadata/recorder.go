package metadata

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Recorder is the MetadataSink and CrawlFinalizer used by a live crawl.
// Output goes to stderr through logrus; TESTING=true discards it so unit
// tests stay silent and deterministic.
type Recorder struct {
	name string
	log  *logrus.Logger
}

func NewRecorder(name string) Recorder {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if os.Getenv("TESTING") == "true" {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
	return Recorder{
		name: name,
		log:  log,
	}
}

func (r *Recorder) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	sizeBytes int,
	workerID int,
) {
	r.log.WithFields(logrus.Fields{
		"recorder":    r.name,
		"url":         fetchURL,
		"http_status": httpStatus,
		"duration":    duration.String(),
		"size_bytes":  sizeBytes,
		"worker":      workerID,
	}).Info("fetch")
}

func (r *Recorder) RecordPage(
	pageURL string,
	wordCount int,
	linksSeen int,
) {
	r.log.WithFields(logrus.Fields{
		"recorder":   r.name,
		"url":        pageURL,
		"word_count": wordCount,
		"links_seen": linksSeen,
	}).Info("processed page")
}

func (r *Recorder) RecordEvent(
	packageName string,
	action string,
	message string,
	attrs []Attribute,
) {
	fields := logrus.Fields{
		"recorder": r.name,
		"package":  packageName,
		"action":   action,
	}
	for _, attr := range attrs {
		fields[string(attr.Key)] = attr.Value
	}
	r.log.WithFields(fields).Info(message)
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	fields := logrus.Fields{
		"recorder":    r.name,
		"package":     packageName,
		"action":      action,
		"cause":       causeString(cause),
		"observed_at": observedAt.Format(time.RFC3339),
	}
	for _, attr := range attrs {
		fields[string(attr.Key)] = attr.Value
	}
	r.log.WithFields(fields).Error(errorString)
}

func (r *Recorder) RecordFinalCrawlStats(
	totalPages int,
	totalErrors int,
	duration time.Duration,
) {
	r.log.WithFields(logrus.Fields{
		"recorder":     r.name,
		"total_pages":  totalPages,
		"total_errors": totalErrors,
		"duration":     duration.String(),
	}).Info("crawl finished")
}

func causeString(cause ErrorCause) string {
	switch cause {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}
