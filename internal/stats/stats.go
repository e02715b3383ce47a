package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/internal/store"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

/*
GlobalStats - the durable global aggregate of all per-page records.

All workers pipe their PageRecords here; every merge is written through to
the aggregate shelf. The program can stop at any point: as long as the
aggregate is not marked finished, a subsequent crawl start-up discovers the
shelf and keeps updating it.
*/

const (
	keyURLWordMap    = "url_word_map"
	keyTotalURLsSeen = "total_urls_seen"
	keyWords         = "words"
	keySubdomains    = "subdomains"
	keyFinished      = "finished"
)

const shelfSuffix = ".shelve"

type GlobalStats struct {
	mu        sync.Mutex
	shelf     store.Shelf
	shelfPath string
	basename  string
	sink      metadata.MetadataSink
}

// Open opens the aggregate at shelfPath, or - when shelfPath is empty -
// discovers an existing unfinished aggregate under outputDir and resumes
// it, falling back to a new timestamped shelf. Defaults are seeded so a
// fresh shelf reads back as an empty, unfinished aggregate.
func Open(outputDir string, shelfPath string, sink metadata.MetadataSink) (*GlobalStats, failure.ClassifiedError) {
	if shelfPath == "" {
		if previous := previousUnfinishedShelf(outputDir); previous != "" {
			shelfPath = previous
			sink.RecordEvent("stats", "Open", "resuming unfinished aggregate",
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrWritePath, shelfPath)})
		} else {
			name := "deliverables-" + time.Now().Format("01-02-15-04-05")
			shelfPath = filepath.Join(outputDir, name+shelfSuffix)
			// two crawls starting within the same second must not share a shelf
			for i := 1; store.Exists(shelfPath); i++ {
				shelfPath = filepath.Join(outputDir, fmt.Sprintf("%s-%d%s", name, i, shelfSuffix))
			}
		}
	}

	shelf, err := store.Open(shelfPath)
	if err != nil {
		return nil, &StatsError{Message: err.Error(), Cause: ErrCauseShelfFailure}
	}

	g := &GlobalStats{
		shelf:     shelf,
		shelfPath: shelfPath,
		basename:  strings.TrimSuffix(shelfPath, shelfSuffix),
		sink:      sink,
	}
	if err := g.seedDefaults(); err != nil {
		return nil, err
	}
	return g, nil
}

// previousUnfinishedShelf returns the first aggregate shelf under outputDir
// whose finished flag is unset, or empty when none qualifies.
// Never matches under TESTING=true: in-memory crawls do not resume.
func previousUnfinishedShelf(outputDir string) string {
	if os.Getenv("TESTING") == "true" {
		return ""
	}
	matches, err := filepath.Glob(filepath.Join(outputDir, "deliverables-*"+shelfSuffix))
	if err != nil {
		return ""
	}
	for _, match := range matches {
		info, statErr := os.Stat(match)
		if statErr != nil || info.IsDir() {
			continue
		}
		shelf, openErr := store.Open(match)
		if openErr != nil {
			continue
		}
		var finished bool
		found, getErr := shelf.Get(keyFinished, &finished)
		if getErr != nil {
			continue
		}
		if !found || !finished {
			return match
		}
	}
	return ""
}

func (g *GlobalStats) seedDefaults() failure.ClassifiedError {
	defaults := []struct {
		key   string
		value any
	}{
		{keyURLWordMap, map[string]int{}},
		{keyTotalURLsSeen, 0},
		{keyWords, map[string]int{}},
		{keySubdomains, map[string]int{}},
		{keyFinished, false},
	}
	for _, def := range defaults {
		var probe any
		found, err := g.shelf.Get(def.key, &probe)
		if err != nil {
			return &StatsError{Message: err.Error(), Cause: ErrCauseShelfFailure}
		}
		if found {
			continue
		}
		if err := g.shelf.Put(def.key, def.value); err != nil {
			return &StatsError{Message: err.Error(), Cause: ErrCauseShelfFailure}
		}
	}
	return nil
}

// Update atomically merges a per-page record into the durable global state.
func (g *GlobalStats) Update(record PageRecord) failure.ClassifiedError {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, err := g.loadRecord()
	if err != nil {
		return err
	}
	current.Merge(record)

	writes := []struct {
		key   string
		value any
	}{
		{keyURLWordMap, current.URLWordCounts},
		{keyTotalURLsSeen, current.URLsSeenOnPage},
		{keyWords, current.Words},
		{keySubdomains, current.Subdomains},
	}
	for _, write := range writes {
		if err := g.shelf.Put(write.key, write.value); err != nil {
			return &StatsError{Message: err.Error(), Cause: ErrCauseShelfFailure}
		}
	}
	return nil
}

// MarkFinished flags the aggregate as complete. Only called at normal
// crawl termination; an unfinished aggregate is resumed by the next run.
func (g *GlobalStats) MarkFinished() failure.ClassifiedError {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.shelf.Put(keyFinished, true); err != nil {
		return &StatsError{Message: err.Error(), Cause: ErrCauseShelfFailure}
	}
	return nil
}

// Raw returns a read-only copy of the aggregate.
func (g *GlobalStats) Raw() (AggregateSnapshot, failure.ClassifiedError) {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, err := g.loadRecord()
	if err != nil {
		return AggregateSnapshot{}, err
	}
	var finished bool
	if _, getErr := g.shelf.Get(keyFinished, &finished); getErr != nil {
		return AggregateSnapshot{}, &StatsError{Message: getErr.Error(), Cause: ErrCauseShelfFailure}
	}
	return AggregateSnapshot{PageRecord: record, Finished: finished}, nil
}

// ShelfPath is the aggregate's backing path (informational; empty basename
// pieces never escape the output directory).
func (g *GlobalStats) ShelfPath() string {
	return g.shelfPath
}

// loadRecord reads the aggregate record from the shelf.
// Callers must hold g.mu.
func (g *GlobalStats) loadRecord() (PageRecord, failure.ClassifiedError) {
	record := NewPageRecord()
	reads := []struct {
		key string
		out any
	}{
		{keyURLWordMap, &record.URLWordCounts},
		{keyTotalURLsSeen, &record.URLsSeenOnPage},
		{keyWords, &record.Words},
		{keySubdomains, &record.Subdomains},
	}
	for _, read := range reads {
		if _, err := g.shelf.Get(read.key, read.out); err != nil {
			return PageRecord{}, &StatsError{Message: err.Error(), Cause: ErrCauseShelfFailure}
		}
	}
	return record, nil
}
