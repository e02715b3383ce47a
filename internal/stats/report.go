package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/fileutil"
	"github.com/rohmanhakim/campus-crawler/pkg/hashutil"
)

const topWordCount = 50

/*
Report - the four deliverables rendered from the aggregate:

 1. number of unique pages (downloaded) and unique URLs seen on pages
 2. the longest page by word count
 3. the 50 most common words, frequency descending then lexicographic
 4. per-subdomain page counts, alphabetically
*/

// Output renders the human-readable report, writes it and the JSON dump
// next to the shelf, and returns the report text. Under TESTING=true
// nothing is written; the text is still returned.
func (g *GlobalStats) Output() (string, failure.ClassifiedError) {
	snapshot, err := g.Raw()
	if err != nil {
		return "", err
	}

	reportPath := g.basename + ".txt"
	report := renderReport(reportPath, g.basename, snapshot)

	if os.Getenv("TESTING") == "true" {
		return report, nil
	}

	if dirErr := fileutil.EnsureDir(filepath.Dir(reportPath)); dirErr != nil {
		return "", &StatsError{Message: dirErr.Error(), Cause: ErrCauseReportFailure}
	}
	if writeErr := os.WriteFile(reportPath, []byte(report), 0644); writeErr != nil {
		return "", &StatsError{Message: writeErr.Error(), Cause: ErrCauseReportFailure}
	}
	g.sink.RecordEvent("stats", "Output", "wrote deliverables report",
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrWritePath, reportPath)})

	if dumpErr := g.jsonDump(snapshot); dumpErr != nil {
		return "", dumpErr
	}
	return report, nil
}

// jsonDump writes the machine-readable dump of the aggregate.
// Only to be called after the report has been rendered.
func (g *GlobalStats) jsonDump(snapshot AggregateSnapshot) failure.ClassifiedError {
	dumpPath := g.basename + "-dump.json"

	content, err := json.MarshalIndent(map[string]any{
		"url_word_map":    snapshot.URLWordCounts,
		"total_urls_seen": snapshot.URLsSeenOnPage,
		"words":           snapshot.Words,
		"subdomains":      snapshot.Subdomains,
	}, "", "    ")
	if err != nil {
		return &StatsError{Message: err.Error(), Cause: ErrCauseReportFailure}
	}
	if err := os.WriteFile(dumpPath, content, 0644); err != nil {
		return &StatsError{Message: err.Error(), Cause: ErrCauseReportFailure}
	}

	checksum, _ := hashutil.HashBytes(content, hashutil.HashAlgoBLAKE3)
	g.sink.RecordEvent("stats", "jsonDump", "dumped deliverables",
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, dumpPath),
			metadata.NewAttr(metadata.AttrChecksum, checksum),
		})
	return nil
}

func renderReport(reportPath, basename string, snapshot AggregateSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Deliverable path: %s\n", reportPath)
	fmt.Fprintf(&b, "Deliverable ID: %s\n", basename)
	b.WriteString("\n")

	b.WriteString("--- DELIVERABLE 1: NUMBER OF UNIQUE PAGES ---\n")
	fmt.Fprintf(&b, "UNIQUE PAGES (DOWNLOADED): %d\n", len(snapshot.URLWordCounts))
	fmt.Fprintf(&b, "UNIQUE URLS (SEEN): %d\n", snapshot.URLsSeenOnPage)
	b.WriteString("\n")

	longestPage, longestLen := longestPage(snapshot.URLWordCounts)
	b.WriteString("--- DELIVERABLE 2: LONGEST PAGE IN WORDS ---\n")
	fmt.Fprintf(&b, "PAGE: %s\n", longestPage)
	fmt.Fprintf(&b, "PAGE LENGTH: %d\n", longestLen)
	b.WriteString("\n")

	b.WriteString("--- DELIVERABLE 3: MOST COMMON WORDS ---\n")
	for _, entry := range TopWords(snapshot.Words, topWordCount) {
		fmt.Fprintf(&b, "%s\t%d\n", entry.Word, entry.Count)
	}
	b.WriteString("\n")

	b.WriteString("--- DELIVERABLE 4: SUBDOMAINS COUNT ---\n")
	fmt.Fprintf(&b, "Raw subdomain count: %d\n", len(snapshot.Subdomains))
	b.WriteString("\n")
	b.WriteString("Subdomain counts (alphabetically):\n")
	for _, subdomain := range sortedStringKeys(snapshot.Subdomains) {
		fmt.Fprintf(&b, "%s\t%d\n", subdomain, snapshot.Subdomains[subdomain])
	}

	return b.String()
}

// longestPage picks the URL with the highest word count; ties break toward
// the lexicographically smaller URL so the report is deterministic.
func longestPage(urlWordCounts map[string]int) (string, int) {
	var bestURL string
	bestLen := -1
	for _, url := range sortedStringKeys(urlWordCounts) {
		if urlWordCounts[url] > bestLen {
			bestURL = url
			bestLen = urlWordCounts[url]
		}
	}
	if bestLen < 0 {
		return "", 0
	}
	return bestURL, bestLen
}

type WordCount struct {
	Word  string
	Count int
}

// TopWords returns up to n words ordered by frequency descending, then
// lexicographically ascending.
func TopWords(words map[string]int, n int) []WordCount {
	entries := make([]WordCount, 0, len(words))
	for word, count := range words {
		entries = append(entries, WordCount{Word: word, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func sortedStringKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ReportTimestamp formats a time in the same layout Open uses when it
// names a new aggregate shelf.
func ReportTimestamp(t time.Time) string {
	return t.Format("01-02-15-04-05")
}
