package stats_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/campus-crawler/internal/stats"
)

func TestOutput_ReportFormat(t *testing.T) {
	g := openForTest(t)
	require.Nil(t, g.Update(recordA()))
	require.Nil(t, g.Update(recordB()))

	report, err := g.Output()
	require.Nil(t, err)

	assert.Contains(t, report, "--- DELIVERABLE 1: NUMBER OF UNIQUE PAGES ---")
	assert.Contains(t, report, "UNIQUE PAGES (DOWNLOADED): 2")
	assert.Contains(t, report, "UNIQUE URLS (SEEN): 5")

	assert.Contains(t, report, "--- DELIVERABLE 2: LONGEST PAGE IN WORDS ---")
	assert.Contains(t, report, "PAGE: https://B.uci.edu/longer")
	assert.Contains(t, report, "PAGE LENGTH: 116")

	assert.Contains(t, report, "--- DELIVERABLE 3: MOST COMMON WORDS ---")
	assert.Contains(t, report, "bar\t116")
	assert.Contains(t, report, "foo\t115")

	assert.Contains(t, report, "--- DELIVERABLE 4: SUBDOMAINS COUNT ---")
	assert.Contains(t, report, "Raw subdomain count: 2")
	assert.Contains(t, report, "a.uci.edu\t1")
	assert.Contains(t, report, "b.uci.edu\t1")

	// deliverables appear in order
	d1 := strings.Index(report, "DELIVERABLE 1")
	d2 := strings.Index(report, "DELIVERABLE 2")
	d3 := strings.Index(report, "DELIVERABLE 3")
	d4 := strings.Index(report, "DELIVERABLE 4")
	assert.True(t, d1 < d2 && d2 < d3 && d3 < d4)
}

func TestOutput_EmptyAggregate(t *testing.T) {
	g := openForTest(t)

	report, err := g.Output()
	require.Nil(t, err)

	assert.Contains(t, report, "UNIQUE PAGES (DOWNLOADED): 0")
	assert.Contains(t, report, "PAGE LENGTH: 0")
	assert.Contains(t, report, "Raw subdomain count: 0")
}

func TestTopWords_FrequencyDescThenLexAsc(t *testing.T) {
	words := map[string]int{
		"delta":   3,
		"alpha":   3,
		"charlie": 9,
		"bravo":   1,
	}

	top := stats.TopWords(words, 50)

	assert.Equal(t, []stats.WordCount{
		{Word: "charlie", Count: 9},
		{Word: "alpha", Count: 3},
		{Word: "delta", Count: 3},
		{Word: "bravo", Count: 1},
	}, top)
}

func TestTopWords_CapsAtN(t *testing.T) {
	words := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}

	top := stats.TopWords(words, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "d", top[0].Word)
	assert.Equal(t, "c", top[1].Word)
}

func TestOutput_SubdomainsAlphabetical(t *testing.T) {
	g := openForTest(t)
	require.Nil(t, g.Update(recordB()))
	require.Nil(t, g.Update(recordA()))

	report, err := g.Output()
	require.Nil(t, err)

	aIdx := strings.Index(report, "a.uci.edu\t")
	bIdx := strings.Index(report, "b.uci.edu\t")
	assert.True(t, aIdx >= 0 && bIdx >= 0 && aIdx < bIdx)
}
