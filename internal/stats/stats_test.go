package stats_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/internal/stats"
)

func recordA() stats.PageRecord {
	record := stats.NewPageRecord()
	record.URLWordCounts["https://A.uci.edu"] = 115
	record.URLsSeenOnPage = 3
	record.Words["foo"] = 115
	record.Subdomains["a.uci.edu"] = 1
	return record
}

func recordB() stats.PageRecord {
	record := stats.NewPageRecord()
	record.URLWordCounts["https://B.uci.edu/longer"] = 116
	record.URLsSeenOnPage = 2
	record.Words["bar"] = 116
	record.Subdomains["b.uci.edu"] = 1
	return record
}

func recordC() stats.PageRecord {
	record := stats.NewPageRecord()
	record.URLWordCounts["https://C.uci.edu"] = 7
	record.URLsSeenOnPage = 1
	record.Words["foo"] = 7
	record.Subdomains["a.uci.edu"] = 1
	return record
}

func openForTest(t *testing.T) *stats.GlobalStats {
	t.Helper()
	t.Setenv("TESTING", "true")
	g, err := stats.Open("Output", "", metadata.NoopSink{})
	require.Nil(t, err)
	return g
}

func TestUpdate_MergesRecords(t *testing.T) {
	g := openForTest(t)

	require.Nil(t, g.Update(recordA()))
	require.Nil(t, g.Update(recordB()))

	snapshot, err := g.Raw()
	require.Nil(t, err)

	assert.Equal(t, map[string]int{
		"https://A.uci.edu":        115,
		"https://B.uci.edu/longer": 116,
	}, snapshot.URLWordCounts)
	assert.Equal(t, 5, snapshot.URLsSeenOnPage)
	assert.Equal(t, 115, snapshot.Words["foo"])
	assert.Equal(t, 116, snapshot.Words["bar"])
	assert.Zero(t, snapshot.Words["baz"])
	assert.Equal(t, map[string]int{"a.uci.edu": 1, "b.uci.edu": 1}, snapshot.Subdomains)
	assert.False(t, snapshot.Finished)
}

func TestUpdate_OrderIndependent(t *testing.T) {
	permutations := [][]stats.PageRecord{
		{recordA(), recordB(), recordC()},
		{recordC(), recordA(), recordB()},
		{recordB(), recordC(), recordA()},
	}

	var snapshots []stats.AggregateSnapshot
	for _, perm := range permutations {
		g := openForTest(t)
		for _, record := range perm {
			require.Nil(t, g.Update(record))
		}
		snapshot, err := g.Raw()
		require.Nil(t, err)
		snapshots = append(snapshots, snapshot)
	}

	assert.Equal(t, snapshots[0], snapshots[1])
	assert.Equal(t, snapshots[1], snapshots[2])
}

func TestUpdate_SubdomainMultisetAddition(t *testing.T) {
	g := openForTest(t)

	require.Nil(t, g.Update(recordA()))
	require.Nil(t, g.Update(recordC()))

	snapshot, err := g.Raw()
	require.Nil(t, err)
	assert.Equal(t, 2, snapshot.Subdomains["a.uci.edu"])
	assert.Equal(t, 122, snapshot.Words["foo"])
}

func TestMarkFinished(t *testing.T) {
	g := openForTest(t)

	require.Nil(t, g.MarkFinished())

	snapshot, err := g.Raw()
	require.Nil(t, err)
	assert.True(t, snapshot.Finished)
}

func TestOpen_ResumesUnfinishedShelf(t *testing.T) {
	t.Setenv("TESTING", "false")
	outputDir := t.TempDir()

	first, err := stats.Open(outputDir, "", metadata.NoopSink{})
	require.Nil(t, err)
	require.Nil(t, first.Update(recordA()))
	// not marked finished: the crawl "died" here

	second, err := stats.Open(outputDir, "", metadata.NoopSink{})
	require.Nil(t, err)
	assert.Equal(t, first.ShelfPath(), second.ShelfPath())

	snapshot, rawErr := second.Raw()
	require.Nil(t, rawErr)
	assert.Equal(t, 115, snapshot.Words["foo"])
}

func TestOpen_FinishedShelfNotResumed(t *testing.T) {
	t.Setenv("TESTING", "false")
	outputDir := t.TempDir()

	first, err := stats.Open(outputDir, "", metadata.NoopSink{})
	require.Nil(t, err)
	require.Nil(t, first.Update(recordA()))
	require.Nil(t, first.MarkFinished())

	second, err := stats.Open(outputDir, "", metadata.NoopSink{})
	require.Nil(t, err)

	snapshot, rawErr := second.Raw()
	require.Nil(t, rawErr)
	assert.Empty(t, snapshot.URLWordCounts)
	assert.False(t, snapshot.Finished)
}

func TestOpen_ExplicitShelfPath(t *testing.T) {
	t.Setenv("TESTING", "false")
	path := filepath.Join(t.TempDir(), "deliverables-test.shelve")

	g, err := stats.Open("", path, metadata.NoopSink{})
	require.Nil(t, err)
	assert.Equal(t, path, g.ShelfPath())
}
