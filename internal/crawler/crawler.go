package crawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohmanhakim/campus-crawler/internal/config"
	"github.com/rohmanhakim/campus-crawler/internal/fetcher"
	"github.com/rohmanhakim/campus-crawler/internal/frontier"
	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/internal/stats"
	"github.com/rohmanhakim/campus-crawler/internal/tokenize"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/limiter"
	"github.com/rohmanhakim/campus-crawler/pkg/timeutil"
)

/*
Crawler - constructs the shared state and runs the worker pool.

Lifecycle: build the frontier (seeded or restored), open the global
aggregate (new or resumed), spawn N workers sharing both, wait for all
workers to finish, mark the aggregate finished, and emit the report.

There is no cancellation: workers run to frontier exhaustion. Signal
handling belongs to the CLI.
*/

type Crawler struct {
	cfg       config.Config
	frontier  *frontier.Frontier
	stats     *stats.GlobalStats
	fetcher   fetcher.Fetcher
	lexicon   tokenize.Lexicon
	gate      *limiter.AuthorityGate
	sink      metadata.MetadataSink
	finalizer metadata.CrawlFinalizer
	sleeper   timeutil.Sleeper
}

// New wires the production crawler. With restart true any prior frontier
// save is discarded; the aggregate always resumes an unfinished shelf if
// one exists.
func New(cfg config.Config, restart bool) (*Crawler, failure.ClassifiedError) {
	recorder := metadata.NewRecorder("crawler")

	lexicon, err := tokenize.LoadLexicon(cfg.StopwordsFile(), cfg.DictionaryFile())
	if err != nil {
		return nil, err
	}

	gate := limiter.NewAuthorityGate(cfg.TimeDelay(), cfg.RandomSeed())

	front, err := frontier.New(cfg, restart, gate, &recorder)
	if err != nil {
		return nil, err
	}

	globalStats, err := stats.Open(cfg.OutputDir(), "", &recorder)
	if err != nil {
		return nil, err
	}

	cacheFetcher := fetcher.NewCacheFetcher(cfg, &recorder)

	return &Crawler{
		cfg:       cfg,
		frontier:  front,
		stats:     globalStats,
		fetcher:   &cacheFetcher,
		lexicon:   lexicon,
		gate:      gate,
		sink:      &recorder,
		finalizer: &recorder,
		sleeper:   timeutil.NewRealSleeper(),
	}, nil
}

// NewWithDeps builds a Crawler from injected collaborators. Intended for
// tests that swap in fakes for the fetcher, sink, or sleeper.
func NewWithDeps(
	cfg config.Config,
	front *frontier.Frontier,
	globalStats *stats.GlobalStats,
	fetch fetcher.Fetcher,
	lexicon tokenize.Lexicon,
	gate *limiter.AuthorityGate,
	sink metadata.MetadataSink,
	finalizer metadata.CrawlFinalizer,
	sleeper timeutil.Sleeper,
) *Crawler {
	return &Crawler{
		cfg:       cfg,
		frontier:  front,
		stats:     globalStats,
		fetcher:   fetch,
		lexicon:   lexicon,
		gate:      gate,
		sink:      sink,
		finalizer: finalizer,
		sleeper:   sleeper,
	}
}

// Start runs the crawl to completion: spawn workers, join, finish.
// The aggregate is marked finished only on normal termination; a crawl
// that dies keeps its shelf resumable.
func (c *Crawler) Start(ctx context.Context) error {
	crawlStart := time.Now()

	c.sink.RecordEvent("crawler", "Start",
		fmt.Sprintf("creating %d workers", c.cfg.ThreadsCount()), nil)

	workers := make([]*Worker, c.cfg.ThreadsCount())
	var pool errgroup.Group
	for i := range workers {
		workers[i] = NewWorker(
			i, c.cfg, c.frontier, c.stats, c.fetcher,
			c.lexicon, c.gate, c.sink, c.sleeper,
		)
		worker := workers[i]
		pool.Go(func() error {
			return worker.Run(ctx)
		})
	}

	poolErr := pool.Wait()

	totalErrors := 0
	for _, worker := range workers {
		totalErrors += worker.errs
	}
	totalPages := c.downloadedPages()
	c.finalizer.RecordFinalCrawlStats(totalPages, totalErrors, time.Since(crawlStart))

	if poolErr != nil {
		return poolErr
	}

	return c.finish()
}

// finish marks the aggregate complete and emits the report.
func (c *Crawler) finish() error {
	c.sink.RecordEvent("crawler", "finish", "finished crawl, outputting deliverables", nil)
	if err := c.stats.MarkFinished(); err != nil {
		return err
	}
	if _, err := c.stats.Output(); err != nil {
		return err
	}
	c.sink.RecordEvent("crawler", "finish", "finished program", nil)
	return nil
}

func (c *Crawler) downloadedPages() int {
	snapshot, err := c.stats.Raw()
	if err != nil {
		return 0
	}
	return len(snapshot.URLWordCounts)
}

// Stats exposes the global aggregate, mainly for tests to inspect outcomes.
func (c *Crawler) Stats() *stats.GlobalStats {
	return c.stats
}

// Frontier exposes the shared frontier for tests.
func (c *Crawler) Frontier() *frontier.Frontier {
	return c.frontier
}
