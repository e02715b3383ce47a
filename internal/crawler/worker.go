package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/campus-crawler/internal/admit"
	"github.com/rohmanhakim/campus-crawler/internal/config"
	"github.com/rohmanhakim/campus-crawler/internal/fetcher"
	"github.com/rohmanhakim/campus-crawler/internal/frontier"
	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/internal/pages"
	"github.com/rohmanhakim/campus-crawler/internal/stats"
	"github.com/rohmanhakim/campus-crawler/internal/tokenize"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/limiter"
	"github.com/rohmanhakim/campus-crawler/pkg/timeutil"
	"github.com/rohmanhakim/campus-crawler/pkg/urlutil"
)

// a 200 with a body this small usually carries no information
const tinyBodyBytes = 100

// progress is logged every this many processed URLs
const progressInterval = 20

/*
Worker - one crawl loop.

Each worker independently pulls a URL from the shared frontier, fetches
it, processes the page, pushes the record to the shared aggregate, and
feeds discovered links back into the frontier. Page processing state is
per-worker; only the frontier and aggregate are shared.
*/
type Worker struct {
	id       int
	cfg      config.Config
	frontier *frontier.Frontier
	stats    *stats.GlobalStats
	fetcher  fetcher.Fetcher
	lexicon  tokenize.Lexicon
	gate     *limiter.AuthorityGate
	sink     metadata.MetadataSink
	sleeper  timeutil.Sleeper

	// read by the crawler after the pool joins
	processed int
	errs      int
}

func NewWorker(
	id int,
	cfg config.Config,
	front *frontier.Frontier,
	globalStats *stats.GlobalStats,
	fetch fetcher.Fetcher,
	lexicon tokenize.Lexicon,
	gate *limiter.AuthorityGate,
	sink metadata.MetadataSink,
	sleeper timeutil.Sleeper,
) *Worker {
	return &Worker{
		id:       id,
		cfg:      cfg,
		frontier: front,
		stats:    globalStats,
		fetcher:  fetch,
		lexicon:  lexicon,
		gate:     gate,
		sink:     sink,
		sleeper:  sleeper,
	}
}

// Run loops until the frontier is exhausted. A returned error means the
// worker died on a fatal failure; other workers keep running.
func (w *Worker) Run(ctx context.Context) error {
	delay := w.cfg.TimeDelay()

	for {
		tbdURL, ok := w.frontier.NextTBD()
		if !ok {
			if w.frontier.Empty() {
				w.event("Run", "frontier is empty, stopping crawler", nil)
				return nil
			}
			// no free links to download right now, idle politely
			w.event("Run", "respecting politeness delay, idling crawler", nil)
			w.sleeper.Sleep(delay)
			continue
		}

		w.event("Run", "fetching "+tbdURL, nil)
		start := time.Now()
		resp, fetchErr := w.fetcher.Download(ctx, tbdURL)
		if fetchErr != nil {
			if fetchErr.Severity() == failure.SeverityFatal {
				return fetchErr
			}
			// transient transport failure: back off and move on. The entry
			// stays undownloaded, so a resumed crawl re-queues it.
			w.errs++
			w.sleeper.Sleep(w.gate.BackoffDelay(delay))
			continue
		}
		w.sink.RecordFetch(tbdURL, resp.Status, time.Since(start), len(resp.Body), w.id)
		w.processed++

		links, scrapeErr := w.scrape(tbdURL, resp)
		if scrapeErr != nil {
			if scrapeErr.Severity() == failure.SeverityFatal {
				return scrapeErr
			}
			w.errs++
		}
		for _, link := range links {
			if addErr := w.frontier.Add(link); addErr != nil {
				if addErr.Severity() == failure.SeverityFatal {
					return addErr
				}
				w.errs++
			}
		}

		if completeErr := w.frontier.MarkComplete(tbdURL); completeErr != nil {
			if completeErr.Severity() == failure.SeverityFatal {
				return completeErr
			}
			w.errs++
		}

		if w.processed%progressInterval == 0 {
			w.event("Run", fmt.Sprintf("processed %d urls", w.processed), nil)
		}

		// redundant with the per-authority gate, but bounds the wake rate
		w.sleeper.Sleep(delay)
	}
}

// scrape validates a response and turns it into deliverable data plus
// outbound links. A response that yields nothing (non-200, missing body,
// out-of-scope redirect) is not an error; the URL is still marked
// complete by the caller.
func (w *Worker) scrape(requestedURL string, resp fetcher.Response) ([]string, failure.ClassifiedError) {
	// a unique page has a 200 status code...
	if resp.Status != 200 {
		w.sink.RecordError(time.Now(), "crawler", "Worker.scrape",
			metadata.CauseContentInvalid,
			fmt.Sprintf("response error status <%d> fetched for %s, acquired from %s", resp.Status, requestedURL, resp.URL),
			w.urlAttrs(requestedURL))
		return nil, nil
	}

	// ...and a non-empty response body
	if !resp.HasBody() {
		w.sink.RecordError(time.Now(), "crawler", "Worker.scrape",
			metadata.CauseContentInvalid,
			"response returned a 200 code, yet had no raw response",
			w.urlAttrs(requestedURL))
		return nil, nil
	}

	// redirected somewhere invalid (typically out of domain)
	if !admit.Valid(resp.URL) {
		return nil, nil
	}

	if requestedURL != resp.URL {
		w.event("scrape",
			fmt.Sprintf("fetched URL was not an exact match with response URL (%s and %s)", requestedURL, resp.URL), nil)
	}
	if !strings.Contains(resp.URL, requestedURL) {
		w.event("scrape",
			fmt.Sprintf("fetched URL was not a near match with response URL (%s and %s)", requestedURL, resp.URL), nil)
	}
	if len(resp.Body) < tinyBodyBytes {
		w.event("scrape",
			fmt.Sprintf("%s contents contain little information, despite returning 200", resp.URL), nil)
	}

	doc, parseErr := pages.Parse(resp.Body)
	if parseErr != nil {
		w.sink.RecordError(time.Now(), "crawler", "Worker.scrape",
			metadata.CauseContentInvalid, parseErr.Error(), w.urlAttrs(requestedURL))
		return nil, parseErr
	}

	record, processErr := pages.ProcessPage(resp.URL, doc, w.lexicon)
	if processErr != nil {
		w.sink.RecordError(time.Now(), "crawler", "Worker.scrape",
			metadata.CauseInvariantViolation, processErr.Error(), w.urlAttrs(requestedURL))
		return nil, processErr
	}
	if updateErr := w.stats.Update(record); updateErr != nil {
		return nil, updateErr
	}

	links := pages.ExtractNextLinks(requestedURL, doc)

	// the unique URL is the defragmented, normalized response URL
	uniqueURL := urlutil.Normalize(urlutil.Defragment(resp.URL))
	w.sink.RecordPage(uniqueURL, tokenize.TotalCount(record.Words), record.URLsSeenOnPage)

	return links, nil
}

func (w *Worker) urlAttrs(rawURL string) []metadata.Attribute {
	return []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, rawURL),
		metadata.NewAttr(metadata.AttrWorker, strconv.Itoa(w.id)),
	}
}

func (w *Worker) event(action, message string, attrs []metadata.Attribute) {
	if attrs == nil {
		attrs = []metadata.Attribute{metadata.NewAttr(metadata.AttrWorker, strconv.Itoa(w.id))}
	}
	w.sink.RecordEvent("crawler", action, message, attrs)
}
