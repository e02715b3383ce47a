package crawler_test

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/campus-crawler/internal/fetcher"
	"github.com/rohmanhakim/campus-crawler/internal/tokenize"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

// fetcherFake serves canned responses by URL. Unknown URLs come back as
// 404s, matching how the cache server answers out-of-corpus requests.
type fetcherFake struct {
	mu        sync.Mutex
	responses map[string]fetcher.Response
	errs      map[string]failure.ClassifiedError
	fetched   []string
}

func newFetcherFake() *fetcherFake {
	return &fetcherFake{
		responses: make(map[string]fetcher.Response),
		errs:      make(map[string]failure.ClassifiedError),
	}
}

// servePage registers a 200 HTML response whose final URL equals the
// requested URL.
func (f *fetcherFake) servePage(url, html string) {
	f.responses[url] = fetcher.Response{
		Status: 200,
		URL:    url,
		Body:   []byte(html),
	}
}

// serveRedirected registers a 200 response acquired from a different
// final URL.
func (f *fetcherFake) serveRedirected(url, finalURL, html string) {
	f.responses[url] = fetcher.Response{
		Status: 200,
		URL:    finalURL,
		Body:   []byte(html),
	}
}

func (f *fetcherFake) serveStatus(url string, status int) {
	f.responses[url] = fetcher.Response{
		Status: status,
		URL:    url,
	}
}

func (f *fetcherFake) serveError(url string, err failure.ClassifiedError) {
	f.errs[url] = err
}

func (f *fetcherFake) Download(_ context.Context, rawURL string) (fetcher.Response, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, rawURL)

	if err, ok := f.errs[rawURL]; ok {
		// fail only once, then serve normally; mirrors a transient fault
		delete(f.errs, rawURL)
		return fetcher.Response{}, err
	}
	if resp, ok := f.responses[rawURL]; ok {
		return resp, nil
	}
	return fetcher.Response{Status: 404, URL: rawURL}, nil
}

func (f *fetcherFake) fetchCount(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, fetched := range f.fetched {
		if fetched == rawURL {
			count++
		}
	}
	return count
}

// sleeperFake records sleeps without blocking, keeping worker tests fast.
type sleeperFake struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *sleeperFake) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sleeps = append(s.sleeps, d)
}

func crawlLexicon() tokenize.Lexicon {
	return tokenize.NewLexicon(
		[]string{"the", "of", "and"},
		[]string{"research", "crawler", "computing", "statistics", "faculty"},
	)
}
