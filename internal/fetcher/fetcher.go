package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/campus-crawler/internal/config"
	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

/*
Responsibilities

- Perform HTTP requests, normally through the cache/proxy server
- Apply headers and timeouts
- Report the final URL after redirects
- Never parse content; only bytes and metadata come back

A non-200 response is NOT an error here: the Response carries the status
and the worker decides what to do. A FetchError means the transport
itself failed and no status ever arrived.
*/

type Fetcher interface {
	Download(ctx context.Context, rawURL string) (Response, failure.ClassifiedError)
}

// finalURLHeader is set by the cache server to the URL it actually
// resolved after following redirects on our behalf.
const finalURLHeader = "X-Final-Url"

type CacheFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	cacheServer  string
	userAgent    string
}

func NewCacheFetcher(cfg config.Config, metadataSink metadata.MetadataSink) CacheFetcher {
	return CacheFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{Timeout: cfg.Timeout()},
		cacheServer:  cfg.CacheServer(),
		userAgent:    cfg.UserAgent(),
	}
}

// Init swaps the HTTP client; used by tests to inject transports.
func (f *CacheFetcher) Init(httpClient *http.Client) {
	f.httpClient = httpClient
}

// Download fetches a page. With a cache server configured the request is
// routed through it as GET {cacheServer}/?q={url}; otherwise the origin
// is fetched directly.
func (f *CacheFetcher) Download(ctx context.Context, rawURL string) (Response, failure.ClassifiedError) {
	target := rawURL
	if f.cacheServer != "" {
		target = f.cacheServer + "/?q=" + url.QueryEscape(rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, f.recordError(&FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseBadRequest,
		}, rawURL)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		cause := ErrCauseNetworkFailure
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			cause = ErrCauseTimeout
		}
		return Response{}, f.recordError(&FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     cause,
		}, rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, f.recordError(&FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseReadBodyError,
		}, rawURL)
	}

	return Response{
		Status: resp.StatusCode,
		URL:    f.finalURL(rawURL, resp),
		Body:   body,
	}, nil
}

// finalURL resolves the URL the content actually came from. Through the
// cache server that is the echo header; on a direct fetch it is the
// request URL after the client followed redirects.
func (f *CacheFetcher) finalURL(rawURL string, resp *http.Response) string {
	if f.cacheServer != "" {
		if final := resp.Header.Get(finalURLHeader); final != "" {
			return final
		}
		return rawURL
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return rawURL
}

func (f *CacheFetcher) recordError(fetchErr *FetchError, rawURL string) failure.ClassifiedError {
	f.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		"CacheFetcher.Download",
		mapFetchErrorToMetadataCause(fetchErr),
		fetchErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, rawURL),
		},
	)
	return fetchErr
}
