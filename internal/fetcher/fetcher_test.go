package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/campus-crawler/internal/config"
	"github.com/rohmanhakim/campus-crawler/internal/fetcher"
	"github.com/rohmanhakim/campus-crawler/internal/metadata"
)

func buildConfig(t *testing.T, cacheServer string) config.Config {
	t.Helper()
	cfg, err := config.WithDefault([]string{"https://ics.uci.edu"}).
		WithCacheServer(cacheServer).
		Build()
	require.NoError(t, err)
	return cfg
}

func TestDownload_Direct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f := fetcher.NewCacheFetcher(buildConfig(t, ""), metadata.NoopSink{})

	resp, err := f.Download(context.Background(), server.URL+"/page")
	require.Nil(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, server.URL+"/page", resp.URL)
	assert.True(t, resp.HasBody())
	assert.Contains(t, string(resp.Body), "hello")
}

func TestDownload_ThroughCacheServer(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("X-Final-Url", "https://ics.uci.edu/final")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("cached"))
	}))
	defer server.Close()

	f := fetcher.NewCacheFetcher(buildConfig(t, server.URL), metadata.NoopSink{})

	resp, err := f.Download(context.Background(), "https://ics.uci.edu/page")
	require.Nil(t, err)

	// the requested URL rides in the q parameter
	assert.Equal(t, "https://ics.uci.edu/page", gotQuery)
	// the final URL comes from the cache server's echo header
	assert.Equal(t, "https://ics.uci.edu/final", resp.URL)
	assert.Equal(t, 200, resp.Status)
}

func TestDownload_CacheServerWithoutEchoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("cached"))
	}))
	defer server.Close()

	f := fetcher.NewCacheFetcher(buildConfig(t, server.URL), metadata.NoopSink{})

	resp, err := f.Download(context.Background(), "https://ics.uci.edu/page")
	require.Nil(t, err)
	assert.Equal(t, "https://ics.uci.edu/page", resp.URL)
}

func TestDownload_Non200IsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := fetcher.NewCacheFetcher(buildConfig(t, ""), metadata.NoopSink{})

	resp, err := f.Download(context.Background(), server.URL+"/missing")
	require.Nil(t, err)
	assert.Equal(t, 404, resp.Status)
}

func TestDownload_FollowsRedirectsToFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landed"))
	})

	f := fetcher.NewCacheFetcher(buildConfig(t, ""), metadata.NoopSink{})

	resp, err := f.Download(context.Background(), server.URL+"/start")
	require.Nil(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, server.URL+"/final", resp.URL)
}

func TestDownload_TransportFailureIsRecoverable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	f := fetcher.NewCacheFetcher(buildConfig(t, ""), metadata.NoopSink{})

	_, err := f.Download(context.Background(), server.URL+"/page")
	require.NotNil(t, err)

	var fetchErr *fetcher.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Retryable)
}
