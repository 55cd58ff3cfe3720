package metadata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(2*time.Second, "LinkSaver-test", quietLogger())
}

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFullMetadata(t *testing.T) {
	srv := servePage(t, `<!DOCTYPE html>
<html><head>
<title> My Page </title>
<meta name="description" content="A page about things.">
<meta property="og:title" content="OG Title">
<link rel="icon" href="/icons/fav.png">
<link rel="apple-touch-icon" href="/icons/touch.png">
</head><body>hello</body></html>`)

	meta := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, "My Page", meta.Title)
	require.Equal(t, "A page about things.", meta.Description)
	require.Equal(t, srv.URL+"/icons/fav.png", meta.Favicon)
}

func TestFetchOpenGraphFallbacks(t *testing.T) {
	srv := servePage(t, `<html><head>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description.">
</head><body></body></html>`)

	meta := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, "OG Title", meta.Title)
	require.Equal(t, "OG description.", meta.Description)
}

func TestFetchDefaultFavicon(t *testing.T) {
	srv := servePage(t, `<html><head><title>Bare</title></head><body></body></html>`)

	meta := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, srv.URL+"/favicon.ico", meta.Favicon)
}

func TestFetchShortcutIconPreferredOverTouchIcon(t *testing.T) {
	srv := servePage(t, `<html><head>
<link rel="apple-touch-icon" href="/touch.png">
<link rel="shortcut icon" href="/shortcut.ico">
</head><body></body></html>`)

	meta := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, srv.URL+"/shortcut.ico", meta.Favicon)
}

func TestFetchTitleFallsBackToURL(t *testing.T) {
	srv := servePage(t, `<html><head></head><body>no title here</body></html>`)

	meta := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, srv.URL, meta.Title)
	require.Empty(t, meta.Description)
}

func TestFetchServerErrorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	meta := newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, Metadata{Title: srv.URL}, meta)
}

func TestFetchInvalidURLFallback(t *testing.T) {
	for _, rawURL := range []string{"not-a-url", "://bad", "relative/path"} {
		meta := newTestFetcher().Fetch(context.Background(), rawURL)
		require.Equal(t, Metadata{Title: rawURL}, meta, "url %q", rawURL)
	}
}

func TestFetchUnreachableHostFallback(t *testing.T) {
	rawURL := "http://127.0.0.1:1/never"
	meta := newTestFetcher().Fetch(context.Background(), rawURL)
	require.Equal(t, Metadata{Title: rawURL}, meta)
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<html><head><title>x</title></head></html>")
	}))
	t.Cleanup(srv.Close)

	newTestFetcher().Fetch(context.Background(), srv.URL)

	require.Equal(t, "LinkSaver-test", gotUA)
}
