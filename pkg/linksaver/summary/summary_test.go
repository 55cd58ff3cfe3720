package summary

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
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

func TestDescriptionProvider(t *testing.T) {
	p := NewDescriptionProvider()

	require.Equal(t, "Some description.",
		p.Generate(context.Background(), "https://example.com", "Some description."))
	require.Equal(t, NoDescriptionFallback,
		p.Generate(context.Background(), "https://example.com", ""))
}

// chatServer mimics the chat completions endpoint.
func chatServer(t *testing.T, reply string, wantKey string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer "+wantKey, r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(apiSrv *httptest.Server) *OpenAIProvider {
	return NewOpenAIProvider(OpenAIConfig{
		APIKey:          "test-key",
		BaseURL:         apiSrv.URL,
		Model:           "gpt-3.5-turbo",
		MaxContentBytes: 4000,
		Timeout:         2 * time.Second,
	}, quietLogger())
}

func TestOpenAIProviderGenerate(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><head><script>ignored()</script></head>
<body><p>Interesting   article text.</p><style>.x{}</style></body></html>`)
	}))
	t.Cleanup(page.Close)

	api := chatServer(t, " A concise summary. ", "test-key")
	p := newTestProvider(api)

	got := p.Generate(context.Background(), page.URL, "the description")
	require.Equal(t, "A concise summary.", got)
}

func TestOpenAIProviderFallsBackOnAPIError(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body>some text</body></html>`)
	}))
	t.Cleanup(page.Close)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(api.Close)

	p := newTestProvider(api)

	require.Equal(t, "the description",
		p.Generate(context.Background(), page.URL, "the description"))
	require.Equal(t, NoDescriptionFallback,
		p.Generate(context.Background(), page.URL, ""))
}

func TestOpenAIProviderFallsBackOnUnreachablePage(t *testing.T) {
	api := chatServer(t, "never used", "test-key")
	p := newTestProvider(api)

	got := p.Generate(context.Background(), "http://127.0.0.1:1/never", "desc")
	require.Equal(t, "desc", got)
}

func TestExtractContentSkipsScriptsAndCapsLength(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><script>var hidden = 1;</script>`+long+`</body></html>`)
	}))
	t.Cleanup(page.Close)

	api := chatServer(t, "x", "test-key")
	p := newTestProvider(api)

	content, err := p.extractContent(context.Background(), page.URL)
	require.NoError(t, err)
	require.NotContains(t, content, "hidden")
	require.LessOrEqual(t, len(content), 4000)
	require.Contains(t, content, "word")
}
