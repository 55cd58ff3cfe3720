package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const systemPrompt = "You are a helpful assistant that creates concise summaries of web content. " +
	"Focus on the main points and key information."

// OpenAIConfig configures the OpenAI-backed summary provider.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxContentBytes int
	Timeout         time.Duration
}

// OpenAIProvider summarizes a page by extracting its visible text and
// asking the chat completions API for a synopsis. Any failure along the
// way is logged and the description fallback is returned instead.
type OpenAIProvider struct {
	client *http.Client
	cfg    OpenAIConfig
	log    *logrus.Logger
}

// NewOpenAIProvider creates an OpenAI summary provider.
func NewOpenAIProvider(cfg OpenAIConfig, log *logrus.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log,
	}
}

// Generate returns a summary for rawURL, falling back to the
// description when extraction or the API call fails.
func (p *OpenAIProvider) Generate(ctx context.Context, rawURL, description string) string {
	text, err := p.generate(ctx, rawURL)
	if err != nil {
		p.log.WithError(err).WithField("url", rawURL).Warn("Summary generation failed, using fallback")
		return fallback(description)
	}
	return text
}

func (p *OpenAIProvider) generate(ctx context.Context, rawURL string) (string, error) {
	content, err := p.extractContent(ctx, rawURL)
	if err != nil {
		return "", err
	}

	return p.complete(ctx, content)
}

// extractContent fetches the page and returns its visible body text,
// capped at MaxContentBytes.
func (p *OpenAIProvider) extractContent(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("failed to extract content: %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", err
	}

	var words []string
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			words = append(words, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	if body := findBody(doc); body != nil {
		collect(body)
	} else {
		collect(doc)
	}

	text := strings.Join(words, " ")
	if len(text) > p.cfg.MaxContentBytes {
		text = text[:p.cfg.MaxContentBytes]
	}
	if text == "" {
		return "", fmt.Errorf("no text content at %s", rawURL)
	}

	return text, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends the extracted content to the chat completions endpoint.
func (p *OpenAIProvider) complete(ctx context.Context, content string) (string, error) {
	payload := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Please provide a concise summary of the following content:\n\n" + content},
		},
		MaxTokens: 150,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion request failed: %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
