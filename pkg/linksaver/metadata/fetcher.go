// Package metadata fetches best-effort page metadata for saved links.
// The fetcher never returns an error to callers: any failure degrades
// to a fallback where the title is the URL itself.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Metadata holds the extracted page metadata for a link
type Metadata struct {
	Title       string
	Favicon     string
	Description string
}

// Fetcher fetches metadata for a URL. Implementations must not fail
// outward: on any error they return a fallback Metadata instead.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) Metadata
}

// HTTPFetcher fetches a page over HTTP and extracts title, favicon and
// description from its HTML head.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       *logrus.Logger
}

// NewHTTPFetcher creates a fetcher with the given request timeout and
// User-Agent header.
func NewHTTPFetcher(timeout time.Duration, userAgent string, log *logrus.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch returns the page metadata for rawURL. Failures are logged and
// swallowed; the fallback is {title: rawURL, favicon: "", description: ""}.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) Metadata {
	meta, err := f.fetch(ctx, rawURL)
	if err != nil {
		f.log.WithError(err).WithField("url", rawURL).Warn("Metadata fetch failed, using fallback")
		return Metadata{Title: rawURL}
	}
	return meta
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (Metadata, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return Metadata{}, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Metadata{}, fmt.Errorf("failed to fetch URL: %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Metadata{}, err
	}

	// Resolve relative favicon paths against the final URL after redirects.
	base := parsed
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	return extract(doc, base, rawURL), nil
}

// pageHead collects the raw values found while walking the document
type pageHead struct {
	title         string
	ogTitle       string
	description   string
	ogDescription string
	icons         map[string]string // rel -> href, first hit per rel wins
}

// iconRels in the order they are preferred
var iconRels = []string{"icon", "shortcut icon", "apple-touch-icon"}

func extract(doc *html.Node, base *url.URL, rawURL string) Metadata {
	head := pageHead{icons: make(map[string]string)}
	walk(doc, &head)

	title := head.title
	if title == "" {
		title = head.ogTitle
	}
	if title == "" {
		title = rawURL
	}

	description := head.description
	if description == "" {
		description = head.ogDescription
	}

	favicon := ""
	for _, rel := range iconRels {
		if href, ok := head.icons[rel]; ok {
			favicon = href
			break
		}
	}
	if favicon == "" {
		favicon = "/favicon.ico"
	}
	favicon = resolveURL(base, favicon)

	return Metadata{
		Title:       title,
		Favicon:     favicon,
		Description: description,
	}
}

func walk(n *html.Node, head *pageHead) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if head.title == "" {
				head.title = strings.TrimSpace(textContent(n))
			}
		case "meta":
			name := strings.ToLower(attr(n, "name"))
			property := strings.ToLower(attr(n, "property"))
			content := strings.TrimSpace(attr(n, "content"))
			if content != "" {
				switch {
				case name == "description" && head.description == "":
					head.description = content
				case property == "og:description" && head.ogDescription == "":
					head.ogDescription = content
				case property == "og:title" && head.ogTitle == "":
					head.ogTitle = content
				}
			}
		case "link":
			rel := strings.ToLower(strings.TrimSpace(attr(n, "rel")))
			href := strings.TrimSpace(attr(n, "href"))
			if href != "" {
				if _, seen := head.icons[rel]; !seen {
					head.icons[rel] = href
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, head)
	}
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		} else {
			sb.WriteString(textContent(c))
		}
	}
	return sb.String()
}

// resolveURL resolves ref against base, returning ref unchanged when it
// cannot be parsed.
func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
