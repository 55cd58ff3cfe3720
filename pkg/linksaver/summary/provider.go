// Package summary generates short text synopses for saved links. Like
// the metadata fetcher, providers are best-effort and never fail
// outward: on any error they fall back to the page description.
package summary

import "context"

// NoDescriptionFallback is returned when neither a summary nor a
// description is available.
const NoDescriptionFallback = "No description available"

// Provider generates a summary for a URL. The description is the
// metadata description already fetched for the page and doubles as the
// fallback value when generation fails.
type Provider interface {
	Generate(ctx context.Context, rawURL, description string) string
}

// DescriptionProvider is the provider used when no inference API is
// configured: it simply returns the description.
type DescriptionProvider struct{}

// NewDescriptionProvider creates a description-passthrough provider.
func NewDescriptionProvider() *DescriptionProvider {
	return &DescriptionProvider{}
}

// Generate returns the description, or a placeholder when it is empty.
func (p *DescriptionProvider) Generate(ctx context.Context, rawURL, description string) string {
	return fallback(description)
}

func fallback(description string) string {
	if description == "" {
		return NoDescriptionFallback
	}
	return description
}
