// Package feed resolves a podcast RSS feed to its latest episode.
package feed

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"

	"podsculpt/internal/services"
)

// Episode identifies the newest item in a feed and where its audio lives.
type Episode struct {
	Title    string
	AudioURL string
}

// Resolver parses podcast feeds.
type Resolver struct {
	parser *gofeed.Parser
}

// NewResolver constructs a feed resolver.
func NewResolver() *Resolver {
	return &Resolver{parser: gofeed.NewParser()}
}

// Latest fetches the feed and returns its most recent episode. The first item
// in the feed is treated as the latest, matching podcast publishing order.
func (r *Resolver) Latest(ctx context.Context, feedURL string) (*Episode, error) {
	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "episode", "parse feed",
			"Cannot fetch or parse RSS feed", err)
	}
	if parsed == nil || len(parsed.Items) == 0 {
		return nil, services.Wrap(services.ErrValidation, "episode", "parse feed",
			"Feed contains no episodes", nil)
	}

	item := parsed.Items[0]
	audioURL := enclosureAudioURL(item)
	if audioURL == "" {
		return nil, services.Wrap(services.ErrValidation, "episode", "locate audio",
			"Latest episode has no audio enclosure", nil)
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled episode"
	}
	return &Episode{Title: title, AudioURL: audioURL}, nil
}

// enclosureAudioURL prefers audio enclosures but falls back to the first
// enclosure with a URL, since many feeds omit the type attribute.
func enclosureAudioURL(item *gofeed.Item) string {
	var fallback string
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		url := strings.TrimSpace(enclosure.URL)
		if url == "" {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "audio/") {
			return url
		}
		if fallback == "" {
			fallback = url
		}
	}
	return fallback
}
