package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"podsculpt/internal/services"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Podcast</title>
    <item>
      <title>Episode 12: Fresh</title>
      <enclosure url="https://cdn.test/ep12.mp3" type="audio/mpeg" length="1000"/>
    </item>
    <item>
      <title>Episode 11: Stale</title>
      <enclosure url="https://cdn.test/ep11.mp3" type="audio/mpeg" length="1000"/>
    </item>
  </channel>
</rss>`

const noEnclosureFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Podcast</title>
    <item><title>Episode without audio</title></item>
  </channel>
</rss>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLatestPicksFirstItem(t *testing.T) {
	server := serveFeed(t, sampleFeed)

	episode, err := NewResolver().Latest(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if episode.Title != "Episode 12: Fresh" {
		t.Fatalf("unexpected title: %q", episode.Title)
	}
	if episode.AudioURL != "https://cdn.test/ep12.mp3" {
		t.Fatalf("unexpected audio url: %q", episode.AudioURL)
	}
}

func TestLatestRejectsEmptyFeed(t *testing.T) {
	server := serveFeed(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)

	_, err := NewResolver().Latest(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for empty feed")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation classification, got %v", err)
	}
}

func TestLatestRejectsMissingEnclosure(t *testing.T) {
	server := serveFeed(t, noEnclosureFeed)

	_, err := NewResolver().Latest(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for missing enclosure")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation classification, got %v", err)
	}
}

func TestLatestTransportFailure(t *testing.T) {
	server := serveFeed(t, sampleFeed)
	server.Close()

	_, err := NewResolver().Latest(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport classification, got %v", err)
	}
}
