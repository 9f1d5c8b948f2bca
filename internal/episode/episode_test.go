package episode

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"podsculpt/internal/feed"
	"podsculpt/internal/queue"
	"podsculpt/internal/testsupport"
)

type fakeResolver struct {
	episode *feed.Episode
	err     error
}

func (f *fakeResolver) Latest(ctx context.Context, feedURL string) (*feed.Episode, error) {
	return f.episode, f.err
}

type fakeDownloader struct {
	err   error
	dests []string
}

func (f *fakeDownloader) Download(ctx context.Context, rawURL, destPath string) error {
	f.dests = append(f.dests, destPath)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

func TestPrepareCreatesWorkDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewStage(cfg, nil, &fakeResolver{}, &fakeDownloader{})

	sub := &queue.Submission{RSSURL: "https://example.com/feed.xml"}
	if err := handler.Prepare(context.Background(), sub); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if sub.WorkDir == "" {
		t.Fatal("expected work dir to be assigned")
	}
	if !strings.HasPrefix(sub.WorkDir, cfg.Paths.StagingDir) {
		t.Fatalf("work dir %q not under staging dir %q", sub.WorkDir, cfg.Paths.StagingDir)
	}
	if info, err := os.Stat(sub.WorkDir); err != nil || !info.IsDir() {
		t.Fatalf("expected work dir on disk: %v", err)
	}
}

func TestPrepareRequiresFeedURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewStage(cfg, nil, &fakeResolver{}, &fakeDownloader{})

	if err := handler.Prepare(context.Background(), &queue.Submission{}); err == nil {
		t.Fatal("expected error without feed url")
	}
}

func TestExecuteDownloadsLatestEpisode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := &fakeResolver{episode: &feed.Episode{
		Title:    "Episode 9",
		AudioURL: "https://cdn.test/ep9.m4a?token=abc",
	}}
	downloader := &fakeDownloader{}
	handler := NewStage(cfg, nil, resolver, downloader)

	sub := &queue.Submission{RSSURL: "https://example.com/feed.xml", WorkDir: t.TempDir()}
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sub.EpisodeTitle != "Episode 9" {
		t.Fatalf("unexpected title: %q", sub.EpisodeTitle)
	}
	if sub.AudioURL != "https://cdn.test/ep9.m4a?token=abc" {
		t.Fatalf("unexpected audio url: %q", sub.AudioURL)
	}
	if !strings.HasSuffix(sub.AudioFile, "episode.m4a") {
		t.Fatalf("unexpected audio file: %q", sub.AudioFile)
	}
	if len(downloader.dests) != 1 || downloader.dests[0] != sub.AudioFile {
		t.Fatalf("unexpected download targets: %v", downloader.dests)
	}
}

func TestExecuteFailsOnResolverError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewStage(cfg, nil, &fakeResolver{err: errors.New("feed offline")}, &fakeDownloader{})

	sub := &queue.Submission{RSSURL: "https://example.com/feed.xml", WorkDir: t.TempDir()}
	if err := handler.Execute(context.Background(), sub); err == nil {
		t.Fatal("expected resolver error to be fatal")
	}
}

func TestExecuteFailsOnDownloadError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := &fakeResolver{episode: &feed.Episode{Title: "Ep", AudioURL: "https://cdn.test/ep.mp3"}}
	handler := NewStage(cfg, nil, resolver, &fakeDownloader{err: errors.New("connection reset")})

	sub := &queue.Submission{RSSURL: "https://example.com/feed.xml", WorkDir: t.TempDir()}
	if err := handler.Execute(context.Background(), sub); err == nil {
		t.Fatal("expected download error to be fatal")
	}
}

func TestAudioExtension(t *testing.T) {
	cases := map[string]string{
		"https://cdn.test/ep.mp3":           ".mp3",
		"https://cdn.test/ep.M4A?sig=x":     ".m4a",
		"https://cdn.test/ep.ogg#fragment":  ".ogg",
		"https://cdn.test/stream":           ".mp3",
		"https://cdn.test/ep.php?file=a.42": ".mp3",
	}
	for url, want := range cases {
		if got := audioExtension(url); got != want {
			t.Fatalf("audioExtension(%q) = %q, want %q", url, got, want)
		}
	}
}
