// Package episode resolves a submission's feed to its latest episode and
// downloads the audio into a per-run working directory.
package episode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"podsculpt/internal/config"
	"podsculpt/internal/feed"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/services"
	"podsculpt/internal/stage"
)

// Resolver locates the latest episode in a feed.
type Resolver interface {
	Latest(ctx context.Context, feedURL string) (*feed.Episode, error)
}

// Downloader retrieves remote audio to a local path.
type Downloader interface {
	Download(ctx context.Context, rawURL, destPath string) error
}

// Stage fetches the latest episode's audio. Failures are fatal for the run.
type Stage struct {
	cfg        *config.Config
	logger     *slog.Logger
	resolver   Resolver
	downloader Downloader
}

// NewStage constructs the episode stage.
func NewStage(cfg *config.Config, logger *slog.Logger, resolver Resolver, downloader Downloader) *Stage {
	return &Stage{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "episode"),
		resolver:   resolver,
		downloader: downloader,
	}
}

func (s *Stage) Prepare(ctx context.Context, sub *queue.Submission) error {
	if strings.TrimSpace(sub.RSSURL) == "" {
		return services.Wrap(services.ErrValidation, "episode", "prepare",
			"Submission has no feed URL", nil)
	}
	if strings.TrimSpace(sub.WorkDir) == "" {
		workDir := filepath.Join(s.cfg.Paths.StagingDir, uuid.NewString())
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, "episode", "prepare",
				"Cannot create working directory", err)
		}
		sub.WorkDir = workDir
	}
	sub.SetProgress("Downloading", "Resolving latest episode", 0)
	return nil
}

func (s *Stage) Execute(ctx context.Context, sub *queue.Submission) error {
	logger := logging.WithContext(ctx, s.logger)

	latest, err := s.resolver.Latest(ctx, sub.RSSURL)
	if err != nil {
		return err
	}
	sub.EpisodeTitle = latest.Title
	sub.AudioURL = latest.AudioURL
	sub.SetProgress("Downloading", fmt.Sprintf("Downloading %q", latest.Title), 25)
	logger.Info("resolved latest episode",
		logging.String("title", latest.Title),
		logging.String("audio_url", latest.AudioURL))

	audioPath := filepath.Join(sub.WorkDir, "episode"+audioExtension(latest.AudioURL))
	if err := s.downloader.Download(ctx, latest.AudioURL, audioPath); err != nil {
		return err
	}
	sub.AudioFile = audioPath
	sub.SetProgress("Downloading", "Audio downloaded", 100)
	logger.Info("audio downloaded", logging.String("path", audioPath))
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "episode"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if s.resolver == nil || s.downloader == nil {
		return stage.Unhealthy(name, "feed resolver or downloader unavailable")
	}
	return stage.Healthy(name)
}

// audioExtension keeps the enclosure's extension when it looks like one, so
// downstream tools can sniff the container from the name.
func audioExtension(audioURL string) string {
	trimmed := audioURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	ext := strings.ToLower(filepath.Ext(trimmed))
	switch ext {
	case ".mp3", ".m4a", ".aac", ".ogg", ".wav", ".flac":
		return ext
	}
	return ".mp3"
}
