package render

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"podsculpt/internal/config"
	"podsculpt/internal/insights"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/services"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/stage"
)

// ClipRenderer renders one clip to a video file.
type ClipRenderer interface {
	RenderClip(ctx context.Context, workDir, audioPath string, clipIndex int, clip insights.ClipDescriptor, words []assemblyai.Word) (string, error)
}

// Uploader stores a rendered clip and returns its bucket key.
type Uploader interface {
	UploadClip(submissionID int64, clipIndex int, videoPath string) (string, error)
}

// Stage renders every selected clip concurrently and uploads the results.
// Per-clip failures leave a nil slot; the run still completes.
type Stage struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer ClipRenderer
	uploader Uploader
}

// NewStage constructs the render stage.
func NewStage(cfg *config.Config, logger *slog.Logger, renderer ClipRenderer, uploader Uploader) *Stage {
	return &Stage{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "render"),
		renderer: renderer,
		uploader: uploader,
	}
}

func (s *Stage) Prepare(ctx context.Context, sub *queue.Submission) error {
	if strings.TrimSpace(sub.AudioFile) == "" {
		return services.Wrap(services.ErrValidation, "render", "prepare",
			"Audio file missing; rerun download", nil)
	}
	sub.SetProgress("Creating videos", "Rendering clips", 0)
	return nil
}

func (s *Stage) Execute(ctx context.Context, sub *queue.Submission) error {
	logger := logging.WithContext(ctx, s.logger)

	clips, err := insights.DecodeClips(sub.ClipsJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "decode clips",
			"Clip descriptors missing or invalid; rerun clip selection", err)
	}
	if len(clips) == 0 {
		logger.Info("no clips selected, nothing to render")
		if err := sub.SetClipURLs([]*string{}); err != nil {
			return services.Wrap(services.ErrValidation, "render", "persist results", "Cannot persist clip results", err)
		}
		sub.SetProgress("Creating videos", "No clips to render", 100)
		return nil
	}

	words, err := stage.ParseWords(sub.WordsJSON)
	if err != nil {
		return err
	}

	results := make([]*string, len(clips))
	group, groupCtx := errgroup.WithContext(ctx)
	workers := s.cfg.Render.Workers
	if workers <= 0 {
		workers = 1
	}
	group.SetLimit(workers)

	for i, clip := range clips {
		group.Go(func() error {
			clipLogger := logger.With(logging.Int(logging.FieldClipIndex, i+1))

			videoPath, err := s.renderer.RenderClip(groupCtx, sub.WorkDir, sub.AudioFile, i, clip, words)
			if err != nil {
				clipLogger.Warn("clip render failed", logging.Error(err))
				return nil
			}
			key, err := s.uploader.UploadClip(sub.ID, i, videoPath)
			if err != nil {
				clipLogger.Warn("clip upload failed", logging.Error(err))
				return nil
			}
			results[i] = &key
			clipLogger.Info("clip rendered and uploaded", logging.String("key", key))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	rendered := 0
	for _, result := range results {
		if result != nil {
			rendered++
		}
	}
	if err := sub.SetClipURLs(results); err != nil {
		return services.Wrap(services.ErrValidation, "render", "persist results", "Cannot persist clip results", err)
	}
	sub.SetProgress("Creating videos", "Clips rendered", 100)
	logger.Info("render stage finished",
		logging.Int("requested", len(clips)),
		logging.Int("rendered", rendered))
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "render"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if s.renderer == nil || s.uploader == nil {
		return stage.Unhealthy(name, "renderer or uploader unavailable")
	}
	binary := strings.TrimSpace(s.cfg.Render.FFmpegBinary)
	if binary == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, "ffmpeg binary not found")
	}
	if strings.TrimSpace(s.cfg.Render.BackgroundImage) == "" {
		return stage.Unhealthy(name, "background image not configured")
	}
	return stage.Healthy(name)
}
