package insights

import (
	"context"
	"log/slog"
	"strings"

	"podsculpt/internal/config"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/services"
	"podsculpt/internal/stage"
)

// ClipSelectStage asks the model for viral clip windows. Failures are
// non-fatal; the run proceeds with no clips.
type ClipSelectStage struct {
	cfg       *config.Config
	logger    *slog.Logger
	generator *Generator
}

// NewClipSelectStage constructs the clip selection stage.
func NewClipSelectStage(cfg *config.Config, logger *slog.Logger, generator *Generator) *ClipSelectStage {
	return &ClipSelectStage{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "clipselect"),
		generator: generator,
	}
}

func (c *ClipSelectStage) Prepare(ctx context.Context, sub *queue.Submission) error {
	if strings.TrimSpace(sub.Transcript) == "" {
		return services.Wrap(services.ErrValidation, "clips", "prepare",
			"Transcript missing; rerun transcription", nil)
	}
	sub.SetProgress("Selecting clips", "Asking the model for highlight moments", 0)
	return nil
}

func (c *ClipSelectStage) Execute(ctx context.Context, sub *queue.Submission) error {
	logger := logging.WithContext(ctx, c.logger)

	clips, err := c.generator.SelectClips(ctx, sub.Transcript, sub.EpisodeTitle)
	if err != nil {
		logger.Warn("clip selection failed, continuing with no clips", logging.Error(err))
		clips = nil
	}

	valid := ValidateClips(clips, c.cfg.Render.MaxClipSeconds)
	if dropped := len(clips) - len(valid); dropped > 0 {
		logger.Warn("dropped invalid clip descriptors", logging.Int("dropped", dropped))
	}

	encoded, err := EncodeClips(valid)
	if err != nil {
		return services.Wrap(services.ErrValidation, "clips", "encode",
			"Cannot persist clip descriptors", err)
	}
	sub.ClipsJSON = encoded
	sub.SetProgress("Selecting clips", "Clip selection finished", 100)
	logger.Info("clips selected", logging.Int("count", len(valid)))
	return nil
}

func (c *ClipSelectStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "clipselect"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(c.cfg.LLM.APIKey) == "" {
		return stage.Unhealthy(name, "llm api key not configured")
	}
	if c.generator == nil {
		return stage.Unhealthy(name, "generator unavailable")
	}
	return stage.Healthy(name)
}
