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

// PlaceholderShowNotes is stored when show notes generation fails. The
// pipeline continues regardless.
const PlaceholderShowNotes = "Show notes could not be generated for this episode."

// NotesStage produces show notes from the transcript. Failures are
// non-fatal.
type NotesStage struct {
	cfg       *config.Config
	logger    *slog.Logger
	generator *Generator
}

// NewNotesStage constructs the show notes stage.
func NewNotesStage(cfg *config.Config, logger *slog.Logger, generator *Generator) *NotesStage {
	return &NotesStage{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "notes"),
		generator: generator,
	}
}

func (n *NotesStage) Prepare(ctx context.Context, sub *queue.Submission) error {
	if strings.TrimSpace(sub.Transcript) == "" {
		return services.Wrap(services.ErrValidation, "notes", "prepare",
			"Transcript missing; rerun transcription", nil)
	}
	sub.SetProgress("Generating notes", "Asking the model for show notes", 0)
	return nil
}

func (n *NotesStage) Execute(ctx context.Context, sub *queue.Submission) error {
	logger := logging.WithContext(ctx, n.logger)

	notes, err := n.generator.GenerateShowNotes(ctx, sub.Transcript, sub.EpisodeTitle)
	if err != nil {
		logger.Warn("show notes generation failed, storing placeholder", logging.Error(err))
		sub.ShowNotes = PlaceholderShowNotes
		sub.SetProgress("Generating notes", "Show notes unavailable", 100)
		return nil
	}
	if notes == "" {
		logger.Warn("show notes response was empty, storing placeholder")
		notes = PlaceholderShowNotes
	}
	sub.ShowNotes = notes
	sub.SetProgress("Generating notes", "Show notes ready", 100)
	logger.Info("show notes generated", logging.Int("length", len(notes)))
	return nil
}

func (n *NotesStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "notes"
	if n.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(n.cfg.LLM.APIKey) == "" {
		return stage.Unhealthy(name, "llm api key not configured")
	}
	if n.generator == nil {
		return stage.Unhealthy(name, "generator unavailable")
	}
	return stage.Healthy(name)
}
