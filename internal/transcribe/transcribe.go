// Package transcribe runs the speech-to-text stage of the pipeline.
// Transcription failures are fatal for the run.
package transcribe

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"podsculpt/internal/config"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/services"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/stage"
)

// Transcriber is the slice of the AssemblyAI client the stage needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*assemblyai.Transcript, error)
	HealthCheck(ctx context.Context) error
}

// Stage converts downloaded episode audio into a transcript with a
// word-level timeline.
type Stage struct {
	cfg    *config.Config
	logger *slog.Logger
	client Transcriber
}

// NewStage constructs the transcription stage.
func NewStage(cfg *config.Config, logger *slog.Logger, client Transcriber) *Stage {
	return &Stage{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "transcribe"),
		client: client,
	}
}

func (s *Stage) Prepare(ctx context.Context, sub *queue.Submission) error {
	if strings.TrimSpace(sub.AudioFile) == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "prepare",
			"Audio file missing; rerun download", nil)
	}
	if _, err := os.Stat(sub.AudioFile); err != nil {
		return services.Wrap(services.ErrValidation, "transcribe", "prepare",
			"Audio file not found on disk; rerun download", err)
	}
	sub.SetProgress("Transcribing", "Uploading audio for transcription", 0)
	return nil
}

func (s *Stage) Execute(ctx context.Context, sub *queue.Submission) error {
	logger := logging.WithContext(ctx, s.logger)

	transcript, err := s.client.Transcribe(ctx, sub.AudioFile)
	if err != nil {
		return services.Wrap(services.ErrProvider, "transcribe", "transcribe audio",
			"Transcription failed", err)
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return services.Wrap(services.ErrProvider, "transcribe", "transcribe audio",
			"Transcription produced no text", nil)
	}

	encoded, err := assemblyai.EncodeWords(transcript.Words)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcribe", "encode words",
			"Cannot persist word timeline", err)
	}
	sub.Transcript = transcript.Text
	sub.WordsJSON = encoded
	sub.SetProgress("Transcribing", "Transcript ready", 100)
	logger.Info("transcription complete",
		logging.Int("words", len(transcript.Words)),
		logging.Int("characters", len(transcript.Text)))
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribe"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if s.client == nil {
		return stage.Unhealthy(name, "transcription client unavailable")
	}
	if err := s.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
