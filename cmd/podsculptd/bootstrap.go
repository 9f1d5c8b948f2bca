package main

import (
	"fmt"
	"log/slog"

	"podsculpt/internal/config"
	"podsculpt/internal/episode"
	"podsculpt/internal/feed"
	"podsculpt/internal/fetch"
	"podsculpt/internal/insights"
	"podsculpt/internal/queue"
	"podsculpt/internal/render"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/services/ffmpeg"
	"podsculpt/internal/services/groq"
	"podsculpt/internal/storage"
	"podsculpt/internal/transcribe"
	"podsculpt/internal/workflow"
)

// buildWorkflow wires every pipeline stage and returns the manager plus the
// storage client shared between the render stage and the API's clip links.
func buildWorkflow(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*workflow.Manager, *storage.Client, error) {
	if cfg == nil || store == nil {
		return nil, nil, fmt.Errorf("workflow requires config and store")
	}

	clips, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("clip storage: %w", err)
	}

	transcriber := assemblyai.NewClient(assemblyai.Config{
		APIKey:              cfg.Transcriber.APIKey,
		BaseURL:             cfg.Transcriber.BaseURL,
		PollIntervalSeconds: cfg.Transcriber.PollIntervalSeconds,
		TimeoutSeconds:      cfg.Transcriber.TimeoutSeconds,
	})
	llm := groq.NewClient(groq.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	generator := insights.NewGenerator(llm)
	composer := ffmpeg.New(cfg.Render.FFmpegBinary)

	handlers := workflow.Handlers{
		Episode:    episode.NewStage(cfg, logger, feed.NewResolver(), fetch.NewDownloader(cfg.Download)),
		Transcribe: transcribe.NewStage(cfg, logger, transcriber),
		Notes:      insights.NewNotesStage(cfg, logger, generator),
		ClipSelect: insights.NewClipSelectStage(cfg, logger, generator),
		Render:     render.NewStage(cfg, logger, render.NewRenderer(cfg, logger, composer), clips),
	}
	return workflow.NewManager(cfg, store, logger, handlers), clips, nil
}
