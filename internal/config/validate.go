package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures deep inside a pipeline run.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		problems = append(problems, "paths.staging_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}

	if c.Transcriber.PollIntervalSeconds <= 0 {
		problems = append(problems, "transcriber.poll_interval_seconds must be positive")
	}
	if c.Transcriber.TimeoutSeconds <= 0 {
		problems = append(problems, "transcriber.timeout_seconds must be positive")
	}

	if strings.TrimSpace(c.LLM.Model) == "" {
		problems = append(problems, "llm.model must not be empty")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		problems = append(problems, "llm.timeout_seconds must be positive")
	}

	if c.Storage.SignedURLTTLSeconds <= 0 {
		problems = append(problems, "storage.signed_url_ttl_seconds must be positive")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		problems = append(problems, "storage.bucket must not be empty")
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		problems = append(problems, "render.width and render.height must be positive")
	}
	if c.Render.Workers <= 0 {
		problems = append(problems, "render.workers must be positive")
	}
	if c.Render.MaxClipSeconds <= 0 {
		problems = append(problems, "render.max_clip_seconds must be positive")
	}
	if c.Render.WordsPerCue <= 0 {
		problems = append(problems, "render.words_per_cue must be positive")
	}

	if c.Download.MaxRedirects < 0 {
		problems = append(problems, "download.max_redirects must not be negative")
	}
	if c.Download.TimeoutSeconds <= 0 {
		problems = append(problems, "download.timeout_seconds must be positive")
	}

	if c.Workflow.QueuePollInterval <= 0 {
		problems = append(problems, "workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 || c.Workflow.HeartbeatTimeout <= 0 {
		problems = append(problems, "workflow heartbeat settings must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		problems = append(problems, "workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	if c.Workflow.RunTimeoutSeconds <= 0 {
		problems = append(problems, "workflow.run_timeout_seconds must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
