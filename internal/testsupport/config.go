package testsupport

import (
	"path/filepath"
	"testing"

	"podsculpt/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Transcriber.APIKey = "test"
	cfg.LLM.APIKey = "test"
	cfg.Storage.SupabaseURL = "http://127.0.0.1:0"
	cfg.Storage.SupabaseKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithRenderWorkers overrides the render worker count on the test config.
func WithRenderWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Render.Workers = workers
	}
}

// WithHeartbeatTimeout overrides the heartbeat timeout on the test config.
func WithHeartbeatTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.HeartbeatTimeout = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
