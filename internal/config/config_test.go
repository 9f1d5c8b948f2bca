package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podsculpt/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Render.Workers != 3 {
		t.Fatalf("expected default render workers 3, got %d", cfg.Render.Workers)
	}
	if cfg.Download.MaxRedirects != 5 {
		t.Fatalf("expected default max redirects 5, got %d", cfg.Download.MaxRedirects)
	}
	if cfg.Workflow.RunTimeoutSeconds != 300 {
		t.Fatalf("expected default run timeout 300, got %d", cfg.Workflow.RunTimeoutSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"",
		"[render]",
		"workers = 2",
		"max_clip_seconds = 45",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Render.Workers != 2 {
		t.Fatalf("expected workers 2, got %d", cfg.Render.Workers)
	}
	if cfg.Render.MaxClipSeconds != 45 {
		t.Fatalf("expected max clip seconds 45, got %d", cfg.Render.MaxClipSeconds)
	}
	// untouched sections keep defaults
	if cfg.LLM.Model == "" {
		t.Fatal("expected default llm model to survive partial config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[render]\nworkers = 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for zero workers")
	}
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-test")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "gsk-test" {
		t.Fatalf("expected env llm key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Transcriber.APIKey != "aai-test" {
		t.Fatalf("expected env transcriber key, got %q", cfg.Transcriber.APIKey)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, p := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory at %s, err=%v", p, err)
		}
	}
}
