package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Transcriber contains configuration for the AssemblyAI speech-to-text service.
type Transcriber struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// LLM contains connection settings for the Groq chat completion API used for
// show notes and clip selection.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Storage contains configuration for the Supabase bucket that holds rendered
// clip videos.
type Storage struct {
	SupabaseURL         string `toml:"supabase_url"`
	SupabaseKey         string `toml:"supabase_key"`
	Bucket              string `toml:"bucket"`
	SignedURLTTLSeconds int    `toml:"signed_url_ttl_seconds"`
}

// Render contains configuration for clip video composition.
type Render struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	BackgroundImage string `toml:"background_image"`
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	Workers         int    `toml:"workers"`
	MaxClipSeconds  int    `toml:"max_clip_seconds"`
	WordsPerCue     int    `toml:"words_per_cue"`
	Attribution     string `toml:"attribution"`
}

// Download contains configuration for episode audio retrieval.
type Download struct {
	MaxRedirects   int `toml:"max_redirects"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	RunTimeoutSeconds  int `toml:"run_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for podsculpt.
//
// Configuration sections by subsystem:
//   - Paths: staging/log directories and API bind address
//   - Transcriber: AssemblyAI transcription settings
//   - LLM: Groq connection settings for show notes and clip selection
//   - Storage: Supabase bucket for rendered clips
//   - Render: ffmpeg composition settings
//   - Download: audio retrieval limits
//   - Workflow: daemon polling intervals and run budget
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Transcriber Transcriber `toml:"transcriber"`
	LLM         LLM         `toml:"llm"`
	Storage     Storage     `toml:"storage"`
	Render      Render      `toml:"render"`
	Download    Download    `toml:"download"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/podsculpt/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all defaults applied and relative paths expanded. A missing file
// is not an error; defaults plus environment fallbacks are used instead.
func Load(path string) (*Config, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	applyEnvOverrides(&cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the staging and log directories if needed.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return expandPath(path)
	}
	return DefaultConfigPath()
}

// applyEnvOverrides honours the conventional environment variable names for
// secrets so they never need to live in the config file.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY")); v != "" {
		cfg.Transcriber.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPABASE_URL")); v != "" {
		cfg.Storage.SupabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")); v != "" {
		cfg.Storage.SupabaseKey = v
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if c.Render.BackgroundImage != "" {
		if c.Render.BackgroundImage, err = expandPath(c.Render.BackgroundImage); err != nil {
			return fmt.Errorf("background_image: %w", err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
