package config

const (
	defaultStagingDir = "~/.local/share/podsculpt/staging"
	defaultLogDir     = "~/.local/share/podsculpt/logs"
	defaultAPIBind    = "127.0.0.1:8799"

	defaultTranscriberBaseURL      = "https://api.assemblyai.com/v2"
	defaultTranscriberPollInterval = 3
	defaultTranscriberTimeout      = 600

	defaultLLMBaseURL        = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel          = "llama-3.3-70b-versatile"
	defaultLLMTimeoutSeconds = 60

	defaultStorageBucket       = "clips"
	defaultSignedURLTTLSeconds = 3600

	defaultFFmpegBinary   = "ffmpeg"
	defaultRenderWidth    = 1280
	defaultRenderHeight   = 720
	defaultRenderWorkers  = 3
	defaultMaxClipSeconds = 90
	defaultWordsPerCue    = 4
	defaultAttribution    = "Made with Podsculpt"

	defaultMaxRedirects    = 5
	defaultDownloadTimeout = 120

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultRunTimeoutSeconds  = 300

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Transcriber: Transcriber{
			BaseURL:             defaultTranscriberBaseURL,
			PollIntervalSeconds: defaultTranscriberPollInterval,
			TimeoutSeconds:      defaultTranscriberTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Storage: Storage{
			Bucket:              defaultStorageBucket,
			SignedURLTTLSeconds: defaultSignedURLTTLSeconds,
		},
		Render: Render{
			FFmpegBinary:   defaultFFmpegBinary,
			Width:          defaultRenderWidth,
			Height:         defaultRenderHeight,
			Workers:        defaultRenderWorkers,
			MaxClipSeconds: defaultMaxClipSeconds,
			WordsPerCue:    defaultWordsPerCue,
			Attribution:    defaultAttribution,
		},
		Download: Download{
			MaxRedirects:   defaultMaxRedirects,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			RunTimeoutSeconds:  defaultRunTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
