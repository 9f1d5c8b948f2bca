package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.assemblyai.com/v2"
	defaultPollInterval = 3 * time.Second
	defaultTimeout      = 10 * time.Minute
)

// Config captures the runtime settings required to talk to AssemblyAI.
type Config struct {
	APIKey              string
	BaseURL             string
	PollIntervalSeconds int
	TimeoutSeconds      int
}

// Client wraps the AssemblyAI upload and transcript endpoints.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	pollInterval time.Duration
	timeout      time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPollInterval overrides the transcript polling cadence (useful for tests).
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// NewClient constructs an AssemblyAI client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		},
		pollInterval: defaultPollInterval,
		timeout:      defaultTimeout,
	}
	if cfg.PollIntervalSeconds > 0 {
		client.pollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	if cfg.TimeoutSeconds > 0 {
		client.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	return client
}

// Transcribe uploads the audio file, requests a word-level transcript, and
// polls until AssemblyAI reports completion or an error.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*Transcript, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.New("assemblyai: api key required")
	}

	uploadURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	transcriptID, err := c.createTranscript(ctx, uploadURL)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, transcriptID)
}

func (c *Client) upload(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: open audio: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", file)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var parsed struct {
		UploadURL string `json:"upload_url"`
	}
	if err := c.do(req, &parsed); err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	if parsed.UploadURL == "" {
		return "", errors.New("assemblyai upload: response missing upload_url")
	}
	return parsed.UploadURL, nil
}

func (c *Client) createTranscript(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{"audio_url": audioURL})
	if err != nil {
		return "", fmt.Errorf("assemblyai transcript: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("assemblyai transcript: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var parsed transcriptResponse
	if err := c.do(req, &parsed); err != nil {
		return "", fmt.Errorf("assemblyai transcript: %w", err)
	}
	if parsed.ID == "" {
		return "", errors.New("assemblyai transcript: response missing id")
	}
	return parsed.ID, nil
}

func (c *Client) poll(ctx context.Context, transcriptID string) (*Transcript, error) {
	deadline := time.Now().Add(c.timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.fetchTranscript(ctx, transcriptID)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case "completed":
			words := make([]Word, len(status.Words))
			for i, w := range status.Words {
				words[i] = Word{Text: w.Text, StartMS: w.Start, EndMS: w.End}
			}
			return &Transcript{ID: transcriptID, Text: status.Text, Words: words}, nil
		case "error":
			return nil, fmt.Errorf("assemblyai transcript %s: provider error: %s", transcriptID, status.Error)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("assemblyai transcript %s: timed out after %s in status %q", transcriptID, c.timeout, status.Status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
	Words  []struct {
		Text  string `json:"text"`
		Start int64  `json:"start"`
		End   int64  `json:"end"`
	} `json:"words"`
}

func (c *Client) fetchTranscript(ctx context.Context, transcriptID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/transcript/"+transcriptID, nil)
	if err != nil {
		return nil, fmt.Errorf("assemblyai poll: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	var parsed transcriptResponse
	if err := c.do(req, &parsed); err != nil {
		return nil, fmt.Errorf("assemblyai poll: %w", err)
	}
	return &parsed, nil
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// HealthCheck verifies an API key is configured.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("assemblyai: api key required")
	}
	return nil
}
