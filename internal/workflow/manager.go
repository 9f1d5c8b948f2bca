package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"podsculpt/internal/config"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/stage"
)

// pipelineStage binds one handler to its slice of the status machine.
type pipelineStage struct {
	name             string
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
	handler          stage.Handler
}

// Handlers carries the five pipeline stage implementations in run order.
type Handlers struct {
	Episode    stage.Handler
	Transcribe stage.Handler
	Notes      stage.Handler
	ClipSelect stage.Handler
	Render     stage.Handler
}

// Manager drives claimed submissions through the stage sequence. A claimed
// submission runs to a terminal status within a single bounded run; statuses
// only move forward.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	retryDelay   time.Duration
	runTimeout   time.Duration
	heartbeat    *HeartbeatMonitor
	stages       []pipelineStage

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager over the given stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, handlers Handlers) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryDelay:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		runTimeout:   time.Duration(cfg.Workflow.RunTimeoutSeconds) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		stages: []pipelineStage{
			{"episode", queue.StatusProcessing, queue.StatusDownloading, queue.StatusDownloaded, handlers.Episode},
			{"transcribe", queue.StatusDownloaded, queue.StatusTranscribing, queue.StatusTranscribed, handlers.Transcribe},
			{"notes", queue.StatusTranscribed, queue.StatusGeneratingNotes, queue.StatusNotesComplete, handlers.Notes},
			{"clipselect", queue.StatusNotesComplete, queue.StatusSelectingClips, queue.StatusClipsSelected, handlers.ClipSelect},
			{"render", queue.StatusClipsSelected, queue.StatusCreatingVideos, queue.StatusComplete, handlers.Render},
		},
	}
}

// Start begins background polling.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	for _, st := range m.stages {
		if st.handler == nil {
			return errors.New("workflow stages not configured")
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for the poll loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// LastError returns the most recent run error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Health reports the readiness of every configured stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, st := range m.stages {
		if st.handler == nil {
			results = append(results, stage.Unhealthy(st.name, "handler unavailable"))
			continue
		}
		results = append(results, st.handler.HealthCheck(ctx))
	}
	return results
}
