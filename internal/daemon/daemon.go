package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"podsculpt/internal/api"
	"podsculpt/internal/config"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/workflow"
)

// ClipSigner issues short-lived URLs for rendered clips in object storage.
type ClipSigner interface {
	SignedURL(key string) (string, error)
	TTL() int
}

// Daemon coordinates background processing and the HTTP API, and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	clips    ClipSigner

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The clip signer is
// optional; without it clip link requests return an error.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, clips ClipSigner) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "podsculptd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		clips:    clips,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, launches the workflow manager, and begins
// serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another podsculpt daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	srv, err := newAPIServer(d.cfg, d, d.logger)
	if err == nil && srv != nil {
		err = srv.start(runCtx)
	}
	if err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}
	d.api = srv

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.api = nil
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or empty when the server is off.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Submit enqueues a feed URL for processing.
func (d *Daemon) Submit(ctx context.Context, rssURL string) (*queue.Submission, error) {
	sub, err := d.store.NewSubmission(ctx, rssURL)
	if err != nil {
		return nil, err
	}
	d.logger.Info("feed submitted",
		logging.Int64(logging.FieldSubmissionID, sub.ID),
		logging.String("rss_url", sub.RSSURL))
	return sub, nil
}

// RetryFailed moves failed submissions (optionally a subset) back to pending.
func (d *Daemon) RetryFailed(ctx context.Context, ids []int64) (int64, error) {
	return d.store.RetryFailed(ctx, ids...)
}

// SignClip issues a short-lived URL for one rendered clip. Clip numbers are
// 1-based and match bucket object names.
func (d *Daemon) SignClip(ctx context.Context, submissionID int64, clipNumber int) (string, error) {
	if d.clips == nil {
		return "", errors.New("clip storage not configured")
	}
	sub, err := d.store.GetByID(ctx, submissionID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return "", errors.New("submission not found")
	}
	keys, err := sub.ClipURLs()
	if err != nil {
		return "", err
	}
	if clipNumber < 1 || clipNumber > len(keys) {
		return "", fmt.Errorf("clip %d not found", clipNumber)
	}
	key := keys[clipNumber-1]
	if key == nil || strings.TrimSpace(*key) == "" {
		return "", fmt.Errorf("clip %d was not rendered", clipNumber)
	}
	return d.clips.SignedURL(*key)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	stats, err := d.store.Stats(ctx)
	workflowStatus := api.WorkflowStatus{
		Running:     d.running.Load(),
		QueueStats:  api.MergeQueueStats(stats),
		StageHealth: api.FromStageHealth(d.workflow.Health(ctx)),
	}
	if err != nil {
		workflowStatus.LastError = err.Error()
	} else if lastErr := d.workflow.LastError(); lastErr != nil {
		workflowStatus.LastError = lastErr.Error()
	}
	return api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Workflow:     workflowStatus,
	}
}
