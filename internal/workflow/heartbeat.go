package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
)

// HeartbeatMonitor keeps in-flight submissions fresh and fails the ones a
// dead daemon left behind. Stale submissions are not resumed because the
// status machine only moves forward.
type HeartbeatMonitor struct {
	store             *queue.Store
	logger            *slog.Logger
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		store:             store,
		logger:            logging.NewComponentLogger(logger, "workflow-heartbeat"),
		heartbeatInterval: interval,
		heartbeatTimeout:  timeout,
	}
}

// FailStale marks in-flight submissions without a recent heartbeat as failed.
func (h *HeartbeatMonitor) FailStale(ctx context.Context, logger *slog.Logger) error {
	if h.heartbeatTimeout <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-h.heartbeatTimeout)
	failed, err := h.store.FailStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if failed > 0 {
		logger.Info("failed stale in-flight submissions", logging.Int64("count", failed))
	}
	return nil
}

// StartLoop updates a submission's heartbeat until context cancellation.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, submissionID int64) {
	defer wg.Done()
	if h.heartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, submissionID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
