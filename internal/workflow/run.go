package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/services"
)

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.FailStale(ctx, m.logger); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("stale submission sweep failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_sweep_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"))
		}

		sub, err := m.store.NextForStatuses(ctx, queue.StatusPending)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("failed to fetch next submission",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"))
			m.sleep(ctx, m.retryDelay)
			continue
		}
		if sub == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		if err := m.runSubmission(ctx, sub); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
		}
	}
}

// runSubmission claims a pending submission and walks it through every
// consecutive stage inside one bounded run.
func (m *Manager) runSubmission(ctx context.Context, sub *queue.Submission) error {
	requestID := uuid.NewString()
	runCtx := services.WithSubmissionID(ctx, sub.ID)
	runCtx = services.WithRequestID(runCtx, requestID)
	if m.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, m.runTimeout)
		defer cancel()
	}

	logger := logging.WithContext(runCtx, m.logger)
	now := time.Now().UTC()
	sub.Status = queue.StatusProcessing
	sub.ErrorMessage = ""
	sub.LastHeartbeat = &now
	sub.SetProgress("Processing", "Run started", 0)
	if err := m.store.Update(runCtx, sub); err != nil {
		return fmt.Errorf("claim submission: %w", err)
	}
	logger.Info("run started", logging.String(logging.FieldEventType, "run_start"))

	for !sub.Status.IsTerminal() {
		st, ok := m.stageForStatus(sub.Status)
		if !ok {
			err := fmt.Errorf("no stage configured for status %s", sub.Status)
			m.failSubmission(runCtx, logger, sub, "run", err)
			return err
		}
		if err := m.executeStage(runCtx, st, sub); err != nil {
			return err
		}
	}

	if sub.Status == queue.StatusComplete {
		logger.Info("run complete", logging.String(logging.FieldEventType, "run_complete"))
	}
	m.cleanupWorkDir(logger, sub)
	return nil
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	for _, st := range m.stages {
		if st.startStatus == status {
			return st, true
		}
	}
	return pipelineStage{}, false
}

func (m *Manager) executeStage(ctx context.Context, st pipelineStage, sub *queue.Submission) error {
	stageCtx := services.WithStage(ctx, st.name)
	logger := logging.WithContext(stageCtx, m.logger)
	stageStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(st.processingStatus)))

	if err := st.handler.Prepare(stageCtx, sub); err != nil {
		m.failSubmission(stageCtx, logger, sub, st.name, err)
		return err
	}

	now := time.Now().UTC()
	sub.Status = st.processingStatus
	sub.LastHeartbeat = &now
	if err := m.persistSubmission(stageCtx, sub); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	execErr := m.executeWithHeartbeat(stageCtx, st, sub)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return execErr
		}
		if errors.Is(execErr, context.DeadlineExceeded) {
			execErr = services.Wrap(services.ErrTransient, st.name, "execute",
				"Run exceeded its time budget", execErr)
		}
		m.failSubmission(stageCtx, logger, sub, st.name, execErr)
		return execErr
	}

	sub.Status = st.doneStatus
	sub.LastHeartbeat = nil
	if sub.Status == queue.StatusComplete {
		sub.SetProgress("Complete", "All stages finished", 100)
	}
	if err := m.persistSubmission(stageCtx, sub); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(sub.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)))
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, st pipelineStage, sub *queue.Submission) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, sub.ID)

	execErr := st.handler.Execute(ctx, sub)
	hbCancel()
	hbWG.Wait()
	return execErr
}

// failSubmission persists the failed terminal state with a readable message
// and releases the run's working directory.
func (m *Manager) failSubmission(ctx context.Context, logger *slog.Logger, sub *queue.Submission, stageName string, stageErr error) {
	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" && stageErr != nil {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	sub.SetFailed(message)

	attrs := []logging.Attr{
		logging.String("error_message", message),
		logging.String("error_kind", details.Kind),
		logging.String(logging.FieldEventType, "stage_failure"),
	}
	if details.Cause != nil {
		attrs = append(attrs, logging.Error(details.Cause))
	} else if stageErr != nil {
		attrs = append(attrs, logging.Error(stageErr))
	}
	logger.Error("stage failed", logging.Args(attrs...)...)

	if err := m.persistSubmission(ctx, sub); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	m.cleanupWorkDir(logger, sub)
}

// persistSubmission writes sub, retrying once on a fresh context when the run
// context has already been cancelled or has exceeded its budget. Terminal and
// transition states must land even when the run itself is out of time.
func (m *Manager) persistSubmission(ctx context.Context, sub *queue.Submission) error {
	err := m.store.Update(ctx, sub)
	if err != nil && ctx.Err() != nil {
		persistCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = m.store.Update(persistCtx, sub)
	}
	return err
}

// cleanupWorkDir removes the run's staging directory on every terminal path.
func (m *Manager) cleanupWorkDir(logger *slog.Logger, sub *queue.Submission) {
	workDir := strings.TrimSpace(sub.WorkDir)
	if workDir == "" {
		return
	}
	if err := os.RemoveAll(workDir); err != nil {
		logger.Warn("failed to remove working directory",
			logging.String("work_dir", workDir),
			logging.Error(err))
		return
	}
	logger.Debug("working directory removed", logging.String("work_dir", workDir))
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
