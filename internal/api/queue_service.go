package api

import (
	"context"

	"podsculpt/internal/queue"
)

// QueueReader abstracts queue persistence interactions needed for API queries.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Submission, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Submission, error)
}

// QueueService exposes read-only queue operations returning API DTOs.
type QueueService struct {
	store QueueReader
}

// NewQueueService constructs a QueueService around the provided reader.
func NewQueueService(store QueueReader) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// List returns submissions filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]Submission, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	subs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromSubmissions(subs), nil
}

// Stats returns queue summary counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe fetches a single submission.
func (s *QueueService) Describe(ctx context.Context, id int64) (*Submission, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	sub, err := s.store.GetByID(ctx, id)
	if err != nil || sub == nil {
		return nil, err
	}
	dto := FromSubmission(sub)
	return &dto, nil
}
