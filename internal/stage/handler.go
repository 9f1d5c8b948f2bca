package stage

import (
	"context"

	"podsculpt/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage. Prepare runs quick validation before the status moves to
// the stage's processing value; Execute does the work.
type Handler interface {
	Prepare(context.Context, *queue.Submission) error
	Execute(context.Context, *queue.Submission) error
	HealthCheck(context.Context) Health
}
