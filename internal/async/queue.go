package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/race-results/internal/ingest"
)

// ErrClosed is returned by Enqueue once Shutdown has started.
var ErrClosed = errors.New("queue is shutting down")

// Job is a document waiting for a worker.
type Job struct {
	ID          uuid.UUID
	Doc         ingest.Job
	Force       bool // process even if the output already exists
	SubmittedAt time.Time
}

// NewJob stamps a document job with an ID and submission time.
func NewJob(doc ingest.Job, force bool) Job {
	return Job{ID: uuid.New(), Doc: doc, Force: force, SubmittedAt: time.Now().UTC()}
}

// Handler processes one job.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job Job) error

func (f HandlerFunc) Handle(ctx context.Context, job Job) error { return f(ctx, job) }

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
