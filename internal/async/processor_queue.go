package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/race-results/internal/common"
)

type ProcessorQueue struct {
	handler Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool

	pendingMu sync.Mutex
	pending   map[string]int // source path -> queued or running jobs
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(handler Handler, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		handler: handler,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		pending: make(map[string]int),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	defer q.release(job.Doc.Path)
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queue.job.panic", "worker_id", workerID, "job_id", job.ID, "path", job.Doc.Path, "panic", r)
		}
	}()

	ctx, cancel := common.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithJobID(ctx, job.ID.String())

	start := time.Now()
	if err := q.handler.Handle(ctx, job); err != nil {
		q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", job.ID, "path", job.Doc.Path, "err", err)
		return
	}
	q.logger.Info("queue.job.done", "worker_id", workerID, "job_id", job.ID, "path", job.Doc.Path,
		"wait_ms", start.Sub(job.SubmittedAt).Milliseconds(), "elapsed_ms", time.Since(start).Milliseconds())
}

// Enqueue hands a job to the workers, blocking while the queue is full. A job
// whose PDF is already waiting or running is dropped unless it is forced.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Doc.Path)
		return ErrClosed
	}
	if !q.claim(job) {
		q.logger.Debug("queue.enqueue.duplicate", "path", job.Doc.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "job_id", job.ID, "path", job.Doc.Path, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue.full", "path", job.Doc.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		q.release(job.Doc.Path)
		return ctx.Err()
	}
}

// claim registers job as pending. A job whose PDF is already pending is
// refused unless it is forced.
func (q *ProcessorQueue) claim(job Job) bool {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	if q.pending[job.Doc.Path] > 0 && !job.Force {
		return false
	}
	q.pending[job.Doc.Path]++
	return true
}

func (q *ProcessorQueue) release(path string) {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	if q.pending[path]--; q.pending[path] <= 0 {
		delete(q.pending, path)
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.drained")
	}
}
