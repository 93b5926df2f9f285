package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/bill-scanner/internal/pipeline"
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("queue is shutting down")

// Job is one bill waiting for a worker.
type Job struct {
	ID          string // caller-chosen key, echoed back in the result
	Submission  pipeline.Submission
	SubmittedAt time.Time
}

// Processor runs a submission through the pipeline.
type Processor interface {
	Process(ctx context.Context, sub pipeline.Submission) (*pipeline.Outcome, error)
}

// ResultFunc receives every finished job. It is called from worker goroutines.
type ResultFunc func(job Job, out *pipeline.Outcome, err error)

type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  ResultFunc
	base    context.Context

	ch      chan Job
	quit    chan struct{}
	wg      sync.WaitGroup
	senders sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
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

// WithBaseContext ties every job to ctx. Once ctx is done, running jobs are
// cancelled and queued ones are reported with ctx's error without being processed.
func WithBaseContext(ctx context.Context) Option {
	return func(q *ProcessorQueue) {
		if ctx != nil {
			q.base = ctx
		}
	}
}

// WithResults registers fn to receive each job's outcome.
func WithResults(fn ResultFunc) Option {
	return func(q *ProcessorQueue) {
		q.onDone = fn
	}
}

// NewProcessorQueue starts the workers immediately.
// With one worker, rows reach the spreadsheet in enqueue order; with more, in completion order.
func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 1,
		timeout: 3 * time.Minute,
		base:    context.Background(),
		ch:      make(chan Job, 64),
		quit:    make(chan struct{}),
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
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					if err := q.base.Err(); err != nil {
						q.logger.Warn("skipping bill", "worker_id", workerID, "job", job.ID, "error", err)
						if q.onDone != nil {
							q.onDone(job, nil, err)
						}
						continue
					}
					ctx, cancel := context.WithTimeout(q.base, q.timeout)
					out, err := q.proc.Process(ctx, job.Submission)
					cancel()

					if err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "job", job.ID, "error", err)
					} else {
						q.logger.Info("processed bill", "worker_id", workerID, "job", job.ID, "parsed", out.Parsed,
							"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
					if q.onDone != nil {
						q.onDone(job, out, err)
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full, until ctx is done or Shutdown is called.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "job", job.ID)
		return ErrClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued bill", "job", job.ID)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "job", job.ID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.quit:
		q.logger.Warn("cannot enqueue: queue is shutting down", "job", job.ID)
		return ErrClosed
	}
}

// Shutdown stops intake and waits for queued jobs to finish, or for ctx.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.quit)
	q.mu.Unlock()

	// ch is closed only after blocked senders have left
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
