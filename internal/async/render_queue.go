package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
)

const finishTimeout = 5 * time.Second

// Renderer renders one slip.
type Renderer interface {
	Render(ctx context.Context, templateID, recordID uuid.UUID) ([]byte, error)
}

// Stats counts finished jobs by outcome.
type Stats struct {
	Rendered int64
	NotFound int64
	Failed   int64
}

type RenderQueue struct {
	renderer Renderer
	jobs     repository.RenderJobRepository
	outDir   string
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	rendered, notFound, failed atomic.Int64
}

type Option func(*RenderQueue)

func WithWorkers(n int) Option {
	return func(q *RenderQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *RenderQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *RenderQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithJobRepository records every job and its outcome.
func WithJobRepository(r repository.RenderJobRepository) Option {
	return func(q *RenderQueue) { q.jobs = r }
}

// NewRenderQueue starts the workers. Rendered slips are written to
// outDir as <record id>.pdf.
func NewRenderQueue(renderer Renderer, outDir string, logger *slog.Logger, opts ...Option) *RenderQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &RenderQueue{
		renderer: renderer,
		outDir:   outDir,
		logger:   logger,
		workers:  4,
		timeout:  time.Minute,
		ch:       make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *RenderQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					q.process(ctx, workerID, job)
					cancel()
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *RenderQueue) process(ctx context.Context, workerID int, job Job) {
	var jobID uuid.UUID
	if q.jobs != nil {
		row, err := q.jobs.Start(ctx, job.TemplateID, job.RecordID)
		if err != nil {
			q.logger.Error("failed to record job start", "worker_id", workerID, "record_id", job.RecordID, "error", err)
		} else {
			jobID = row.ID
		}
	}

	path, err := q.renderToFile(ctx, job)
	if err != nil {
		status := constants.JobStatusFailed
		if errors.Is(err, common.ErrNotFound) {
			status = constants.JobStatusNotFound
			q.notFound.Add(1)
		} else {
			q.failed.Add(1)
		}
		q.logger.Error("render failed", "worker_id", workerID, "template_id", job.TemplateID, "record_id", job.RecordID, "status", status, "error", err)
		if jobID != uuid.Nil {
			q.finish(ctx, workerID, jobID, func(fctx context.Context) error {
				return q.jobs.FinishFailure(fctx, jobID, status, err.Error())
			})
		}
		return
	}

	q.rendered.Add(1)
	q.logger.Info("slip rendered", "worker_id", workerID, "record_id", job.RecordID, "path", path)
	if jobID != uuid.Nil {
		q.finish(ctx, workerID, jobID, func(fctx context.Context) error {
			return q.jobs.FinishSuccess(fctx, jobID, path)
		})
	}
}

// finish records the job outcome on a context detached from the render
// deadline, so a timed-out render still leaves its row terminal.
func (q *RenderQueue) finish(ctx context.Context, workerID int, jobID uuid.UUID, fn func(context.Context) error) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	if err := fn(fctx); err != nil {
		q.logger.Error("failed to record job outcome", "worker_id", workerID, "job_id", jobID, "error", err)
	}
}

func (q *RenderQueue) renderToFile(ctx context.Context, job Job) (string, error) {
	pdf, err := q.renderer.Render(ctx, job.TemplateID, job.RecordID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(q.outDir, job.RecordID.String()+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write slip: %w", err)
	}
	return path, nil
}

func (q *RenderQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "record_id", job.RecordID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued slip for rendering", "template_id", job.TemplateID, "record_id", job.RecordID)
	default:
		q.logger.Warn("queue full, applying backpressure", "record_id", job.RecordID)
		q.ch <- job
	}
	return nil
}

func (q *RenderQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

// Stats reports the outcomes so far.
func (q *RenderQueue) Stats() Stats {
	return Stats{
		Rendered: q.rendered.Load(),
		NotFound: q.notFound.Load(),
		Failed:   q.failed.Load(),
	}
}
