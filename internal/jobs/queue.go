package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"eventregistration/internal/domain"
	"eventregistration/internal/metrics"
)

// Deliverer performs one delivery attempt for a job.
type Deliverer func(ctx context.Context, job *domain.NotificationJob) error

// Config sizes the worker pool and its retry policy.
type Config struct {
	Workers     int
	Size        int
	MaxAttempts int
	SendTimeout time.Duration
	// RetryInterval is the first backoff delay; later delays grow exponentially.
	RetryInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Size < 1 {
		c.Size = 1
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 500 * time.Millisecond
	}
	return c
}

// Queue is a bounded in-process notification queue drained by a fixed pool of workers.
// Jobs are lost on restart.
type Queue struct {
	cfg     Config
	deliver Deliverer
	logger  *slog.Logger
	ids     *idGenerator

	jobs   chan *domain.NotificationJob
	mu     sync.RWMutex
	closed bool

	enqueued  atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
	dropped   atomic.Int64
}

// NewQueue returns a queue that is ready to accept jobs. Nothing is delivered until Run starts.
func NewQueue(deliver Deliverer, cfg Config, logger *slog.Logger) *Queue {
	cfg = cfg.withDefaults()
	return &Queue{
		cfg:     cfg,
		deliver: deliver,
		logger:  logger,
		ids:     newIDGenerator(),
		jobs:    make(chan *domain.NotificationJob, cfg.Size),
	}
}

// Enqueue never blocks. A full queue drops the job and returns domain.ErrQueueFull.
func (q *Queue) Enqueue(job *domain.NotificationJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return domain.ErrQueueClosed
	}
	if job.ID == "" {
		job.ID = q.ids.New()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		q.enqueued.Add(1)
		metrics.NotificationQueueDepth.Set(float64(len(q.jobs)))
		return nil
	default:
		q.dropped.Add(1)
		metrics.Notifications.WithLabelValues(string(job.Kind), "dropped").Inc()
		q.logger.Warn("notification dropped, queue full", "job_id", job.ID, "kind", job.Kind, "to", job.To)
		return domain.ErrQueueFull
	}
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() domain.QueueStats {
	return domain.QueueStats{
		Capacity:  cap(q.jobs),
		Depth:     len(q.jobs),
		Workers:   q.cfg.Workers,
		Enqueued:  q.enqueued.Load(),
		Delivered: q.delivered.Load(),
		Failed:    q.failed.Load(),
		Retried:   q.retried.Load(),
		Dropped:   q.dropped.Load(),
	}
}

// Run starts the workers and blocks until ctx is cancelled. On cancellation the queue stops
// accepting jobs and the workers drain what is left with one attempt per job.
func (q *Queue) Run(ctx context.Context) error {
	var g errgroup.Group
	for i := 0; i < q.cfg.Workers; i++ {
		g.Go(func() error {
			for job := range q.jobs {
				metrics.NotificationQueueDepth.Set(float64(len(q.jobs)))
				q.process(ctx, job)
			}
			return nil
		})
	}
	q.logger.Info("notification workers started", "workers", q.cfg.Workers, "capacity", q.cfg.Size)

	<-ctx.Done()
	q.close()
	err := g.Wait()
	q.logger.Info("notification workers stopped", "delivered", q.delivered.Load(), "failed", q.failed.Load())
	return err
}

func (q *Queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

func (q *Queue) process(ctx context.Context, job *domain.NotificationJob) {
	attempt := 0
	operation := func() error {
		attempt++
		return q.attempt(ctx, job)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.cfg.RetryInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(q.cfg.MaxAttempts-1)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		q.retried.Add(1)
		metrics.NotificationRetries.WithLabelValues(string(job.Kind)).Inc()
		q.logger.Warn("notification attempt failed, retrying",
			"job_id", job.ID, "kind", job.Kind, "to", job.To, "attempt", attempt, "retry_in", next, "err", err)
	})
	if err != nil {
		q.failed.Add(1)
		metrics.Notifications.WithLabelValues(string(job.Kind), "failed").Inc()
		q.logger.Error("notification failed",
			"job_id", job.ID, "kind", job.Kind, "to", job.To, "attempts", attempt, "err", err)
		return
	}
	q.delivered.Add(1)
	metrics.Notifications.WithLabelValues(string(job.Kind), "delivered").Inc()
	q.logger.Info("notification delivered", "job_id", job.ID, "kind", job.Kind, "to", job.To, "attempts", attempt)
}

// attempt runs a single delivery bounded by SendTimeout. It detaches from ctx cancellation so
// a draining worker can still finish its last attempt.
func (q *Queue) attempt(ctx context.Context, job *domain.NotificationJob) (err error) {
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.cfg.SendTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deliver panicked: %v", r)
		}
	}()
	return q.deliver(attemptCtx, job)
}
