// Package worker drains the mail queue and hands each job to a Mailer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/poprzeczka/internal/adapters/mail"
	"github.com/okian/poprzeczka/internal/adapters/mq/queue"
	"github.com/okian/poprzeczka/pkg/logger"
	"github.com/okian/poprzeczka/pkg/metrics"
)

const (
	defaultWorkerCount = 2
	sendTimeout        = 30 * time.Second
)

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes mail jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker sends jobs read off a Queue.
type InMemoryWorker struct {
	queue  Queue
	mailer mail.Mailer
	name   string

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, m mail.Mailer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		mailer:   m,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logger.OrGlobal(w.logger).Named(w.name)
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// A stop cancels the in-flight send and the queue's feeding goroutine.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "mail job failed",
					logger.String("job_id", j.ID),
					logger.String("kind", j.Kind),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	sctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := w.mailer.Send(sctx, j.Message); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordNotification(j.Kind, "failed")
		kind := "send_error"
		if errors.Is(err, mail.ErrInvalidMessage) {
			kind = "invalid_message"
		}
		metrics.RecordErrorByComponent("worker", kind)
		return fmt.Errorf("send job %s: %w", j.ID, err)
	}

	metrics.RecordNotification(j.Kind, "sent")
	w.logger.Debug(ctx, "mail sent",
		logger.String("job_id", j.ID),
		logger.String("kind", j.Kind),
		logger.Duration("queued_for", time.Since(j.Enqueued)),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. Options apply to every worker; a
// WithLogger logger is also used by the pool itself.
func NewPool(workerCount int, q Queue, m mail.Mailer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	probe := &InMemoryWorker{}
	for _, opt := range opts {
		opt(probe)
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.OrGlobal(probe.logger).Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		p.workers[i] = NewInMemoryWorker(q, m, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start runs every worker in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets the workers drain what is left. Workers
// still busy when ctx expires are stopped and their jobs dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			w.stop()
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, ctx.Err())
	}
	return nil
}
