// Package worker runs name-grouping jobs from a queue on a pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/starchart/internal/adapters/mq/queue"
	"github.com/okian/starchart/internal/namegroup"
	"github.com/okian/starchart/pkg/logger"
)

// ErrQueueFull is returned when a job cannot be enqueued.
var ErrQueueFull = errors.New("job queue rejected a job")

// Grouper groups the names of one job.
type Grouper interface {
	Group(ctx context.Context, names []string) (*namegroup.Result, error)
}

// Result pairs a job's sequence number with its grouping.
type Result struct {
	Seq    int
	Groups *namegroup.Result
	Err    error
}

// Pool manages workers draining one queue.
type Pool struct {
	workers int
	queue   queue.Queue
	grouper Grouper
	name    string
	logger  logger.Logger
}

// NewPool creates a new worker pool. workerCount below 1 uses one worker
// per CPU.
func NewPool(workerCount int, q queue.Queue, g Grouper, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: workerCount,
		queue:   q,
		grouper: g,
		name:    "worker",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Process enqueues jobs, closes the queue and waits for every worker.
// Results come back indexed by Seq, which must lie in [0, len(jobs)). The
// first job error, if any, is returned after all workers finish. A pool
// runs once; a second call fails with queue.ErrClosed.
func (p *Pool) Process(ctx context.Context, jobs []queue.Job) ([]Result, error) {
	if p.queue.IsClosed() {
		return nil, fmt.Errorf("%s: %w", p.name, queue.ErrClosed)
	}
	start := time.Now()
	for _, j := range jobs {
		if j.Seq < 0 || j.Seq >= len(jobs) {
			_ = p.queue.Close()
			return nil, fmt.Errorf("job seq %d out of range [0,%d)", j.Seq, len(jobs))
		}
		if !p.queue.Enqueue(ctx, j) {
			_ = p.queue.Close()
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("enqueue job %d: %w", j.Seq, err)
			}
			return nil, fmt.Errorf("%w: seq %d", ErrQueueFull, j.Seq)
		}
	}
	queued := p.queue.Len(ctx)
	if err := p.queue.Close(); err != nil {
		return nil, fmt.Errorf("close queue: %w", err)
	}

	results := make([]Result, len(jobs))
	jobsCh := p.queue.Dequeue(ctx)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobsCh {
				g, err := p.grouper.Group(ctx, j.Names)
				results[j.Seq] = Result{Seq: j.Seq, Groups: g, Err: err}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	for _, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("%s: job %d: %w", p.name, r.Seq, r.Err)
		}
	}

	p.logger.Debug(ctx, "jobs processed",
		logger.Int("jobs", len(jobs)),
		logger.Int("queued", queued),
		logger.Int("workers", p.workers),
		logger.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}
