package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/sqlflash/internal/logger"
)

// ErrPoolStopped is returned when submitting to a stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

type Job interface {
	Run(context.Context) error
	Name() string
}

type Pool struct {
	name     string
	jobs     chan Job
	done     chan struct{}
	wg       sync.WaitGroup
	workers  int
	queue    int
	cancel   context.CancelFunc
	stopOnce sync.Once
	log      *logger.Logger
}

func NewPool(name string, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix(name + "-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		name:    name,
		jobs:    make(chan Job, queueSize),
		done:    make(chan struct{}),
		workers: workers,
		queue:   queueSize,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job := <-p.jobs:
					jobLog := workerLog.WithField("job", job.Name())
					jobLog.Debug("starting job")
					start := time.Now()

					jobCtx := logger.NewContext(ctx, jobLog)

					if err := job.Run(jobCtx); err != nil {
						jobLog.Error("job failed after %v: %v", time.Since(start), err)
					} else {
						jobLog.Info("job completed in %v", time.Since(start))
					}
				}
			}
		}(i + 1)
	}
}

// Stop cancels running jobs and waits for the workers to exit. Jobs still
// queued are dropped.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info("stopping worker pool")
		close(p.done)
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
		p.log.Info("worker pool stopped")
	})
}

// Submit queues job, blocking while the queue is full.
func (p *Pool) Submit(job Job) error {
	return p.SubmitContext(context.Background(), job)
}

// SubmitContext queues job, giving up when ctx ends or the pool stops.
func (p *Pool) SubmitContext(ctx context.Context, job Job) error {
	select {
	case <-p.done:
		return ErrPoolStopped
	default:
	}

	p.log.Debug("submitting job: %s", job.Name())
	select {
	case p.jobs <- job:
		return nil
	case <-p.done:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

type batchResult struct {
	index int
	err   error
}

type batchJob struct {
	Job
	index   int
	results chan<- batchResult
}

func (b *batchJob) Run(ctx context.Context) error {
	err := b.Job.Run(ctx)
	b.results <- batchResult{index: b.index, err: err}
	return err
}

// RunBatch runs jobs on the pool and waits for all of them. The returned
// slice holds each job's error at the job's index. Jobs that never finish
// because ctx ended or the pool stopped report that cause.
func (p *Pool) RunBatch(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	finished := make([]bool, len(jobs))
	results := make(chan batchResult, len(jobs))

	pending := 0
	for i, job := range jobs {
		if err := p.SubmitContext(ctx, &batchJob{Job: job, index: i, results: results}); err != nil {
			errs[i] = err
			finished[i] = true
			continue
		}
		pending++
	}

	for pending > 0 {
		select {
		case r := <-results:
			errs[r.index] = r.err
			finished[r.index] = true
			pending--
		case <-ctx.Done():
			fillUnfinished(errs, finished, ctx.Err())
			return errs
		case <-p.done:
			fillUnfinished(errs, finished, ErrPoolStopped)
			return errs
		}
	}
	return errs
}

func fillUnfinished(errs []error, finished []bool, cause error) {
	for i := range errs {
		if !finished[i] {
			errs[i] = cause
		}
	}
}
