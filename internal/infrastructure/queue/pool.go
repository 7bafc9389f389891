package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
)

const channelBuffer = 64

var (
	// ErrPoolStopped is returned by Run once the pool's context has been cancelled.
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrJobPanicked is returned by Run when the job panicked on its worker.
	ErrJobPanicked = errors.New("job panicked")
)

type job struct {
	fn   func()
	err  error
	done chan struct{}
}

// Pool runs CPU-bound jobs on a fixed set of workers so that a burst of
// requests cannot occupy more cores than the pool size.
type Pool struct {
	jobs    chan *job
	workers int
	stopped chan struct{}
	log     zerolog.Logger
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		jobs:    make(chan *job, channelBuffer),
		workers: numWorkers,
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.stopped)
		p.log.Debug().Int("workers", p.workers).Msg("worker pool stopped")
	}()
}

// Run executes fn on a worker and blocks until it returns. A panic in fn is
// reported as ErrJobPanicked. Run gives up when ctx is done or the pool is
// stopped; a job that already started still runs to completion in the
// background.
func (p *Pool) Run(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.stopped:
		return ErrPoolStopped
	default:
	}

	j := &job{fn: fn, done: make(chan struct{})}
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	}

	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			p.exec(id, j)
		}
	}
}

func (p *Pool) exec(id int, j *job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("job panicked")
			j.err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	j.fn()
}
