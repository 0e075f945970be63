package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-fairqueue/pkg/datastructs/queue"
	"github.com/huynhanx03/go-fairqueue/pkg/settings"
)

var (
	// ErrClosed is returned by Submit after Shutdown has been called.
	ErrClosed = errors.New("workerpool: closed")
	// ErrNotStarted is returned by Submit before Start.
	ErrNotStarted = errors.New("workerpool: not started")
)

// Task is a unit of work run by a worker.
type Task func(ctx context.Context) error

// Stats is a snapshot of the pool and its queue.
type Stats struct {
	Workers   int         `json:"workers"`
	Processed uint64      `json:"processed"`
	Failed    uint64      `json:"failed"`
	Queue     queue.Stats `json:"queue"`
}

// Pool runs submitted tasks on a fixed set of workers.
//
// Tasks are dispatched in submission order. Idle workers park in a FairQueue, so
// the worker that has been idle longest gets the next task.
type Pool struct {
	cfg settings.Pool
	q   *queue.FairQueue[Task]
	log *zap.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc // cancels the task context
	stop    chan struct{}      // releases the ctx watcher on graceful shutdown
	group   *errgroup.Group

	processed atomic.Uint64
	failed    atomic.Uint64
}

// New creates a pool. Workers are not started until Start is called.
func New(cfg settings.Pool, log *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = settings.DefaultDrainInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Pool{
		cfg: cfg,
		q:   queue.New[Task](queue.WithLogger(log.Named("queue"))),
		log: log,
	}
}

// Start launches the workers. Cancelling ctx closes the queue: parked workers
// exit and tasks still queued are dropped. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.closed {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)
	p.stop = make(chan struct{})
	stop := p.stop

	for i := 0; i < p.cfg.Workers; i++ {
		id := i
		p.group.Go(func() error {
			return p.work(ctx, id)
		})
	}

	// Parked workers cannot observe ctx, so closing the queue is what releases them.
	p.group.Go(func() error {
		select {
		case <-ctx.Done():
			p.q.Close()
		case <-stop:
		}
		return nil
	})

	p.log.Info("worker pool started", zap.Int("workers", p.cfg.Workers))
}

// work is the worker loop; it returns once the queue is closed.
func (p *Pool) work(ctx context.Context, id int) error {
	for {
		task, err := p.q.Dequeue()
		if errors.Is(err, queue.ErrClosed) {
			p.log.Debug("worker stopped", zap.Int("worker", id))
			return nil
		}

		if err := p.run(ctx, task); err != nil {
			p.failed.Add(1)
			p.log.Warn("task failed", zap.Int("worker", id), zap.Error(err))
			continue
		}
		p.processed.Add(1)
	}
}

// run executes task and turns a panic into an error.
func (p *Pool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("task panic: %v", r)
		}
	}()

	if task == nil {
		return errors.New("nil task")
	}
	return task(ctx)
}

// Submit queues task for execution. It never blocks.
func (p *Pool) Submit(task Task) error {
	// Held across Enqueue so a task cannot slip in after Shutdown has drained.
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return ErrClosed
	case !p.started:
		return ErrNotStarted
	}

	if err := p.q.Enqueue(task); err != nil {
		return ErrClosed
	}
	return nil
}

// Shutdown stops accepting tasks, waits for the queue to drain, then closes the
// queue and waits for running tasks to finish. Running tasks keep a live context.
// If ctx ends first, the task context is cancelled and tasks still queued are
// dropped; the returned error reports it.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	started := p.started
	p.mu.Unlock()

	if !started {
		p.q.Close()
		return nil
	}

	var drainErr error
	ticker := time.NewTicker(time.Duration(p.cfg.DrainInterval) * time.Millisecond)
	defer ticker.Stop()

drain:
	for p.q.Size() > 0 {
		select {
		case <-ctx.Done():
			drainErr = errors.Wrapf(ctx.Err(), "shutdown dropped %d queued tasks", p.q.Size())
			break drain
		case <-ticker.C:
		}
	}

	if drainErr != nil {
		p.cancel()
	}
	p.q.Close()
	close(p.stop)

	if err := p.group.Wait(); err != nil && drainErr == nil {
		drainErr = err
	}
	p.cancel()

	p.log.Info("worker pool stopped",
		zap.Uint64("processed", p.processed.Load()),
		zap.Uint64("failed", p.failed.Load()),
	)
	return drainErr
}

// Queue exposes the queue counters.
func (p *Pool) Queue() queue.Observer { return p.q }

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.cfg.Workers,
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Queue:     p.q.Stats(),
	}
}
