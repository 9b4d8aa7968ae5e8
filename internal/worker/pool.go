package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/metrics"
)

// ErrPoolStopped is the outcome of a task still queued when the pool shut
// down. It never ran.
var ErrPoolStopped = errors.New("resolution pool stopped before task ran")

// ResolveFunc is the work a task performs: a pure function of the store
// state, producing totals or an error.
type ResolveFunc func(ctx context.Context) (*bom.Totals, error)

// Task is a background resolution with a result-or-error outcome. The caller
// holds no shared state with the running task; the outcome is published
// through the done channel only.
type Task struct {
	ID uuid.UUID

	fn     ResolveFunc
	totals *bom.Totals
	err    error
	done   chan struct{}
}

// Wait blocks until the task finishes or the context is cancelled, returning
// the task's result-or-error outcome.
func (t *Task) Wait(ctx context.Context) (*bom.Totals, error) {
	select {
	case <-t.done:
		return t.totals, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Finished reports whether the task has completed without blocking
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Pool executes resolution tasks on a fixed set of workers so long-running
// batches stay off the caller's responsiveness path.
type Pool struct {
	workers int
	tasks   chan *Task
	quit    chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	registry map[uuid.UUID]*Task
}

// NewPool creates a new resolution pool
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Pool{
		workers:  workers,
		tasks:    make(chan *Task, queueSize),
		quit:     make(chan struct{}),
		registry: make(map[uuid.UUID]*Task),
	}
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	logger.FromContext(context.Background()).Info(LogMsgPoolStarted, "workers", p.workers)
}

// Submit enqueues a resolution and returns its task handle. Blocks when the
// queue is full; resolutions are bounded by the finite recipe graph, so the
// queue drains quickly in practice.
func (p *Pool) Submit(fn ResolveFunc) *Task {
	task := &Task{
		ID:   uuid.New(),
		fn:   fn,
		done: make(chan struct{}),
	}

	p.mu.Lock()
	p.registry[task.ID] = task
	p.mu.Unlock()

	metrics.TasksSubmitted.Inc()
	p.tasks <- task
	return task
}

// Get retrieves a task by ID. A finished task is removed from the registry
// on retrieval; the caller owns the outcome from then on.
func (p *Pool) Get(id uuid.UUID) (*Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.registry[id]
	if ok && task.Finished() {
		delete(p.registry, id)
	}
	return task, ok
}

// worker is the worker loop
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			ctx := logger.WithRequestID(context.Background(), task.ID.String())
			log := logger.FromContext(ctx)
			log.Debug(LogMsgTaskSubmitted, "task_id", task.ID)

			task.totals, task.err = task.fn(ctx)
			close(task.done)

			if task.err != nil {
				metrics.TasksFailed.Inc()
				log.Error(LogMsgTaskFailed, "task_id", task.ID, "error", task.err)
			} else {
				log.Debug(LogMsgTaskCompleted, "task_id", task.ID)
			}
		case <-p.quit:
			return
		}
	}
}

// Stop stops the workers and waits for in-flight tasks to finish. Tasks
// still queued will never run; they are failed so waiters unblock instead
// of polling a forever-pending task.
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()

	for {
		select {
		case task := <-p.tasks:
			task.err = ErrPoolStopped
			close(task.done)
			metrics.TasksFailed.Inc()
		default:
			logger.FromContext(context.Background()).Info(LogMsgPoolStopped)
			return
		}
	}
}
