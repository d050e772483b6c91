package commands

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Logger interface {
	Printf(format string, args ...any)
}

type Task func(ctx context.Context)

// Coordinator runs submitted tasks on a fixed set of workers. Submit never
// blocks; a full queue is reported as ErrCoordinatorBusy. Tasks have no
// timeout and cannot be cancelled once queued.
type Coordinator struct {
	workers int
	logger  Logger

	mu      sync.RWMutex
	queue   chan Task
	started bool
	closed  bool

	group *errgroup.Group
}

func NewCoordinator(workers, queueSize int, logger Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		workers: workers,
		logger:  logger,
		queue:   make(chan Task, queueSize),
	}
}

// Start launches the workers. ctx is handed to every task and is detached
// from cancellation so a task always runs to completion.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true

	taskCtx := context.WithoutCancel(ctx)
	c.group = new(errgroup.Group)
	for i := 0; i < c.workers; i++ {
		c.group.Go(func() error {
			for task := range c.queue {
				c.run(taskCtx, task)
			}
			return nil
		})
	}
}

func (c *Coordinator) run(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("coordinator: task panicked: %v", r)
		}
	}()
	task(ctx)
}

func (c *Coordinator) Submit(task Task) error {
	if task == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrCoordinatorStopped
	}
	select {
	case c.queue <- task:
		return nil
	default:
		return ErrCoordinatorBusy
	}
}

func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.queue)
	group := c.group
	c.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}
}
