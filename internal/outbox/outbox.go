// Package outbox runs best-effort side effects (reply notifications,
// event audit publishes, presence mirrors) on a worker detached from
// the primary operation, so a failure there cannot affect the caller's
// result.
package outbox

import (
	"context"
	"log/slog"
	"sync"
)

// Task is one unit of best-effort work. Errors are logged, never
// propagated.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue accepts tasks without blocking; when the buffer is full the
// task is dropped and logged, matching the at-most-once, best-effort
// contract of everything that goes through here.
type Queue interface {
	Enqueue(task Task)
}

type Outbox struct {
	tasks  chan Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(buffer int) *Outbox {
	if buffer <= 0 {
		buffer = 256
	}
	return &Outbox{tasks: make(chan Task, buffer)}
}

// Start launches the worker. Tasks enqueued before Start sit in the
// buffer until it runs.
func (o *Outbox) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case task := <-o.tasks:
				if err := task.Run(ctx); err != nil {
					slog.Error("outbox task failed", "task", task.Name, "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (o *Outbox) Enqueue(task Task) {
	select {
	case o.tasks <- task:
	default:
		slog.Warn("outbox full, dropping task", "task", task.Name)
	}
}

// Stop cancels the worker and waits for the in-flight task.
func (o *Outbox) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Sync runs every task inline on the calling goroutine. Used in tests
// where side effects must be observable immediately.
type Sync struct{}

func (Sync) Enqueue(task Task) {
	if err := task.Run(context.Background()); err != nil {
		slog.Error("outbox task failed", "task", task.Name, "error", err)
	}
}
