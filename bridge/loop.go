package bridge

import (
	"context"
	"sync"
)

// Logger interface for optional panic logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
}

// Loop is an unbounded FIFO task queue drained by exactly one consumer
// goroutine.
//
// Thread Safety:
//   - Submit and Close are safe for concurrent use from any goroutine.
//   - Run must be called from exactly one goroutine.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool

	// wake carries at most one pending signal; Submit never blocks on it.
	wake chan struct{}

	logger   Logger
	loggerMu sync.RWMutex
}

// NewLoop creates an empty task loop.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// SetLogger sets a logger for panic logging.
// If not set, panics in tasks are recovered silently.
func (l *Loop) SetLogger(logger Logger) {
	l.loggerMu.Lock()
	l.logger = logger
	l.loggerMu.Unlock()
}

// Submit enqueues a task for execution on the consumer goroutine.
//
// It never blocks and never waits for the task to run, so it is safe to
// call from the MQTT library's network goroutine while the consumer is
// busy with arbitrary other tasks. Nil tasks and submissions after Close
// are dropped.
func (l *Loop) Submit(task func()) {
	if task == nil {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains tasks until the context is cancelled or Close is called.
//
// On Close, tasks already queued are executed before Run returns nil.
// On context cancellation, Run returns ctx.Err() immediately without
// draining.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			task, ok := l.pop()
			if !ok {
				break
			}
			l.runTask(task)
		}

		l.mu.Lock()
		finished := l.closed && len(l.tasks) == 0
		l.mu.Unlock()
		if finished {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops the loop once already-queued tasks have drained.
// It is safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued, not-yet-executed tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// pop removes the oldest queued task.
func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return task, true
}

// runTask executes one task with panic recovery.
func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.loggerMu.RLock()
			logger := l.logger
			l.loggerMu.RUnlock()
			if logger != nil {
				logger.Error("task panic recovered", "panic", r)
			}
		}
	}()
	task()
}
