package loop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Run when the loop was stopped explicitly
var ErrStopped = errors.New("loop stopped")

// Timer is a pending delayed task
type Timer interface {
	// Stop prevents the task from running. It reports whether the call
	// stopped the task; false means it already ran or was stopped before.
	Stop() bool
}

// Scheduler runs tasks on a single goroutine
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop executes posted tasks sequentially on the goroutine calling Run
type Loop struct {
	queue   chan func()
	stop    chan struct{}
	running atomic.Bool
	logger  *zap.Logger

	processed atomic.Uint64
	panicked  atomic.Uint64
}

// Option configures a Loop
type Option func(*Loop)

// WithQueueSize sets the task queue size
func WithQueueSize(size int) Option {
	return func(l *Loop) {
		if size > 0 {
			l.queue = make(chan func(), size)
		}
	}
}

// WithLogger sets the logger used for task panics
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:  make(chan func(), 1024),
		stop:   make(chan struct{}),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("loop")
	return l
}

// Post enqueues fn. Safe for concurrent use; blocks while the queue is full.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.queue <- fn:
	case <-l.stop:
	}
}

// AfterFunc posts fn onto the loop once d has elapsed
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.state.CompareAndSwap(timerPending, timerFired) {
				fn()
			}
		})
	})
	return t
}

// Do posts fn and waits until it has run on the loop.
// It must not be called from a task, that would deadlock.
func (l *Loop) Do(fn func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-l.stop:
	}
}

// Run processes tasks until ctx is cancelled or Stop is called
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("loop already running")
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return ErrStopped
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

// Stop terminates Run and releases goroutines blocked in Post or Do
func (l *Loop) Stop() {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
}

// Running reports whether Run is active
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Processed returns the number of tasks executed so far
func (l *Loop) Processed() uint64 {
	return l.processed.Load()
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panicked.Add(1)
			l.logger.Error("task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
	l.processed.Add(1)
}

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

type loopTimer struct {
	timer *time.Timer
	state atomic.Int32
}

func (t *loopTimer) Stop() bool {
	if !t.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}
	t.timer.Stop()
	return true
}
