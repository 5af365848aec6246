// Package uiloop runs queued work on a single goroutine so that every
// window and engine mutation happens in one serialization context.
package uiloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = errors.New("ui loop stopped")

// Loop is a FIFO work queue drained by Run. Post never blocks, so it is safe
// to call from X event callbacks and signal handlers.
type Loop struct {
	mu      sync.Mutex
	queue   []task
	wake    chan struct{}
	done    chan struct{}
	stopped bool
	running atomic.Bool
	logger  *slog.Logger
}

// New returns an idle loop. Call Run to start draining it.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues fn. Work posted after the loop stops is dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task{fn: fn})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to finish. Calling Do from work
// already running on the loop deadlocks.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.queue = append(l.queue, task{fn: fn, finished: finished})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// The loop may have run fn just before stopping.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled. Pending work is discarded on
// exit.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		for {
			t, ok := l.pop()
			if !ok {
				break
			}
			l.run(t.fn)
			if t.finished != nil {
				close(t.finished)
			}

			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// OnLoop reports whether queued work is executing right now. Only one
// function runs at a time, so a false result proves the caller is not on the
// loop.
func (l *Loop) OnLoop() bool {
	return l.running.Load()
}

// MustOwn panics unless called from work running on the loop.
func (l *Loop) MustOwn() {
	if !l.OnLoop() {
		panic("uiloop: called outside the ui loop")
	}
}

func (l *Loop) run(fn func()) {
	l.running.Store(true)
	defer func() {
		l.running.Store(false)
		if r := recover(); r != nil {
			l.logger.Error("ui loop task panicked", "panic", r)
		}
	}()
	fn()
}

type task struct {
	fn       func()
	finished chan struct{}
}

func (l *Loop) pop() (task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return task{}, false
	}
	t := l.queue[0]
	l.queue[0] = task{}
	l.queue = l.queue[1:]
	return t, true
}
