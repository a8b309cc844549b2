// Package poll drives reconciliation passes from a single event loop.
//
// One goroutine owns the timeline: scheduled ticks, triggered ticks and
// queued mutations all run there, one at a time. After every tick the next
// one is scheduled an interval later.
package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/logging"
)

// DefaultInterval is the delay between two ticks.
const DefaultInterval = time.Second

var (
	// ErrStopped is returned by Do once the loop has exited.
	ErrStopped = errors.New("poll: loop stopped")
	// ErrRunning is returned by Run when the loop was already started.
	ErrRunning = errors.New("poll: loop already started")
	// ErrBusy is returned by Reconcile while another pass holds the guard.
	ErrBusy = errors.New("poll: reconciliation already in flight")
)

// TickFunc runs one reconciliation pass.
type TickFunc func(ctx context.Context) error

// Task is a mutation executed on the loop goroutine.
type Task func(ctx context.Context) error

type job struct {
	ctx    context.Context
	run    Task
	result chan error
}

// Loop is the single-threaded scheduler.
type Loop struct {
	tick  TickFunc
	guard *Guard

	interval atomic.Int64
	started  atomic.Bool

	jobs    chan job
	trigger chan struct{}
	reset   chan struct{}
	done    chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval.Store(int64(d))
		}
	}
}

// WithGuard shares g with other components, such as preference toggles.
func WithGuard(g *Guard) Option {
	return func(l *Loop) {
		if g != nil {
			l.guard = g
		}
	}
}

// New creates a loop that calls tick on every scheduled or triggered tick.
func New(tick TickFunc, opts ...Option) *Loop {
	l := &Loop{
		tick:    tick,
		guard:   &Guard{},
		jobs:    make(chan job),
		trigger: make(chan struct{}, 1),
		reset:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	l.interval.Store(int64(DefaultInterval))
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Guard returns the loop's in-flight flag.
func (l *Loop) Guard() *Guard {
	return l.guard
}

// Interval returns the current tick period.
func (l *Loop) Interval() time.Duration {
	return time.Duration(l.interval.Load())
}

// SetInterval changes the tick period. The pending tick is rescheduled.
func (l *Loop) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	l.interval.Store(int64(d))
	select {
	case l.reset <- struct{}{}:
	default:
	}
}

// Trigger requests an immediate tick. Requests made while one is already
// pending are coalesced.
func (l *Loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run owns the loop until ctx is cancelled or a tick fails with a
// connectivity or protocol error. Cancellation returns nil; the fatal error
// is returned otherwise. Run may only be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)

	timer := time.NewTimer(l.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("poll loop stopped")
			return nil

		case j := <-l.jobs:
			j.result <- j.run(j.ctx)

		case <-l.reset:
			timer.Reset(l.Interval())

		case <-l.trigger:
			timer.Stop()
			if err := l.onTick(ctx); err != nil {
				return err
			}
			timer.Reset(l.Interval())

		case <-timer.C:
			if err := l.onTick(ctx); err != nil {
				return err
			}
			timer.Reset(l.Interval())
		}
	}
}

// onTick runs a scheduled pass. Only fatal errors are returned; anything
// else is logged and the loop keeps going.
func (l *Loop) onTick(ctx context.Context) error {
	err := l.Reconcile(ctx)
	switch {
	case err == nil, errors.Is(err, ErrBusy):
		return nil
	case ctx.Err() != nil:
		return nil
	case api.IsFatal(err):
		logging.Error("polling stopped", zap.Error(err))
		return err
	default:
		logging.Warn("reconciliation pass failed", zap.Error(err))
		return nil
	}
}

// Reconcile runs one pass under the guard. Tasks call it to re-sync right
// after a mutation; errors are returned to the caller and never stop the
// loop.
func (l *Loop) Reconcile(ctx context.Context) error {
	if !l.guard.TryLock() {
		return ErrBusy
	}
	defer l.guard.Unlock()
	return l.tick(ctx)
}

// Do runs task on the loop goroutine and returns its error. A failing task
// does not stop the loop. The task receives ctx. If ctx ends while the task
// is queued Do returns ctx.Err(); once the task started Do waits for it.
func (l *Loop) Do(ctx context.Context, task Task) error {
	j := job{ctx: ctx, run: task, result: make(chan error, 1)}
	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
	return <-j.result
}
