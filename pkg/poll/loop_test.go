package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tableflip.dev/syncpanel/pkg/api"
)

func runLoop(t *testing.T, l *Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, errCh
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestLoopTicksRepeatedly(t *testing.T) {
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		ticks.Add(1)
		return nil
	}, WithInterval(5*time.Millisecond))

	cancel, errCh := runLoop(t, l)
	waitFor(t, "three ticks", func() bool { return ticks.Load() >= 3 })
	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if l.Guard().Locked() {
		t.Fatalf("guard left held after shutdown")
	}
}

func TestLoopStopsOnFatalError(t *testing.T) {
	failure := &api.ConnectivityError{Method: "get_folders", Err: errors.New("connection refused")}
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		if ticks.Add(1) == 2 {
			return failure
		}
		return nil
	}, WithInterval(5*time.Millisecond))

	_, errCh := runLoop(t, l)
	select {
	case err := <-errCh:
		if !errors.Is(err, failure) {
			t.Fatalf("expected connectivity error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != 2 {
		t.Fatalf("expected no ticks after the failure, got %d", got)
	}
	if l.Guard().Locked() {
		t.Fatalf("guard left held after fatal tick")
	}
	if err := l.Do(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestLoopSurvivesNonFatalError(t *testing.T) {
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		ticks.Add(1)
		return &api.DomainError{Method: "get_folders", Code: 1, Message: "busy"}
	}, WithInterval(5*time.Millisecond))

	cancel, errCh := runLoop(t, l)
	waitFor(t, "ticks after a domain error", func() bool { return ticks.Load() >= 3 })
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestLoopDoSerializesWithTicks(t *testing.T) {
	var inFlight atomic.Int32
	var overlap atomic.Bool
	busy := func() {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
	}
	l := New(func(context.Context) error {
		busy()
		return nil
	}, WithInterval(time.Millisecond))

	cancel, errCh := runLoop(t, l)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if err := l.Do(ctx, func(context.Context) error {
			busy()
			return nil
		}); err != nil {
			t.Fatalf("do: %v", err)
		}
	}
	cancel()
	<-errCh

	if overlap.Load() {
		t.Fatalf("a task overlapped with a tick")
	}
}

func TestLoopDoReturnsTaskErrorAndKeepsRunning(t *testing.T) {
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		ticks.Add(1)
		return nil
	}, WithInterval(5*time.Millisecond))

	cancel, errCh := runLoop(t, l)
	failure := &api.ConnectivityError{Method: "add_folder", Err: errors.New("reset")}
	if err := l.Do(context.Background(), func(context.Context) error { return failure }); !errors.Is(err, failure) {
		t.Fatalf("expected task error, got %v", err)
	}

	after := ticks.Load()
	waitFor(t, "ticks after a failed task", func() bool { return ticks.Load() > after })
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestLoopReconcileFromTask(t *testing.T) {
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		ticks.Add(1)
		return nil
	}, WithInterval(time.Hour))

	_, _ = runLoop(t, l)
	err := l.Do(context.Background(), func(ctx context.Context) error {
		return l.Reconcile(ctx)
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if ticks.Load() != 1 {
		t.Fatalf("expected one pass, got %d", ticks.Load())
	}
}

func TestLoopReconcileBusyWhileGuardHeld(t *testing.T) {
	guard := &Guard{}
	l := New(func(context.Context) error { return nil }, WithGuard(guard))
	guard.TryLock()
	if err := l.Reconcile(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	guard.Unlock()
	if err := l.Reconcile(context.Background()); err != nil {
		t.Fatalf("expected pass to run, got %v", err)
	}
}

func TestLoopTrigger(t *testing.T) {
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		ticks.Add(1)
		return nil
	}, WithInterval(time.Hour))

	_, _ = runLoop(t, l)
	l.Trigger()
	waitFor(t, "triggered tick", func() bool { return ticks.Load() == 1 })
}

func TestLoopSetInterval(t *testing.T) {
	var ticks atomic.Int32
	l := New(func(context.Context) error {
		ticks.Add(1)
		return nil
	}, WithInterval(time.Hour))

	_, _ = runLoop(t, l)
	l.SetInterval(5 * time.Millisecond)
	waitFor(t, "ticks at the new interval", func() bool { return ticks.Load() >= 2 })
	if got := l.Interval(); got != 5*time.Millisecond {
		t.Fatalf("unexpected interval %v", got)
	}
}

func TestLoopRunOnce(t *testing.T) {
	l := New(func(context.Context) error { return nil }, WithInterval(time.Hour))
	cancel, errCh := runLoop(t, l)
	waitFor(t, "loop start", func() bool { return l.started.Load() })

	if err := l.Run(context.Background()); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", err)
	}
	cancel()
	<-errCh
	<-l.Done()
}

func TestGuard(t *testing.T) {
	var g Guard
	if g.Locked() {
		t.Fatalf("zero guard should be unlocked")
	}
	if !g.TryLock() {
		t.Fatalf("first TryLock should succeed")
	}
	if g.TryLock() {
		t.Fatalf("second TryLock should fail")
	}
	if !g.Locked() {
		t.Fatalf("guard should report locked")
	}
	g.Unlock()
	if g.Locked() || !g.TryLock() {
		t.Fatalf("guard should be reusable after Unlock")
	}
}
