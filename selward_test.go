package selward

import (
	"errors"
	"testing"
	"time"
)

// fakeObserver stands in for a platform observer in contract tests. It
// records lifecycle transitions and lets the test play the role of the
// background capture mechanism.
type fakeObserver struct {
	starts   int
	stops    int
	startErr error
	st       *captureState
}

func (f *fakeObserver) name() string { return "fake" }

func (f *fakeObserver) start(st *captureState) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	f.st = st
	return nil
}

func (f *fakeObserver) stop() error {
	f.stops++
	return nil
}

func newFakeListener(obs observer) *listener {
	return &listener{obs: obs, st: newCaptureState()}
}

func TestSelectionBeforeStart(t *testing.T) {
	l := newFakeListener(&fakeObserver{})
	if text, ok := l.Selection(); ok {
		t.Fatalf("expected no selection before start, got %q", text)
	}
}

func TestStopWithoutStart(t *testing.T) {
	obs := &fakeObserver{}
	l := newFakeListener(obs)
	if err := l.Stop(); err != nil {
		t.Fatalf("stop without start: %v", err)
	}
	if obs.stops != 0 {
		t.Fatalf("observer stop called %d times, want 0", obs.stops)
	}
}

func TestStopTwice(t *testing.T) {
	obs := &fakeObserver{}
	l := newFakeListener(obs)
	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if obs.stops != 1 {
		t.Fatalf("observer stop called %d times, want 1", obs.stops)
	}
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	obs := &fakeObserver{}
	l := newFakeListener(obs)
	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if obs.starts != 1 {
		t.Fatalf("observer started %d times, want 1 (no duplicate hook)", obs.starts)
	}
}

func TestStartFailurePropagates(t *testing.T) {
	obs := &fakeObserver{startErr: initErr("start", errors.New("permission denied"))}
	l := newFakeListener(obs)
	err := l.Start()
	if err == nil {
		t.Fatal("expected start to fail")
	}
	if !IsInitialization(err) {
		t.Fatalf("expected initialization failure, got %v", err)
	}
	// A failed start leaves the listener stopped.
	if err := l.Stop(); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
	if obs.stops != 0 {
		t.Fatalf("observer stop called after failed start")
	}
}

func TestStartUnsupported(t *testing.T) {
	obs := &fakeObserver{startErr: unsupportedErr("start")}
	l := newFakeListener(obs)
	err := l.Start()
	if err == nil {
		t.Fatal("unsupported start must not silently succeed")
	}
	if !IsUnsupported(err) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("errors.Is(err, ErrUnsupported) = false for %v", err)
	}
}

func TestCaptureAndRetentionAcrossStop(t *testing.T) {
	obs := &fakeObserver{}
	l := newFakeListener(obs)
	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	obs.st.set("hello world")
	text, ok := l.Selection()
	if !ok || text != "hello world" {
		t.Fatalf("Selection() = %q, %v; want %q, true", text, ok, "hello world")
	}

	if err := l.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Stopping retains the last-known value.
	text, ok = l.Selection()
	if !ok || text != "hello world" {
		t.Fatalf("after stop Selection() = %q, %v; want retained value", text, ok)
	}
}

func TestUpdatesSignal(t *testing.T) {
	obs := &fakeObserver{}
	l := newFakeListener(obs)
	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A burst of writes coalesces into at least one signal.
	obs.st.set("one")
	obs.st.set("two")

	select {
	case <-l.Updates():
	case <-time.After(time.Second):
		t.Fatal("no update signal")
	}
	if text, _ := l.Selection(); text != "two" {
		t.Fatalf("Selection() = %q, want %q", text, "two")
	}
}

func TestRestartAfterStop(t *testing.T) {
	obs := &fakeObserver{}
	l := newFakeListener(obs)
	for i := 0; i < 3; i++ {
		if err := l.Start(); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if err := l.Stop(); err != nil {
			t.Fatalf("stop %d: %v", i, err)
		}
	}
	if obs.starts != 3 || obs.stops != 3 {
		t.Fatalf("starts=%d stops=%d, want 3/3", obs.starts, obs.stops)
	}
}

func TestNewListenerBackendName(t *testing.T) {
	l := NewListener()
	if l.Backend() == "" {
		t.Fatal("backend name must not be empty")
	}
	if _, ok := l.Selection(); ok {
		t.Fatal("fresh listener must report no selection")
	}
}
