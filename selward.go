// Package selward monitors the operating system's text-selection state —
// the text a user has highlighted anywhere on screen — and exposes the most
// recently observed selection through a uniform start/stop/query interface.
//
// Build constraints select the platform observer:
//
//	observer_darwin.go   — macOS via a CGEventTap + Accessibility queries (cgo)
//	observer_windows.go  — Windows via a UI Automation selection-changed event
//	observer_linux.go    — X11 via the XFIXES selection-notify extension
//	observer_stub.go     — everything else; Start reports ErrUnsupported
package selward

import "sync"

// Listener observes the system-wide text selection in the background.
//
// A Listener owns exactly one background observation mechanism per successful
// Start. Stop signals that mechanism to shut down but does not wait for its
// thread to exit; a caller that immediately Starts again may race against the
// previous teardown.
type Listener interface {
	// Start activates the background observer. Calling Start on a listener
	// that is already running is a no-op returning nil; no duplicate hook is
	// ever registered. Setup failures (missing permission, failed
	// subscription) are reported as an *Error with KindInitialization.
	Start() error

	// Stop unregisters the platform subscription and asks the background
	// mechanism to terminate. It is safe to call without a prior Start and
	// safe to call repeatedly; redundant calls return nil.
	Stop() error

	// Selection returns a snapshot of the most recently observed selection.
	// The second return is false until the first successful capture. Stopping
	// the listener does not clear the last-known value. Selection never
	// blocks beyond the shared-state lock.
	Selection() (string, bool)

	// Updates returns a coalescing signal channel that receives after each
	// new capture. The channel is never closed; callers read Selection when
	// it fires.
	Updates() <-chan struct{}

	// Backend returns a human-readable name for the platform observer.
	Backend() string
}

// observer is the platform-specific half of a Listener: it owns the OS hook
// or subscription and the thread (or run loop) it lives on. The subscription
// handle must only be touched from that thread; the capture state is the only
// thing an observer shares with its callers.
type observer interface {
	name() string

	// start provisions the hook and spawns the background mechanism. It
	// blocks the caller only for permission checks and subscription setup.
	// The observer is the sole writer of st for its lifetime.
	start(st *captureState) error

	// stop tears down the subscription and signals the background mechanism
	// to exit. It does not wait for the exit to complete.
	stop() error
}

// NewListener returns a Listener backed by the observer for the current
// target OS. Platform selection happens at build time; on an OS with no
// observer variant the returned listener's Start reports ErrUnsupported.
func NewListener() Listener {
	return &listener{obs: newObserver(), st: newCaptureState()}
}

// listener is the lifecycle state machine shared by every platform variant.
// It serialises Start/Stop transitions and guarantees the one-hook invariant;
// everything platform-specific lives behind the observer.
type listener struct {
	mu      sync.Mutex
	running bool
	obs     observer
	st      *captureState
}

func (l *listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}
	if err := l.obs.start(l.st); err != nil {
		return err
	}
	l.running = true
	return nil
}

func (l *listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return nil
	}
	l.running = false
	return l.obs.stop()
}

func (l *listener) Selection() (string, bool) { return l.st.snapshot() }

func (l *listener) Updates() <-chan struct{} { return l.st.updates() }

func (l *listener) Backend() string { return l.obs.name() }
