package selward

import (
	"sync"
	"time"
)

// captureState is the slot the background observer hands captured text to.
// The observer goroutine is the sole writer; any number of goroutines may
// read concurrently. Writes are totally ordered by the lock and a reader
// always sees a value some write actually produced, never a mix.
type captureState struct {
	mu         sync.RWMutex
	text       string
	ok         bool
	seq        uint64
	capturedAt time.Time

	notify chan struct{}
}

func newCaptureState() *captureState {
	return &captureState{notify: make(chan struct{}, 1)}
}

// set records a newly observed selection and signals watchers. The signal
// channel coalesces: a slow watcher sees at least one signal for any burst
// of writes.
func (s *captureState) set(text string) {
	s.mu.Lock()
	s.text = text
	s.ok = true
	s.seq++
	s.capturedAt = time.Now()
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// snapshot returns the last captured text. ok is false until the first
// capture; stopping the listener does not reset it.
func (s *captureState) snapshot() (text string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text, s.ok
}

// stat returns the capture counter and the time of the last capture.
func (s *captureState) stat() (seq uint64, capturedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq, s.capturedAt
}

func (s *captureState) updates() <-chan struct{} { return s.notify }
