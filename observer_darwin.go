//go:build darwin

package selward

// #cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
// #include <stdlib.h>
// #include "tap_darwin.h"
import "C"

import (
	"errors"
	"log/slog"
	"runtime"
	"runtime/cgo"
	"sync"
	"unsafe"
)

// darwinObserver captures selections through a low-level event tap: on each
// key-up or left-mouse-up (the gestures that end a selection) the tap
// callback queries the focused UI element's AXSelectedText attribute. The
// tap and its CFRunLoop live on one locked OS thread; the callback never
// consumes or alters the tapped event.
//
// Requires accessibility trust. The trust check in start is inherently racy
// against the user granting permission mid-session; a caller seeing the
// initialization failure re-runs Start after the grant.
type darwinObserver struct {
	mu  sync.Mutex
	tap *C.selward_tap // non-nil while installed; stop cancels and drops it
	st  *captureState
}

func newObserver() observer { return &darwinObserver{} }

func (o *darwinObserver) name() string { return "macOS accessibility (event tap)" }

func (o *darwinObserver) start(st *captureState) error {
	if C.selward_ax_trusted() == 0 {
		return initErr("start", errors.New("accessibility trust not granted"))
	}

	o.st = st
	handle := cgo.NewHandle(o)
	tap := C.selward_tap_new(C.uintptr_t(handle))
	if tap == nil {
		handle.Delete()
		return initErr("start", errors.New("event tap allocation failed"))
	}

	ready := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if C.selward_tap_install(tap) != 0 {
			ready <- errors.New("event tap creation failed")
			return
		}
		ready <- nil
		C.selward_tap_run()

		// Run loop stopped; no further callbacks can fire.
		C.selward_tap_free(tap)
		handle.Delete()
		slog.Debug("event tap thread exited")
	}()

	if err := <-ready; err != nil {
		C.selward_tap_free(tap)
		handle.Delete()
		return initErr("start", err)
	}

	o.mu.Lock()
	o.tap = tap
	o.mu.Unlock()
	return nil
}

func (o *darwinObserver) stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tap != nil {
		C.selward_tap_cancel(o.tap)
		o.tap = nil
	}
	return nil
}

//export selwardTapEvent
func selwardTapEvent(h C.uintptr_t, text *C.char) {
	defer C.free(unsafe.Pointer(text))
	o, ok := cgo.Handle(h).Value().(*darwinObserver)
	if !ok {
		return
	}
	o.st.set(C.GoString(text))
}
