//go:build !darwin && !windows && !linux

package selward

import "runtime"

// stubObserver backs Listener on platforms with no observation mechanism.
// Start always reports the unsupported condition; it never pretends to run.
type stubObserver struct{}

func newObserver() observer { return stubObserver{} }

func (stubObserver) name() string { return "unsupported (" + runtime.GOOS + ")" }

func (stubObserver) start(*captureState) error { return unsupportedErr("start") }

func (stubObserver) stop() error { return nil }
