package selward

import (
	"errors"
	"fmt"
)

// ErrorKind classifies listener failures. The set is closed: every error the
// package returns carries exactly one of these kinds.
type ErrorKind int

const (
	// KindInitialization is an unrecoverable setup problem: a missing
	// permission, a failed hook registration, a subscription the platform
	// refused. Retrying without a user-driven change (such as granting the
	// permission) will fail again.
	KindInitialization ErrorKind = iota + 1

	// KindMonitoring is a failure during teardown or an in-flight operation
	// after the observer was running.
	KindMonitoring

	// KindUnsupported means the operation has no meaning on this build or
	// platform.
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindInitialization:
		return "initialization"
	case KindMonitoring:
		return "monitoring"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the error type returned by Listener operations.
type Error struct {
	Op   string // operation name, e.g. "start"
	Kind ErrorKind
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e == nil {
		return "selward: error"
	}
	if e.Err != nil {
		return fmt.Sprintf("selward: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("selward: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches two *Errors by kind, so errors.Is(err, ErrUnsupported) style
// comparisons work without identical causes.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// ErrUnsupported is a comparison target for errors.Is; observers return their
// own *Error values carrying KindUnsupported.
var ErrUnsupported = &Error{Kind: KindUnsupported}

func initErr(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInitialization, Err: err}
}

func monitorErr(op string, err error) *Error {
	return &Error{Op: op, Kind: KindMonitoring, Err: err}
}

func unsupportedErr(op string) *Error {
	return &Error{Op: op, Kind: KindUnsupported}
}

// IsInitialization reports whether err is a setup failure.
func IsInitialization(err error) bool { return kindOf(err) == KindInitialization }

// IsMonitoring reports whether err is a capture or teardown failure.
func IsMonitoring(err error) bool { return kindOf(err) == KindMonitoring }

// IsUnsupported reports whether err means the operation has no meaning on
// this platform or build.
func IsUnsupported(err error) bool { return kindOf(err) == KindUnsupported }

func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
