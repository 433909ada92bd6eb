package selward

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		KindInitialization: "initialization",
		KindMonitoring:     "monitoring",
		KindUnsupported:    "unsupported",
		ErrorKind(0):       "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := initErr("start", errors.New("accessibility trust not granted"))
	want := "selward: start: initialization: accessibility trust not granted"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	bare := unsupportedErr("start")
	if bare.Error() != "selward: start: unsupported" {
		t.Fatalf("Error() = %q", bare.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := monitorErr("stop", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
	wrapped := fmt.Errorf("daemon: %w", err)
	var e *Error
	if !errors.As(wrapped, &e) || e.Kind != KindMonitoring {
		t.Fatalf("errors.As through wrapping failed: %v", wrapped)
	}
}

func TestClassifiers(t *testing.T) {
	if !IsInitialization(initErr("start", nil)) {
		t.Error("IsInitialization")
	}
	if !IsMonitoring(monitorErr("stop", nil)) {
		t.Error("IsMonitoring")
	}
	if !IsUnsupported(unsupportedErr("start")) {
		t.Error("IsUnsupported")
	}
	if IsInitialization(errors.New("plain")) || IsMonitoring(nil) || IsUnsupported(errors.New("x")) {
		t.Error("classifier matched a foreign error")
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", unsupportedErr("start"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatal("kind matching through wrapping failed")
	}
	if errors.Is(initErr("start", nil), ErrUnsupported) {
		t.Fatal("kinds must not cross-match")
	}
}
