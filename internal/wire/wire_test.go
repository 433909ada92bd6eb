package wire

import (
	"net"
	"testing"
	"time"

	"github.com/selward/selward/internal/crypto"
	"github.com/selward/selward/internal/message"
)

func roundTrip(t *testing.T, key *[32]byte) {
	t.Helper()
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	wa := New(a, key)
	wb := New(b, key)

	sent := message.NewSelection("hello\nworld", "fake", 7, time.Now())
	go func() { _ = wa.WriteMsg(sent) }()

	got, err := wb.ReadMsg()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != message.TypeSelection || got.Text != "hello\nworld" || got.Seq != 7 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestRoundTripPlain(t *testing.T) { roundTrip(t, nil) }

func TestRoundTripEncrypted(t *testing.T) {
	key, err := crypto.DeriveKey("token")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	roundTrip(t, key)
}

// A multi-line selection must still be exactly one line on the wire.
func TestMultilineSelectionIsOneFrame(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	wa := New(a, nil)
	wb := New(b, nil)

	go func() {
		_ = wa.WriteMsg(message.NewSelection("line1\nline2\nline3", "fake", 1, time.Now()))
		_ = wa.WriteMsg(&message.Message{Type: message.TypePing})
	}()

	first, err := wb.ReadMsg()
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.Text != "line1\nline2\nline3" {
		t.Fatalf("text mangled: %q", first.Text)
	}
	second, err := wb.ReadMsg()
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if second.Type != message.TypePing {
		t.Fatalf("framing broken, got %+v", second)
	}
}

func TestKeyMismatchFails(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ka, _ := crypto.DeriveKey("one")
	kb, _ := crypto.DeriveKey("two")

	wa := New(a, ka)
	wb := New(b, kb)

	go func() { _ = wa.WriteMsg(&message.Message{Type: message.TypePing}) }()
	if _, err := wb.ReadMsg(); err == nil {
		t.Fatal("mismatched keys must not produce a message")
	}
}
