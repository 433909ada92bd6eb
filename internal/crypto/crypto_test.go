package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	a, err := DeriveKey("token")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := DeriveKey("token")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if *a != *b {
		t.Fatal("same token must derive the same key")
	}
	c, _ := DeriveKey("other")
	if *a == *c {
		t.Fatal("different tokens must derive different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key, _ := DeriveKey("token")
	plain := []byte(`{"type":"SELECTION","text":"hello world"}`)

	ct, err := Seal(plain, key)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(ct, plain) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := Open(ct, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestOpenWrongKey(t *testing.T) {
	key, _ := DeriveKey("token")
	wrong, _ := DeriveKey("not-the-token")

	ct, err := Seal([]byte("secret"), key)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(ct, wrong); err == nil {
		t.Fatal("open with wrong key must fail")
	}
}

func TestOpenTruncated(t *testing.T) {
	key, _ := DeriveKey("token")
	if _, err := Open([]byte("short"), key); err == nil {
		t.Fatal("open of truncated ciphertext must fail")
	}
}
