// Package message defines the selward daemon protocol.
//
// All messages are newline-delimited JSON, one message per line. Selection
// text rides as a plain JSON string — the encoder escapes embedded newlines,
// so the one-line framing is never broken by multi-line selections.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	// TypeSelection carries a selection snapshot: pushed to subscribers on
	// each capture, and returned in response to a GET.
	TypeSelection Type = "SELECTION"
	// TypeGet asks the daemon for the current selection snapshot.
	TypeGet Type = "GET"
	// TypeWatch subscribes the connection to a stream of SELECTION messages.
	TypeWatch Type = "WATCH"
	// TypeStatus asks the daemon for its status.
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypePing           Type = "PING"
	TypePong           Type = "PONG"
	TypeError          Type = "ERROR"
)

// Status carries daemon metadata in STATUS_RESPONSE messages.
type Status struct {
	Version     string    `json:"version"`
	Backend     string    `json:"backend"`
	StartedAt   time.Time `json:"started_at"`
	Captures    uint64    `json:"captures"`
	Subscribers int       `json:"subscribers"`
	LastCapture time.Time `json:"last_capture,omitzero"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// SELECTION
	Text       string    `json:"text,omitempty"`
	Present    bool      `json:"present,omitempty"` // false until first capture
	Source     string    `json:"source,omitempty"`  // platform backend name
	Seq        uint64    `json:"seq,omitempty"`
	CapturedAt time.Time `json:"captured_at,omitzero"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// NewSelection builds a SELECTION message for a captured snapshot.
func NewSelection(text, source string, seq uint64, capturedAt time.Time) *Message {
	return &Message{
		Type:       TypeSelection,
		Text:       text,
		Present:    true,
		Source:     source,
		Seq:        seq,
		CapturedAt: capturedAt,
	}
}

// NewEmptySelection builds the SELECTION reply for a GET before anything has
// been captured.
func NewEmptySelection(source string) *Message {
	return &Message{Type: TypeSelection, Source: source}
}

// NewError builds an ERROR message.
func NewError(err error) *Message {
	return &Message{Type: TypeError, Error: err.Error()}
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}
