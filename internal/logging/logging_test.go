package logging

import (
	"log/slog"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"text":     FormatText,
		"tint":     FormatText,
		"human":    FormatText,
		"json":     FormatJSON,
		"JSON":     FormatJSON,
		"auto":     FormatAuto,
		"anything": FormatAuto,
		"":         FormatAuto,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug {
		t.Error("debug")
	}
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Error("warn")
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Error("unknown levels default to info")
	}
}
