package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	t.Parallel()

	tp := NewTextProcessor(zap.NewNop())

	if got := tp.TruncateText("short", 100); got != "short" {
		t.Errorf("got %q, want %q", got, "short")
	}
	if got := tp.TruncateText("unlimited", 0); got != "unlimited" {
		t.Errorf("got %q, want %q", got, "unlimited")
	}
	if got := tp.TruncateText(strings.Repeat("x", 50), 10); len(got) != 10 {
		t.Errorf("length: got %d, want 10", len(got))
	}
}

func TestTruncateText_KeepsValidUTF8(t *testing.T) {
	t.Parallel()

	tp := NewTextProcessor(zap.NewNop())

	// "é" is two bytes; cutting at 5 would split it.
	got := tp.TruncateText("abcdé", 5)
	if !utf8.ValidString(got) {
		t.Errorf("truncated text is not valid UTF-8: %q", got)
	}
	if got != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestSanitizeUTF8(t *testing.T) {
	t.Parallel()

	tp := NewTextProcessor(zap.NewNop())

	if got := tp.SanitizeUTF8("clean"); got != "clean" {
		t.Errorf("got %q, want %q", got, "clean")
	}

	got := tp.SanitizeUTF8("bad\xffbyte")
	if !utf8.ValidString(got) {
		t.Errorf("sanitized text is not valid UTF-8: %q", got)
	}
	if got != "badbyte" {
		t.Errorf("got %q, want %q", got, "badbyte")
	}
}
