package field_test

import (
	"testing"

	"github.com/goliatone/go-formstate/pkg/field"
)

func TestTrimSpace(t *testing.T) {
	filter := field.TrimSpace()
	if got := filter("  hi  "); got != "hi" {
		t.Fatalf("got %q", got)
	}
	if got := filter(42); got != 42 {
		t.Fatalf("non-string must pass through, got %v", got)
	}
}

func TestDigits(t *testing.T) {
	filter := field.Digits()
	if got := filter("+47 (555) 01-23"); got != "475550123" {
		t.Fatalf("got %q", got)
	}
}

func TestLower(t *testing.T) {
	format := field.Lower()
	if got := format("User@Example.COM"); got != "user@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeHTMLStripsMarkup(t *testing.T) {
	format := field.SanitizeHTML()
	if got := format(`<script>alert(1)</script>hello <b>world</b>`); got != "hello world" {
		t.Fatalf("got %q", got)
	}
	if got := format(nil); got != nil {
		t.Fatalf("non-string must pass through, got %v", got)
	}
}

func TestSanitizeRichTextKeepsSafeMarkup(t *testing.T) {
	format := field.SanitizeRichText()
	got := format(`<b>bold</b><script>alert(1)</script>`)
	if got != "<b>bold</b>" {
		t.Fatalf("got %q", got)
	}
}
