package field

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Stock filters and formatters for common interactive-field configurations.
// All of them pass non-string values through untouched.

// TrimSpace returns a filter that strips leading and trailing whitespace.
func TrimSpace() Filter {
	return func(value any) any {
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s)
		}
		return value
	}
}

// Digits returns a filter that keeps only decimal digits, useful for phone or
// numeric inputs fed by free-form typing.
func Digits() Filter {
	return func(value any) any {
		s, ok := value.(string)
		if !ok {
			return value
		}
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
}

// Lower returns a formatter that lowercases the display value, common for
// email fields.
func Lower() Formatter {
	return func(value any) any {
		if s, ok := value.(string); ok {
			return strings.ToLower(s)
		}
		return value
	}
}

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

// SanitizeHTML returns a formatter that strips all markup from string display
// values, so text pasted with tags never reaches the view layer raw.
func SanitizeHTML() Formatter {
	return func(value any) any {
		s, ok := value.(string)
		if !ok {
			return value
		}
		strictPolicyOnce.Do(func() {
			strictPolicy = bluemonday.StrictPolicy()
		})
		return strings.TrimSpace(strictPolicy.Sanitize(s))
	}
}

// SanitizeRichText returns a formatter that keeps the markup allowed for
// user-generated content while removing anything executable.
func SanitizeRichText() Formatter {
	return func(value any) any {
		s, ok := value.(string)
		if !ok {
			return value
		}
		ugcPolicyOnce.Do(func() {
			ugcPolicy = bluemonday.UGCPolicy()
		})
		return strings.TrimSpace(ugcPolicy.Sanitize(s))
	}
}
