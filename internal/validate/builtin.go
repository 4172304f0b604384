package validate

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/goliatone/go-formstate/pkg/field"
)

// Built-in validators run as one stage: each may append zero or more errors
// and never short-circuits its siblings. The required check applies to every
// field; bound, length, and pattern checks apply to interactive fields only.

func runBuiltins(cfg field.Config, value any) field.Errors {
	var errs field.Errors
	errs = append(errs, requiredCheck(cfg, value)...)
	if cfg.Type.Category() == field.CategoryInteractive {
		errs = append(errs, boundsCheck(cfg, value)...)
		errs = append(errs, lengthCheck(cfg, value)...)
		errs = append(errs, patternCheck(cfg, value)...)
	}
	return errs
}

func requiredCheck(cfg field.Config, value any) field.Errors {
	if !cfg.Required || !Empty(value) {
		return nil
	}
	return field.Errors{field.NewError(field.ErrorRequired, field.DefaultMessage(cfg, field.ErrorRequired))}
}

func boundsCheck(cfg field.Config, value any) field.Errors {
	if cfg.Min == nil && cfg.Max == nil {
		return nil
	}
	if Empty(value) {
		return nil
	}
	num, ok := Float(value)
	if !ok {
		return nil
	}

	belowMin := cfg.Min != nil && num < *cfg.Min
	aboveMax := cfg.Max != nil && num > *cfg.Max
	if !belowMin && !aboveMax {
		return nil
	}

	// With both bounds configured the violation reads as a window miss.
	if cfg.Min != nil && cfg.Max != nil {
		return field.Errors{field.NewError(field.ErrorMinMax,
			boundMessage(cfg, field.ErrorMinMax, fmt.Sprintf("must be between %v and %v", *cfg.Min, *cfg.Max)))}
	}
	if belowMin {
		return field.Errors{field.NewError(field.ErrorMin,
			boundMessage(cfg, field.ErrorMin, fmt.Sprintf("must be at least %v", *cfg.Min)))}
	}
	return field.Errors{field.NewError(field.ErrorMax,
		boundMessage(cfg, field.ErrorMax, fmt.Sprintf("must be at most %v", *cfg.Max)))}
}

func lengthCheck(cfg field.Config, value any) field.Errors {
	if cfg.MinLength == nil && cfg.MaxLength == nil {
		return nil
	}
	s, ok := String(value)
	if !ok || s == "" {
		return nil
	}
	length := len([]rune(s))

	tooShort := cfg.MinLength != nil && length < *cfg.MinLength
	tooLong := cfg.MaxLength != nil && length > *cfg.MaxLength
	if !tooShort && !tooLong {
		return nil
	}

	if cfg.MinLength != nil && cfg.MaxLength != nil {
		return field.Errors{field.NewError(field.ErrorMinMax,
			boundMessage(cfg, field.ErrorMinMax, fmt.Sprintf("must be between %d and %d characters", *cfg.MinLength, *cfg.MaxLength)))}
	}
	if tooShort {
		return field.Errors{field.NewError(field.ErrorMin,
			boundMessage(cfg, field.ErrorMin, fmt.Sprintf("must be at least %d characters", *cfg.MinLength)))}
	}
	return field.Errors{field.NewError(field.ErrorMax,
		boundMessage(cfg, field.ErrorMax, fmt.Sprintf("must be at most %d characters", *cfg.MaxLength)))}
}

// boundMessage prefers a configured override and falls back to the computed
// message rather than the generic default, so bound errors stay specific.
func boundMessage(cfg field.Config, kind field.ErrorType, computed string) string {
	if msg, ok := cfg.ErrorMessages[kind]; ok && msg != "" {
		return msg
	}
	return computed
}

var patternCache sync.Map // pattern string -> *regexp.Regexp

func patternCheck(cfg field.Config, value any) field.Errors {
	if cfg.Pattern == "" {
		return nil
	}
	s, ok := String(value)
	if !ok || s == "" {
		return nil
	}

	var re *regexp.Regexp
	if cached, ok := patternCache.Load(cfg.Pattern); ok {
		re = cached.(*regexp.Regexp)
	} else {
		compiled, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			// A bad pattern is a config error; surface it as a failed match.
			return field.Errors{field.NewError(field.ErrorInvalid,
				fmt.Sprintf("invalid pattern %q: %v", cfg.Pattern, err))}
		}
		patternCache.Store(cfg.Pattern, compiled)
		re = compiled
	}

	if re.MatchString(s) {
		return nil
	}
	return field.Errors{field.NewError(field.ErrorInvalid, field.DefaultMessage(cfg, field.ErrorInvalid))}
}
