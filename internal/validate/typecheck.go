package validate

import (
	"regexp"

	"github.com/goliatone/go-formstate/pkg/field"
)

// Type validators give a per-type opinion on value shape. A nil return means
// "no opinion"; object and nestedForms categories skip this stage entirely.

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func typeValidator(cfg field.Config, value any) *field.Error {
	if Empty(value) {
		// Missing values are the required check's concern.
		return nil
	}
	switch cfg.Type {
	case field.TypeNumber:
		if _, ok := Float(value); !ok {
			err := field.NewError(field.ErrorInvalid, field.DefaultMessage(cfg, field.ErrorInvalid))
			return &err
		}
	case field.TypeEmail:
		s, ok := String(value)
		if !ok || !emailShape.MatchString(s) {
			err := field.NewError(field.ErrorInvalid, field.DefaultMessage(cfg, field.ErrorInvalid))
			return &err
		}
	}
	return nil
}
