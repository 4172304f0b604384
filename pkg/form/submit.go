package form

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/field"
)

// Submit validates the form and, only when every field passes, gathers the
// submit-ready values and invokes the handler. Server errors returned by the
// handler merge into the fields as server-kind entries without replacing
// client errors; a clean submission optionally resets the form.
//
// The boolean already returned to Validate's caller is not retroactively
// changed by merged server errors; they surface on the next render.
func (f *Form) Submit(ctx context.Context, handler SubmitHandler) error {
	if handler == nil {
		handler = f.submitHandler
	}
	if handler == nil {
		return ErrNoSubmitHandler
	}

	f.mu.Lock()
	if !f.submitAllowedLocked() {
		f.mu.Unlock()
		return ErrSubmitBlocked
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	ok, err := f.Validate(ctx)
	if err != nil {
		return fmt.Errorf("form %s: submit validation: %w", f.id, err)
	}
	if !ok {
		return ErrInvalid
	}

	values := f.SubmitValues()
	serverErrs, err := handler(ctx, values)
	if err != nil {
		return fmt.Errorf("form %s: submit handler: %w", f.id, err)
	}

	if len(serverErrs) > 0 {
		f.mergeServerErrors(serverErrs)
		return nil
	}

	f.logger.Debug().Str("form", f.id).Msg("submitted")
	if f.resetOnSuccess {
		f.Reset(nil)
	}
	return nil
}

// SubmitValues gathers the values a submit handler receives, honoring each
// field's SubmitFormatted override to choose the formatted display value over
// the clean value.
func (f *Form) SubmitValues() Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(Values, len(f.fields))
	for name, fld := range f.fields {
		if fld.Category() == field.CategoryNestedForms {
			out[name] = childAggregate(fld)
			continue
		}
		if fld.Config.SubmitFormatted && fld.Category() == field.CategoryInteractive && fld.Config.Formatter != nil {
			out[name] = fld.Config.Formatter(fld.RawValue)
			continue
		}
		out[name] = effectiveValue(fld)
	}
	return out
}

// mergeServerErrors converts a handler's error map into server-kind field
// errors, appended to whatever each field already carries. Unknown field
// names are logged and dropped.
func (f *Form) mergeServerErrors(serverErrs ServerErrors) {
	f.mu.Lock()
	next := f.fields.Clone()
	for name, messages := range serverErrs {
		fld, ok := next[name]
		if !ok {
			f.logger.Debug().Str("form", f.id).Str("field", name).
				Msg("server error for unknown field dropped")
			continue
		}
		entries := make([]field.Error, 0, len(messages))
		for _, msg := range messages {
			entries = append(entries, field.NewError(field.ErrorServer, msg))
		}
		next[name] = fld.WithErrorsAppended(entries...)
	}
	f.fields = next
	f.mu.Unlock()

	f.notify(formNotifyKey)
}
