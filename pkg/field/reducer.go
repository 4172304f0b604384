package field

// Pure state transforms. Each returns a fresh Field and never mutates its
// receiver; the orchestrator relies on reference identity to detect change.

// WithErrorsCleared drops every error. CleanValue is reset to nil because a
// cleared field has not been re-validated yet.
func (f *Field) WithErrorsCleared() *Field {
	out := f.clone()
	out.Errors = nil
	out.CleanValue = nil
	return out
}

// WithErrors replaces the error list. Any error present nulls CleanValue.
func (f *Field) WithErrors(errs Errors) *Field {
	out := f.clone()
	out.Errors = errs.clone()
	if len(out.Errors) > 0 {
		out.CleanValue = nil
	}
	return out
}

// WithErrorsAppended merges additional errors onto the existing list.
func (f *Field) WithErrorsAppended(errs ...Error) *Field {
	if len(errs) == 0 {
		return f.clone()
	}
	merged := append(f.Errors.clone(), errs...)
	return f.WithErrors(merged)
}

// ResetToDefault clears errors and restores raw, clean, and display values
// from the default, re-applying filter and formatter the way the factory does.
func (f *Field) ResetToDefault() *Field {
	out := f.clone()
	out.Errors = nil
	out.Validating = false
	out.Meta.ValidationScheduled = false

	raw := f.DefaultValue
	display := raw
	if f.Category() == CategoryInteractive {
		if f.Config.Filter != nil {
			raw = f.Config.Filter(raw)
			display = raw
		}
		if f.Config.Formatter != nil {
			display = f.Config.Formatter(raw)
		}
	}
	out.RawValue = raw
	out.Value = display
	out.CleanValue = raw
	if f.Config.Type == TypeCheckbox {
		out.Checked = truthy(raw)
	}
	return out
}

// ResetToZero clears errors and blanks every value slot.
func (f *Field) ResetToZero() *Field {
	out := f.clone()
	out.Errors = nil
	out.Validating = false
	out.Meta.ValidationScheduled = false
	out.RawValue = nil
	out.CleanValue = nil
	out.Value = nil
	out.Checked = false
	return out
}

// WithValue sets RawValue and recomputes the display value. The formatter is
// applied only for interactive fields and only when format is true; passive
// checkbox fields update their checked mirror instead.
func (f *Field) WithValue(value any, format bool) *Field {
	out := f.clone()
	out.RawValue = value
	out.Value = value
	if f.Category() == CategoryInteractive && format && f.Config.Formatter != nil {
		out.Value = f.Config.Formatter(value)
	}
	if f.Config.Type == TypeCheckbox {
		out.Checked = truthy(value)
	}
	return out
}

// WithClean records the validated value. Callers must only apply it after a
// pass that produced no errors.
func (f *Field) WithClean(value any) *Field {
	out := f.clone()
	out.CleanValue = value
	return out
}

// WithValidating toggles the async-pending flag.
func (f *Field) WithValidating(validating bool) *Field {
	out := f.clone()
	out.Validating = validating
	return out
}

// WithScheduled toggles the deferred-validation mark.
func (f *Field) WithScheduled(scheduled bool) *Field {
	out := f.clone()
	out.Meta.ValidationScheduled = scheduled
	return out
}

// WithChildForms replaces the registered child-form handles.
func (f *Field) WithChildForms(children []ChildForm) *Field {
	out := f.clone()
	out.Meta.ChildForms = children
	return out
}
