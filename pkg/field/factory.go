package field

import (
	"errors"
	"fmt"
)

// ErrNoFocusBinding is returned by Focus before the field has been bound to a
// live view handle.
var ErrNoFocusBinding = errors.New("field: no focus binding attached")

// Ops are the operation collaborators the orchestrator supplies at
// construction. The field holds no mutation logic of its own; every operation
// method delegates here.
type Ops struct {
	SetValue    func(name string, value any) error
	PushValue   func(name string, value any) error
	RemoveValue func(name string, index int) error
	ResetValue  func(name string) error
	AddErrors   func(name string, errs ...Error) error
	ClearErrors func(name string) error
	Validate    func(name string) (bool, error)
	Focus       func(name string) error
}

// New constructs the initial field record from a config and default value.
// Interactive fields pass the default through the configured filter to seed
// RawValue and through the formatter to seed the display value; other
// categories take the default verbatim.
func New(name string, cfg Config, defaultValue any, ops Ops) *Field {
	cfg = cfg.Normalize()

	raw := defaultValue
	display := raw
	if cfg.Type.Category() == CategoryInteractive {
		if cfg.Filter != nil {
			raw = cfg.Filter(raw)
			display = raw
		}
		if cfg.Formatter != nil {
			display = cfg.Formatter(raw)
		}
	}

	f := &Field{
		Name:         name,
		Config:       cfg,
		DefaultValue: defaultValue,
		RawValue:     raw,
		CleanValue:   raw,
		Value:        display,
		ops:          ops,
	}
	if cfg.Type == TypeCheckbox {
		f.Checked = truthy(raw)
	}
	return f
}

// SetValue delegates to the orchestrator's value-set cycle.
func (f *Field) SetValue(value any) error {
	if f.ops.SetValue == nil {
		return opsError(f.Name, "SetValue")
	}
	return f.ops.SetValue(f.Name, value)
}

// PushValue appends to an array-valued field.
func (f *Field) PushValue(value any) error {
	if f.ops.PushValue == nil {
		return opsError(f.Name, "PushValue")
	}
	return f.ops.PushValue(f.Name, value)
}

// RemoveValue removes the element at index from an array-valued field.
func (f *Field) RemoveValue(index int) error {
	if f.ops.RemoveValue == nil {
		return opsError(f.Name, "RemoveValue")
	}
	return f.ops.RemoveValue(f.Name, index)
}

// ResetValue restores the field to its default without running validators.
func (f *Field) ResetValue() error {
	if f.ops.ResetValue == nil {
		return opsError(f.Name, "ResetValue")
	}
	return f.ops.ResetValue(f.Name)
}

// AddErrors appends structured errors to the field.
func (f *Field) AddErrors(errs ...Error) error {
	if f.ops.AddErrors == nil {
		return opsError(f.Name, "AddErrors")
	}
	return f.ops.AddErrors(f.Name, errs...)
}

// ClearErrors drops every error on the field.
func (f *Field) ClearErrors() error {
	if f.ops.ClearErrors == nil {
		return opsError(f.Name, "ClearErrors")
	}
	return f.ops.ClearErrors(f.Name)
}

// Validate re-runs the field's validation pipeline against its current value.
func (f *Field) Validate() (bool, error) {
	if f.ops.Validate == nil {
		return false, opsError(f.Name, "Validate")
	}
	return f.ops.Validate(f.Name)
}

// Focus asks the bound view handle to focus the field's input. It fails with
// ErrNoFocusBinding until a binding is attached; attaching one is the view
// layer's contract, not validated here.
func (f *Field) Focus() error {
	if f.ops.Focus == nil {
		return fmt.Errorf("field %q: %w", f.Name, ErrNoFocusBinding)
	}
	return f.ops.Focus(f.Name)
}

func opsError(name, op string) error {
	return fmt.Errorf("field %q: operation %s is not bound to a form", name, op)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}
