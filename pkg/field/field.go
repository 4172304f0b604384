// Package field models a single named slot of form state: its configuration,
// raw and validated values, structured errors, and per-field bookkeeping. All
// state transitions go through pure copy-on-write transforms so the owning
// orchestrator can detect change by reference identity.
package field

import "context"

// ChildForm is the handle a nested form registers on its parent field. The
// callbacks close over the child's live state; Fields always observes the
// child's current collection, not a snapshot taken at registration.
type ChildForm struct {
	ID        string
	Fields    func() Fields
	Values    func() map[string]any
	Submit    func(ctx context.Context) error
	Validate  func(ctx context.Context) (bool, error)
	SetValues func(values map[string]any) error
}

// Meta holds non-serializable bookkeeping that travels with the field but is
// not part of its value contract.
type Meta struct {
	// ValidationScheduled marks the field for deferred re-validation during
	// the current change cycle. Cleared by the rescan regardless of outcome.
	ValidationScheduled bool
	// ChildForms lists the nested form handles registered on a
	// nestedForms-category field, in registration order.
	ChildForms []ChildForm
}

func (m Meta) clone() Meta {
	out := m
	if len(m.ChildForms) > 0 {
		out.ChildForms = append([]ChildForm(nil), m.ChildForms...)
	}
	return out
}

// Field is the atomic unit of form state.
//
// Invariant: if Errors is non-empty, CleanValue is nil. RawValue and Value
// always reflect the latest input regardless of error state.
type Field struct {
	Name         string
	Config       Config
	DefaultValue any

	// RawValue is the unfiltered value as typed or set.
	RawValue any
	// CleanValue is the post-filter, validated value; nil while erred or
	// while an async validation is pending.
	CleanValue any
	// Value is the display value: RawValue passed through the optional
	// formatter.
	Value any
	// Checked mirrors truthiness for passive checkbox fields so view
	// bindings read a stable boolean.
	Checked bool

	Errors     Errors
	Validating bool
	Meta       Meta

	ops Ops
}

// Category is shorthand for the config type's pipeline variant.
func (f *Field) Category() Category { return f.Config.Type.Category() }

// Invalid reports whether the field carries any error, server ones included.
func (f *Field) Invalid() bool { return len(f.Errors) > 0 }

// clone returns a shallow copy with its own error slice and meta, the base of
// every reducer transform.
func (f *Field) clone() *Field {
	out := *f
	out.Errors = f.Errors.clone()
	out.Meta = f.Meta.clone()
	return &out
}

// Fields maps field name to field. It is the unit of atomic commit: every
// transition replaces the whole collection so consumers can diff snapshots by
// reference.
type Fields map[string]*Field

// Clone returns a new collection sharing the field pointers. Individual fields
// are replaced, never mutated, so a map-level copy is sufficient for
// copy-on-write commits.
func (fs Fields) Clone() Fields {
	out := make(Fields, len(fs))
	for name, f := range fs {
		out[name] = f
	}
	return out
}

// Detached returns a copy of the collection whose fields carry no operation
// bindings. Validators and skip predicates receive detached snapshots: they
// may read any field but a mutation attempt fails with the unbound-operation
// error instead of re-entering the owning form mid-cycle. Slices are shared
// with the source records, which are immutable by convention.
func (fs Fields) Detached() Fields {
	out := make(Fields, len(fs))
	for name, f := range fs {
		c := *f
		c.ops = Ops{}
		out[name] = &c
	}
	return out
}
