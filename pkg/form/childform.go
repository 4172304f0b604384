package form

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstate/pkg/field"
)

// RegisterChildForm attaches a child-form handle to a nestedForms field.
// Registration happens when the child mounts; the parent field's value is
// derived from registered children from then on.
func (f *Form) RegisterChildForm(fieldName string, child field.ChildForm) error {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}

	f.mu.Lock()
	fld, ok := f.fields[fieldName]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, fieldName)
	}
	if fld.Category() != field.CategoryNestedForms {
		f.mu.Unlock()
		return fmt.Errorf("form %s: field %q does not host child forms", f.id, fieldName)
	}
	children := append(append([]field.ChildForm(nil), fld.Meta.ChildForms...), child)
	next := f.fields.Clone()
	next[fieldName] = fld.WithChildForms(children)
	f.fields = next
	f.logger.Debug().Str("form", f.id).Str("field", fieldName).
		Str("child", child.ID).Msg("child form registered")
	f.mu.Unlock()

	f.notify(fieldName)
	return nil
}

// UnregisterChildForm detaches a child-form handle on unmount. When the last
// child leaves, the field keeps the final aggregate as its stored value so
// reads still answer while no child is mounted.
func (f *Form) UnregisterChildForm(fieldName, childID string) error {
	f.mu.Lock()
	fld, ok := f.fields[fieldName]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, fieldName)
	}

	var remaining []field.ChildForm
	for _, child := range fld.Meta.ChildForms {
		if child.ID != childID {
			remaining = append(remaining, child)
		}
	}

	next := f.fields.Clone()
	updated := fld
	if len(remaining) == 0 && len(fld.Meta.ChildForms) > 0 {
		// Capture the last known aggregate before the handles disappear.
		updated = fld.WithValue(childAggregate(fld), false)
	}
	next[fieldName] = updated.WithChildForms(remaining)
	f.fields = next
	f.logger.Debug().Str("form", f.id).Str("field", fieldName).
		Str("child", childID).Msg("child form unregistered")
	f.mu.Unlock()

	f.notify(fieldName)
	return nil
}

// ChildForms returns the handles currently registered on a field.
func (f *Form) ChildForms(fieldName string) []field.ChildForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	fld, ok := f.fields[fieldName]
	if !ok {
		return nil
	}
	return append([]field.ChildForm(nil), fld.Meta.ChildForms...)
}

// AsChild packages this form as a child-form handle for registration on a
// parent field. The callbacks observe the form's live state.
func (f *Form) AsChild() field.ChildForm {
	return field.ChildForm{
		ID:     f.id,
		Fields: f.Fields,
		Values: func() map[string]any { return f.Values() },
		Submit: func(ctx context.Context) error { return f.Submit(ctx, nil) },
		Validate: func(ctx context.Context) (bool, error) {
			return f.Validate(ctx)
		},
		SetValues: func(values map[string]any) error { return f.SetValues(values) },
	}
}

// LinkChild registers child on the parent's nestedForms field and connects
// the reverse link so the child's error-state transitions schedule the
// parent field's validation after each cycle.
func LinkChild(parent *Form, fieldName string, child *Form) error {
	parentField, ok := parent.Field(fieldName)
	if !ok {
		return fmt.Errorf("form %s: unknown field %q", parent.id, fieldName)
	}
	if err := parent.RegisterChildForm(fieldName, child.AsChild()); err != nil {
		return err
	}

	child.mu.Lock()
	child.parent = &parentLink{
		fieldName: fieldName,
		always:    parentField.Config.AlwaysValidateParent,
		validate: func() {
			_, _ = parent.ValidateField(context.Background(), fieldName)
		},
	}
	child.mu.Unlock()
	return nil
}

// UnlinkChild severs both directions of a parent/child link.
func UnlinkChild(parent *Form, fieldName string, child *Form) error {
	child.mu.Lock()
	child.parent = nil
	child.mu.Unlock()
	return parent.UnregisterChildForm(fieldName, child.id)
}

// childAggregate derives a nestedForms field's effective value: one value map
// per registered child, or the last stored value while no child is mounted.
func childAggregate(fld *field.Field) any {
	children := fld.Meta.ChildForms
	if len(children) == 0 {
		return fld.RawValue
	}
	out := make([]map[string]any, 0, len(children))
	for _, child := range children {
		if child.Values == nil {
			continue
		}
		out = append(out, child.Values())
	}
	return out
}
