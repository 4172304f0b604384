package field

// View-facing state snapshots. The core stops at this data contract; turning
// these into element attributes is the view binding's job.

// Props is the view state for interactive fields.
type Props struct {
	Value    any
	Invalid  bool
	Busy     bool
	Required bool
	Mode     Mode
}

// PassiveProps is the view state for checkbox/radio/file fields.
type PassiveProps struct {
	Value    any
	Checked  bool
	Invalid  bool
	Required bool
}

// ObjectProps is the view state for object-category fields.
type ObjectProps struct {
	Value   any
	Invalid bool
}

// NestedFormsProps is the view state for fields hosting child forms.
type NestedFormsProps struct {
	Invalid    bool
	ChildForms int
}

// Props returns the interactive view state.
func (f *Field) Props() Props {
	return Props{
		Value:    f.Value,
		Invalid:  f.Invalid(),
		Busy:     f.Validating,
		Required: f.Config.Required,
		Mode:     f.Config.Mode,
	}
}

// PassiveProps returns the passive view state.
func (f *Field) PassiveProps() PassiveProps {
	return PassiveProps{
		Value:    f.Value,
		Checked:  f.Checked,
		Invalid:  f.Invalid(),
		Required: f.Config.Required,
	}
}

// ObjectProps returns the object view state.
func (f *Field) ObjectProps() ObjectProps {
	return ObjectProps{Value: f.Value, Invalid: f.Invalid()}
}

// ViewState returns the category-appropriate props variant: Props,
// PassiveProps, ObjectProps, or NestedFormsProps.
func (f *Field) ViewState() any {
	switch f.Category() {
	case CategoryPassive:
		return f.PassiveProps()
	case CategoryObject:
		return f.ObjectProps()
	case CategoryNestedForms:
		return NestedFormsProps{Invalid: f.Invalid(), ChildForms: len(f.Meta.ChildForms)}
	default:
		return f.Props()
	}
}
