package field

import "context"

// Type identifies the concrete input kind a field models. The type determines
// the field's Category and therefore which validation and formatting pipeline
// applies.
type Type string

const (
	TypeText     Type = "text"
	TypeNumber   Type = "number"
	TypeEmail    Type = "email"
	TypePassword Type = "password"
	TypeTextArea Type = "textarea"
	TypeCheckbox Type = "checkbox"
	TypeRadio    Type = "radio"
	TypeFile     Type = "file"
	TypeObject   Type = "object"
	TypeForms    Type = "forms"
)

// Category is the closed variant set every consumer switches over. It is
// derived from Type, never stored independently.
type Category string

const (
	// CategoryInteractive covers text-like inputs that support filter,
	// formatter, and mode handling.
	CategoryInteractive Category = "interactive"
	// CategoryPassive covers checkbox/radio/file inputs with no
	// filter/formatter pipeline.
	CategoryPassive Category = "passive"
	// CategoryObject covers nested structured values with a custom change
	// handler.
	CategoryObject Category = "object"
	// CategoryNestedForms covers fields backed by independently lifecycled
	// child form instances.
	CategoryNestedForms Category = "nestedForms"
)

// Category maps the field type onto its pipeline variant.
func (t Type) Category() Category {
	switch t {
	case TypeCheckbox, TypeRadio, TypeFile:
		return CategoryPassive
	case TypeObject:
		return CategoryObject
	case TypeForms:
		return CategoryNestedForms
	default:
		return CategoryInteractive
	}
}

// Mode selects when an interactive field validates relative to user input.
type Mode string

const (
	ModeChange Mode = "change"
	ModeBlur   Mode = "blur"
)

// Filter transforms a raw input value before validation. Interactive fields
// only; passive/object/nestedForms fields never run filters.
type Filter func(value any) any

// Formatter transforms the raw value into the display value. Interactive
// fields only.
type Formatter func(value any) any

// ValidatorArgs carries everything a custom validator may inspect. Fields is a
// detached, read-only snapshot: operation methods on its records are unbound
// and fail rather than mutate the form. Schedule marks another field for
// deferred re-validation within the current change cycle without touching its
// value.
type ValidatorArgs struct {
	Name     string
	Value    any
	Fields   Fields
	Context  any
	Schedule func(fieldName string)
}

// Outcome is the result union a custom validator returns: Valid, a single
// message, or a list of structured errors. The zero value reads as a plain
// failure that surfaces the field's default invalid message.
type Outcome struct {
	OK      bool
	Message string
	Errors  Errors
}

// Valid reports a passing validation.
func Valid() Outcome { return Outcome{OK: true} }

// Invalid reports a failure with a single message.
func Invalid(message string) Outcome { return Outcome{Message: message} }

// Failed reports a failure carrying structured errors verbatim.
func Failed(errs ...Error) Outcome { return Outcome{Errors: errs} }

// Validator is a synchronous custom validator.
type Validator func(args ValidatorArgs) Outcome

// AsyncValidator is the asynchronous twin. The orchestrator runs it off the
// change cycle; a non-nil error is treated as a single invalid-kind failure
// carrying the error's message.
type AsyncValidator func(ctx context.Context, args ValidatorArgs) (Outcome, error)

// SkipArgs feeds the per-field skip predicate consulted during full-form
// validation passes and scheduled rescans. Fields is detached the same way
// ValidatorArgs.Fields is.
type SkipArgs struct {
	Name    string
	Value   any
	Fields  Fields
	Context any
}

// Dependency declares that a field resets whenever another field changes.
// Either a fixed name list or a predicate, not both.
type Dependency struct {
	Fields []string
	Func   func(trigger string, value any, formContext any) bool
}

// DependsOn declares a dependency on one or more fields by name.
func DependsOn(names ...string) *Dependency {
	return &Dependency{Fields: names}
}

// DependsOnFunc declares a dependency through a predicate evaluated against
// the triggering field's name and new value.
func DependsOnFunc(fn func(trigger string, value any, formContext any) bool) *Dependency {
	return &Dependency{Func: fn}
}

// Matches reports whether a change to trigger should reset the declaring
// field.
func (d *Dependency) Matches(trigger string, value any, formContext any) bool {
	if d == nil {
		return false
	}
	if d.Func != nil {
		return d.Func(trigger, value, formContext)
	}
	for _, name := range d.Fields {
		if name == trigger {
			return true
		}
	}
	return false
}

// Config is the immutable description of a field. It is normalized once at
// construction; consumers treat it as read-only afterwards.
type Config struct {
	Type     Type
	Required bool

	// Interactive-only settings.
	Mode            Mode
	FormatOnBlur    bool
	SubmitFormatted bool
	Filter          Filter
	Formatter       Formatter

	// Built-in constraint bounds. Min/Max apply to numeric values,
	// MinLength/MaxLength to string lengths, Pattern to string shape.
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Pattern   string

	DependsOn      *Dependency
	Validator      Validator
	AsyncValidator AsyncValidator
	Skip           func(args SkipArgs) bool

	// OnChange is the custom change handler for object-category fields.
	OnChange func(name string, value any)

	// AlwaysValidateParent forces the linked parent field to re-validate on
	// every change, not just on error-state transitions.
	AlwaysValidateParent bool

	ErrorMessages map[ErrorType]string
}

// Normalize applies config defaults: required off, change-mode validation for
// interactive fields, no formatting on blur, raw value on submit.
func (c Config) Normalize() Config {
	if c.Type == "" {
		c.Type = TypeText
	}
	if c.Type.Category() == CategoryInteractive && c.Mode == "" {
		c.Mode = ModeChange
	}
	return c
}

// Float returns a pointer to v for use as a Min/Max bound.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v for use as a length bound.
func Int(v int) *int { return &v }
