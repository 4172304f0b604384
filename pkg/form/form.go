// Package form implements the form orchestrator: it owns the field
// collection, mediates value-set, validation, submit, and reset cycles, and
// manages child-form linkage. The collection is copy-on-write; every
// transition commits a whole new snapshot so consumers diff by reference.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/internal/resolve"
	"github.com/goliatone/go-formstate/internal/validate"
	"github.com/goliatone/go-formstate/pkg/field"
)

var (
	// ErrInvalid reports that a submission stopped because validation failed.
	ErrInvalid = errors.New("form: validation failed")
	// ErrNoSubmitHandler reports a Submit call with neither an explicit
	// handler nor a configured one.
	ErrNoSubmitHandler = errors.New("form: submit handler is required")
	// ErrSubmitBlocked reports a Submit attempt while validations are still
	// in flight or another submission is running.
	ErrSubmitBlocked = errors.New("form: submission is not allowed yet")
)

// Form owns a field collection and the operations over it. All mutation is
// funnelled through the form's single lock; async validator completions
// re-enter through the same lock and are guarded by per-field generation
// counters so a stale completion never overwrites a newer result.
type Form struct {
	id      string
	defs    []FieldDef
	order   []string
	context any
	valCtx  context.Context

	mu          sync.Mutex
	fields      field.Fields
	defaults    map[string]any
	generations map[string]uint64
	focus       map[string]func() error
	timers      map[string]func()
	validating  bool
	submitting  bool
	parent      *parentLink

	logger         zerolog.Logger
	scheduler      Scheduler
	onChange       func(Values)
	debounce       time.Duration
	fieldDebounce  map[string]time.Duration
	submitHandler  SubmitHandler
	resetOnSuccess bool
}

// parentLink connects a child form back to the parent field hosting it.
type parentLink struct {
	fieldName string
	always    bool
	validate  func()
}

// New constructs a form from its options. Field definitions are required;
// duplicate names are a configuration error.
func New(options ...Option) (*Form, error) {
	f := &Form{
		valCtx:        context.Background(),
		defaults:      make(map[string]any),
		generations:   make(map[string]uint64),
		focus:         make(map[string]func() error),
		timers:        make(map[string]func()),
		fieldDebounce: make(map[string]time.Duration),
		logger:        zerolog.Nop(),
		scheduler:     timerScheduler{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	if len(f.defs) == 0 {
		return nil, errors.New("form: at least one field definition is required")
	}

	fields := make(field.Fields, len(f.defs))
	for _, def := range f.defs {
		if def.Name == "" {
			return nil, errors.New("form: field definition requires a name")
		}
		if _, dup := fields[def.Name]; dup {
			return nil, fmt.Errorf("form: duplicate field %q", def.Name)
		}
		fields[def.Name] = field.New(def.Name, def.Config, f.defaultFor(def), f.ops())
		f.order = append(f.order, def.Name)
	}
	f.fields = fields

	f.logger.Debug().Str("form", f.id).Int("fields", len(fields)).Msg("form initialized")
	return f, nil
}

// ID returns the form identifier.
func (f *Form) ID() string { return f.id }

// Fields returns the current collection snapshot. Snapshots are immutable by
// convention: callers read, never write.
func (f *Form) Fields() field.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Field returns one field from the current snapshot.
func (f *Form) Field(name string) (*field.Field, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fld, ok := f.fields[name]
	return fld, ok
}

// Names returns the field names in declaration order.
func (f *Form) Names() []string {
	return append([]string(nil), f.order...)
}

// SetValue runs the full value-set cycle for one field: filter, dependency
// resets, validation, display formatting, scheduled rescan, parent-field
// propagation, and debounced notification.
func (f *Form) SetValue(name string, value any, opts ...SetOption) error {
	o := applySetOptions(opts)

	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	cfg := fld.Config
	prevBlocking := fld.Errors.Blocking()

	raw := value
	if o.push {
		raw = appendElement(fld.RawValue, value)
	}
	if cfg.Type.Category() == field.CategoryInteractive && cfg.Filter != nil {
		raw = cfg.Filter(raw)
	}

	// Dependency resets complete before the field's own transition so any
	// scheduled validator later observes post-reset values.
	next := resolve.ResetDependents(f.fields, name, raw, f.context).Clone()
	cur := next[name].WithValue(raw, o.format)

	// Existing errors force re-validation even when the caller skips it, so a
	// field never reads erred-but-unvalidated; any stale server errors drop
	// through that pass, since validators replace the error list wholesale.
	shouldValidate := o.validate || len(cur.Errors) > 0
	var pending bool
	if shouldValidate {
		res := validate.Run(validate.Request{
			Field:    cur,
			Value:    raw,
			Fields:   next,
			Context:  f.context,
			Schedule: scheduleInto(next, name),
		})
		cur = res.Field
		pending = res.PendingAsync
	} else {
		cur = cur.WithClean(validate.Clean(cfg, raw))
	}
	next[name] = cur
	f.fields = next

	tasks := f.rescanLocked(name)

	var gen uint64
	if pending {
		f.generations[name]++
		gen = f.generations[name]
	}

	notifyParent := f.parentTriggerLocked(prevBlocking, cur.Errors.Blocking())
	f.logger.Debug().Str("form", f.id).Str("field", name).
		Bool("validated", shouldValidate).Bool("async", pending).
		Int("errors", len(cur.Errors)).Msg("value set")
	f.mu.Unlock()

	if cfg.Type.Category() == field.CategoryObject && cfg.OnChange != nil {
		cfg.OnChange(name, raw)
	}
	if pending {
		f.spawnAsync(name, raw, gen)
	}
	for _, task := range tasks {
		f.spawnAsync(task.name, task.value, task.gen)
	}
	if notifyParent != nil {
		notifyParent()
	}
	if o.notify {
		f.notify(name)
	}
	return nil
}

// PushValue appends an element to an array-valued field, running the same
// cycle as SetValue.
func (f *Form) PushValue(name string, value any, opts ...SetOption) error {
	return f.SetValue(name, value, append(opts, asPush())...)
}

// RemoveValue removes the element at index from an array-valued field.
func (f *Form) RemoveValue(name string, index int, opts ...SetOption) error {
	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	elems, ok := fld.RawValue.([]any)
	if !ok || index < 0 || index >= len(elems) {
		f.mu.Unlock()
		return fmt.Errorf("form %s: field %q has no element at index %d", f.id, name, index)
	}
	trimmed := make([]any, 0, len(elems)-1)
	trimmed = append(trimmed, elems[:index]...)
	trimmed = append(trimmed, elems[index+1:]...)
	f.mu.Unlock()
	return f.SetValue(name, trimmed, opts...)
}

// ResetField restores one field to its default without validating, then
// cascades dependency resets with the field as trigger.
func (f *Form) ResetField(name string) error {
	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	next := f.fields.Clone()
	reset := fld.ResetToDefault()
	next[name] = reset
	next = resolve.ResetDependents(next, name, reset.RawValue, f.context)
	f.fields = next
	f.generations[name]++
	f.mu.Unlock()

	f.notify(name)
	return nil
}

// AddErrors appends structured errors to a field. The invariant holds: any
// error present nulls the clean value.
func (f *Form) AddErrors(name string, errs ...field.Error) error {
	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	next := f.fields.Clone()
	next[name] = fld.WithErrorsAppended(errs...)
	f.fields = next
	f.mu.Unlock()

	f.notify(name)
	return nil
}

// ClearErrors drops every error on a field, server ones included.
func (f *Form) ClearErrors(name string) error {
	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	next := f.fields.Clone()
	next[name] = fld.WithErrorsCleared()
	f.fields = next
	f.mu.Unlock()

	f.notify(name)
	return nil
}

// BindFocus attaches a view-layer focus handle to a field so the field's
// Focus operation works.
func (f *Form) BindFocus(name string, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fields[name]; !ok {
		return fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	f.focus[name] = fn
	return nil
}

// Values aggregates the form's current values: clean values when available,
// raw values otherwise, and lazily derived child aggregates for nestedForms
// fields. This is the storage-adapter contract boundary.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valuesLocked()
}

func (f *Form) valuesLocked() Values {
	out := make(Values, len(f.fields))
	for name, fld := range f.fields {
		if fld.Category() == field.CategoryNestedForms {
			out[name] = childAggregate(fld)
			continue
		}
		out[name] = effectiveValue(fld)
	}
	return out
}

// SetValues applies a value map field by field in declaration order.
// NestedForms fields forward the value map to every registered child form.
func (f *Form) SetValues(values map[string]any, opts ...SetOption) error {
	var combined error
	for _, name := range f.order {
		value, ok := values[name]
		if !ok {
			continue
		}
		f.mu.Lock()
		fld := f.fields[name]
		children := fld.Meta.ChildForms
		isNested := fld.Category() == field.CategoryNestedForms
		f.mu.Unlock()

		if isNested {
			childMap, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for _, child := range children {
				if child.SetValues == nil {
					continue
				}
				if err := child.SetValues(childMap); err != nil {
					combined = appendErr(combined, fmt.Errorf("form %s: child %s: %w", f.id, child.ID, err))
				}
			}
			continue
		}
		if err := f.SetValue(name, value, opts...); err != nil {
			combined = appendErr(combined, err)
		}
	}
	return combined
}

// Reset merges any new defaults into the default-values store and rebuilds
// the entire collection the way initialization does. Child-form registrations
// survive the rebuild.
func (f *Form) Reset(newDefaults map[string]any) {
	f.mu.Lock()
	for name, value := range newDefaults {
		f.defaults[name] = value
	}
	next := make(field.Fields, len(f.fields))
	for _, def := range f.defs {
		old := f.fields[def.Name]
		rebuilt := field.New(def.Name, def.Config, f.defaultFor(def), f.ops())
		if len(old.Meta.ChildForms) > 0 {
			rebuilt = rebuilt.WithChildForms(old.Meta.ChildForms)
		}
		next[def.Name] = rebuilt
		f.generations[def.Name]++
	}
	f.fields = next
	notifyParent := f.parentTriggerLocked(true, false)
	f.logger.Debug().Str("form", f.id).Msg("form reset")
	f.mu.Unlock()

	if notifyParent != nil {
		notifyParent()
	}
	f.notify(formNotifyKey)
}

// SubmitAllowed reports whether a submission may start: no async validation
// in flight anywhere and no validation or submission already running.
func (f *Form) SubmitAllowed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitAllowedLocked()
}

func (f *Form) submitAllowedLocked() bool {
	if f.validating || f.submitting {
		return false
	}
	for _, fld := range f.fields {
		if fld.Validating {
			return false
		}
	}
	return true
}

// defaultFor resolves a field's default: the form-level store wins over the
// per-definition default.
func (f *Form) defaultFor(def FieldDef) any {
	if v, ok := f.defaults[def.Name]; ok {
		return v
	}
	return def.Default
}

// ops wires the field operation closures back into the orchestrator. Fields
// hold no mutation logic of their own.
func (f *Form) ops() field.Ops {
	return field.Ops{
		SetValue:    func(name string, value any) error { return f.SetValue(name, value) },
		PushValue:   func(name string, value any) error { return f.PushValue(name, value) },
		RemoveValue: func(name string, index int) error { return f.RemoveValue(name, index) },
		ResetValue:  func(name string) error { return f.ResetField(name) },
		AddErrors:   func(name string, errs ...field.Error) error { return f.AddErrors(name, errs...) },
		ClearErrors: func(name string) error { return f.ClearErrors(name) },
		Validate: func(name string) (bool, error) {
			return f.ValidateField(context.Background(), name)
		},
		Focus: func(name string) error {
			f.mu.Lock()
			fn := f.focus[name]
			f.mu.Unlock()
			if fn == nil {
				return fmt.Errorf("form %s: field %q: %w", f.id, name, field.ErrNoFocusBinding)
			}
			return fn()
		},
	}
}

// parentTriggerLocked decides whether the linked parent field must
// re-validate after this cycle. The trigger is deferred through the scheduler
// so it runs after the current commit, never re-entrantly.
func (f *Form) parentTriggerLocked(prevBlocking, newBlocking bool) func() {
	link := f.parent
	if link == nil {
		return nil
	}
	if !link.always && prevBlocking == newBlocking {
		return nil
	}
	scheduler := f.scheduler
	return func() {
		scheduler.Schedule(0, link.validate)
	}
}

// effectiveValue picks the submission-facing value for a field.
func effectiveValue(fld *field.Field) any {
	if fld.CleanValue != nil {
		return fld.CleanValue
	}
	return fld.RawValue
}

// scheduleInto returns the Schedule hook validators use to mark other fields
// for deferred validation in the snapshot being built.
func scheduleInto(next field.Fields, self string) func(string) {
	return func(other string) {
		if other == self {
			return
		}
		if fld, ok := next[other]; ok {
			next[other] = fld.WithScheduled(true)
		}
	}
}

func appendElement(raw any, value any) any {
	if raw == nil {
		return []any{value}
	}
	if elems, ok := raw.([]any); ok {
		return append(append([]any(nil), elems...), value)
	}
	return []any{raw, value}
}
