package form

import (
	"context"
	"time"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/rs/zerolog"
)

// Scheduler is the host scheduling primitive used for debounced change
// notifications and deferred parent-field validation. Schedule returns a
// cancel function; cancelling after the callback fired is a no-op.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func())
}

// timerScheduler is the default Scheduler backed by the runtime timer.
type timerScheduler struct{}

func (timerScheduler) Schedule(delay time.Duration, fn func()) func() {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// FieldDef pairs a field name with its config and default value. Definitions
// keep their declaration order for iteration and CLI flows.
type FieldDef struct {
	Name    string
	Config  field.Config
	Default any
	// Label is optional display metadata carried through for view layers.
	Label string
}

// Values is the aggregate value map a form exposes at its storage boundary.
type Values map[string]any

// ServerErrors maps field names to externally supplied error messages, the
// shape a submit handler returns.
type ServerErrors map[string][]string

// SubmitHandler receives the submit-ready values. Returned server errors are
// merged into the fields as server-kind entries; a non-nil error aborts the
// submission.
type SubmitHandler func(ctx context.Context, values Values) (ServerErrors, error)

// Option customises form construction.
type Option func(*Form)

// WithFields declares the form's fields in order.
func WithFields(defs ...FieldDef) Option {
	return func(f *Form) {
		f.defs = append(f.defs, defs...)
	}
}

// WithDefaults supplies or overrides default values by field name. These take
// precedence over per-definition defaults.
func WithDefaults(defaults map[string]any) Option {
	return func(f *Form) {
		for name, value := range defaults {
			f.defaults[name] = value
		}
	}
}

// WithContext attaches an arbitrary form context passed to validators, skip
// predicates, and dependency predicates.
func WithContext(formContext any) Option {
	return func(f *Form) {
		f.context = formContext
	}
}

// WithID pins the form identifier; a random one is generated otherwise.
func WithID(id string) Option {
	return func(f *Form) {
		f.id = id
	}
}

// WithLogger injects a structured logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// WithScheduler injects the scheduling primitive, mainly so tests can drive
// debounce deterministically.
func WithScheduler(s Scheduler) Option {
	return func(f *Form) {
		if s != nil {
			f.scheduler = s
		}
	}
}

// WithOnChange registers the change notification callback with the form-level
// debounce delay. The callback receives the first value map computed after
// the delay elapses; intermediate states are coalesced by timer cancellation.
func WithOnChange(fn func(Values), debounce time.Duration) Option {
	return func(f *Form) {
		f.onChange = fn
		f.debounce = debounce
	}
}

// WithFieldDebounce overrides the notification delay for one field.
func WithFieldDebounce(name string, debounce time.Duration) Option {
	return func(f *Form) {
		f.fieldDebounce[name] = debounce
	}
}

// WithSubmitHandler stores a default submit handler so Submit can be called
// without one.
func WithSubmitHandler(h SubmitHandler) Option {
	return func(f *Form) {
		f.submitHandler = h
	}
}

// WithResetOnSuccess resets the form to its defaults after a submission that
// produced no server errors.
func WithResetOnSuccess() Option {
	return func(f *Form) {
		f.resetOnSuccess = true
	}
}

// WithValidationContext sets the context used for async validators spawned
// from value-set cycles. Defaults to context.Background().
func WithValidationContext(ctx context.Context) Option {
	return func(f *Form) {
		if ctx != nil {
			f.valCtx = ctx
		}
	}
}

// SetOption tunes one SetValue call.
type SetOption func(*setOptions)

type setOptions struct {
	validate bool
	format   bool
	push     bool
	notify   bool
}

func applySetOptions(opts []SetOption) setOptions {
	o := setOptions{validate: true, format: true, notify: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NoValidate skips the validation stage unless the field is already erred;
// existing errors always force re-validation so a field never appears
// erred-but-unvalidated.
func NoValidate() SetOption {
	return func(o *setOptions) { o.validate = false }
}

// NoFormat keeps the display value equal to the raw value for this call,
// matching blur-deferred formatting.
func NoFormat() SetOption {
	return func(o *setOptions) { o.format = false }
}

// NoNotify suppresses the debounced change notification for this call, for
// programmatic loads that should not read as user edits.
func NoNotify() SetOption {
	return func(o *setOptions) { o.notify = false }
}

func asPush() SetOption {
	return func(o *setOptions) { o.push = true }
}

// ValidateOption narrows a full-form validation pass.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	target  map[string]bool
	exclude map[string]bool
}

// Target restricts the pass to the named fields.
func Target(names ...string) ValidateOption {
	return func(o *validateOptions) {
		if o.target == nil {
			o.target = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.target[n] = true
		}
	}
}

// Exclude removes the named fields from the pass.
func Exclude(names ...string) ValidateOption {
	return func(o *validateOptions) {
		if o.exclude == nil {
			o.exclude = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.exclude[n] = true
		}
	}
}

func (o validateOptions) includes(name string) bool {
	if o.exclude[name] {
		return false
	}
	if o.target != nil && !o.target[name] {
		return false
	}
	return true
}
