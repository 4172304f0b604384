// Package validate implements the field validation pipeline: a per-type shape
// check, the built-in constraint validators, and the user-supplied custom
// validator, in strict stage order.
package validate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/field"
)

// Request carries one field's validation inputs. Value is the filtered value
// under test, Fields the collection snapshot validators may inspect, and
// Schedule the hook for marking other fields for deferred re-validation.
type Request struct {
	Field    *field.Field
	Value    any
	Fields   field.Fields
	Context  any
	Schedule func(name string)
}

// Result is the synchronous outcome. When PendingAsync is set the returned
// field reflects stages one and two only, with Validating raised; the caller
// owns running the async validator and applying Finish.
type Result struct {
	Field        *field.Field
	PendingAsync bool
}

// Run executes the synchronous pipeline. Stage order is strict: the type
// validator, then the built-ins, then the custom validator — each stage only
// runs if the previous produced no error.
func Run(req Request) Result {
	f := req.Field
	cfg := f.Config
	errs := stageErrors(req)

	if len(errs) == 0 && cfg.Validator != nil {
		outcome := runCustom(cfg.Validator, args(req))
		errs = NormalizeOutcome(cfg, outcome)
	}

	if len(errs) == 0 && cfg.AsyncValidator != nil {
		pending := f.WithErrorsCleared().WithValidating(true)
		return Result{Field: pending, PendingAsync: true}
	}

	return Result{Field: apply(f, req.Value, errs)}
}

// RunAsync executes the full pipeline, awaiting any async custom validator in
// place. A validator error is treated as a single invalid-kind failure.
func RunAsync(ctx context.Context, req Request) (*field.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := req.Field
	cfg := f.Config
	errs := stageErrors(req)

	if len(errs) == 0 && cfg.Validator != nil {
		outcome := runCustom(cfg.Validator, args(req))
		errs = NormalizeOutcome(cfg, outcome)
	}
	if len(errs) == 0 && cfg.AsyncValidator != nil {
		outcome, err := cfg.AsyncValidator(ctx, args(req))
		errs = normalizeAsync(cfg, outcome, err)
	}

	return apply(f, req.Value, errs), nil
}

// Finish applies an async validator's settled outcome to the field, ending
// the validating state. It is the single completion path for the pending
// branch Run returns.
func Finish(f *field.Field, value any, outcome field.Outcome, err error) *field.Field {
	errs := normalizeAsync(f.Config, outcome, err)
	return apply(f.WithValidating(false), value, errs)
}

// NormalizeOutcome folds a custom validator's result union into structured
// errors: a pass yields nil, structured errors pass through verbatim, a
// message becomes a single invalid entry, and a bare failure surfaces the
// field's default invalid message.
func NormalizeOutcome(cfg field.Config, outcome field.Outcome) field.Errors {
	if len(outcome.Errors) > 0 {
		return outcome.Errors
	}
	if outcome.OK {
		return nil
	}
	msg := outcome.Message
	if msg == "" {
		msg = field.DefaultMessage(cfg, field.ErrorInvalid)
	}
	return field.Errors{field.NewError(field.ErrorInvalid, msg)}
}

// stageErrors runs stages one and two.
func stageErrors(req Request) field.Errors {
	cfg := req.Field.Config
	cat := cfg.Type.Category()

	if cat == field.CategoryInteractive || cat == field.CategoryPassive {
		if err := typeValidator(cfg, req.Value); err != nil {
			return field.Errors{*err}
		}
	}
	return runBuiltins(cfg, req.Value)
}

// runCustom isolates a panicking validator into an Outcome carrying the panic
// message, so one broken validator never aborts the rest of the pass.
func runCustom(v field.Validator, a field.ValidatorArgs) (out field.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = field.Invalid(fmt.Sprintf("%v", r))
		}
	}()
	return v(a)
}

func normalizeAsync(cfg field.Config, outcome field.Outcome, err error) field.Errors {
	if err != nil {
		return field.Errors{field.NewError(field.ErrorInvalid, err.Error())}
	}
	return NormalizeOutcome(cfg, outcome)
}

// apply finalizes a field after a pass: errors replace the list wholesale and
// CleanValue is set only when the list came back empty.
func apply(f *field.Field, value any, errs field.Errors) *field.Field {
	if len(errs) > 0 {
		return f.WithValidating(false).WithErrors(errs)
	}
	return f.WithValidating(false).WithErrorsCleared().WithClean(Clean(f.Config, value))
}

// Clean normalizes a validated value for storage. Number-typed fields store
// the numeric reading so a value typed as "25" and one set as 25 yield the
// same clean value.
func Clean(cfg field.Config, value any) any {
	if cfg.Type == field.TypeNumber && !Empty(value) {
		if num, ok := Float(value); ok {
			return num
		}
	}
	return value
}

func args(req Request) field.ValidatorArgs {
	return field.ValidatorArgs{
		Name:     req.Field.Name,
		Value:    req.Value,
		Fields:   req.Fields.Detached(),
		Context:  req.Context,
		Schedule: req.Schedule,
	}
}
