package form

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formstate/internal/resolve"
	"github.com/goliatone/go-formstate/internal/validate"
	"github.com/goliatone/go-formstate/pkg/field"
)

// asyncTask describes an async validation the caller must spawn after the
// lock is released.
type asyncTask struct {
	name  string
	value any
	gen   uint64
}

// spawnAsync runs a field's async validator off the change cycle and applies
// the outcome through the generation-guarded completion path.
func (f *Form) spawnAsync(name string, value any, gen uint64) {
	f.mu.Lock()
	fld, ok := f.fields[name]
	snapshot := f.fields
	formContext := f.context
	f.mu.Unlock()
	if !ok || fld.Config.AsyncValidator == nil {
		return
	}

	go func() {
		outcome, err := fld.Config.AsyncValidator(f.valCtx, field.ValidatorArgs{
			Name:    name,
			Value:   value,
			Fields:  snapshot.Detached(),
			Context: formContext,
			// Deferred marks raised from an async validator are picked up by
			// the completion's rescan.
			Schedule: f.scheduleAsync,
		})
		f.finishAsync(name, gen, value, outcome, err)
	}()
}

// finishAsync is the completion callback for async validations. A completion
// whose generation is no longer current is discarded: a newer validation owns
// the field now.
func (f *Form) finishAsync(name string, gen uint64, value any, outcome field.Outcome, err error) {
	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok || f.generations[name] != gen {
		f.mu.Unlock()
		f.logger.Debug().Str("form", f.id).Str("field", name).Msg("stale async validation discarded")
		return
	}
	next := f.fields.Clone()
	done := validate.Finish(fld, value, outcome, err)
	next[name] = done
	f.fields = next
	tasks := f.rescanLocked(name)
	notifyParent := f.parentTriggerLocked(fld.Errors.Blocking(), done.Errors.Blocking())
	f.mu.Unlock()

	for _, task := range tasks {
		f.spawnAsync(task.name, task.value, task.gen)
	}
	if notifyParent != nil {
		notifyParent()
	}
	f.notify(name)
}

// scheduleAsync marks a field for deferred validation from outside a change
// cycle (async validator context).
func (f *Form) scheduleAsync(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fld, ok := f.fields[name]
	if !ok {
		return
	}
	next := f.fields.Clone()
	next[name] = fld.WithScheduled(true)
	f.fields = next
}

// ValidateField re-runs the full pipeline for one field against its current
// raw value, awaiting any async validator in place. Existing server errors are
// preserved: they clear on value change or ClearErrors, not on revalidation.
func (f *Form) ValidateField(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	fld, ok := f.fields[name]
	if !ok {
		f.mu.Unlock()
		return false, fmt.Errorf("form %s: unknown field %q", f.id, name)
	}
	snapshot := f.fields
	formContext := f.context
	f.generations[name]++
	gen := f.generations[name]
	f.mu.Unlock()

	var scheduled []string
	res, err := validate.RunAsync(ctx, validate.Request{
		Field:    fld,
		Value:    fld.RawValue,
		Fields:   snapshot,
		Context:  formContext,
		Schedule: func(n string) { scheduled = append(scheduled, n) },
	})
	if err != nil {
		return false, fmt.Errorf("form %s: validate field %q: %w", f.id, name, err)
	}
	res = preserveServer(fld.Errors, res)

	f.mu.Lock()
	if f.generations[name] != gen {
		// A newer cycle superseded this pass; report but do not commit.
		f.mu.Unlock()
		return !res.Errors.Blocking(), nil
	}
	next := f.fields.Clone()
	next[name] = res
	for _, n := range scheduled {
		if n == name {
			continue
		}
		if other, ok := next[n]; ok {
			next[n] = other.WithScheduled(true)
		}
	}
	f.fields = next
	tasks := f.rescanLocked(name)
	f.mu.Unlock()

	for _, task := range tasks {
		f.spawnAsync(task.name, task.value, task.gen)
	}
	f.notify(name)
	return !res.Errors.Blocking(), nil
}

// Validate runs a concurrent validation pass over every eligible field,
// recursing into child forms for nestedForms fields. The boolean is true iff
// no field (and no child form) reports a blocking, non-server error.
// Per-field operational failures are aggregated rather than aborting the
// pass; one broken validator never silences the others.
func (f *Form) Validate(ctx context.Context, opts ...ValidateOption) (bool, error) {
	var o validateOptions
	for _, opt := range opts {
		opt(&o)
	}

	f.mu.Lock()
	snapshot := f.fields
	formContext := f.context
	f.validating = true
	// Bump every generation up front so in-flight background completions
	// cannot overwrite this pass's results.
	gens := make(map[string]uint64, len(snapshot))
	for name := range snapshot {
		f.generations[name]++
		gens[name] = f.generations[name]
	}
	f.mu.Unlock()

	var (
		resMu     sync.Mutex
		results   = make(map[string]*field.Field, len(snapshot))
		scheduled = make(map[string]bool)
		childOK   = true
		combined  error
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, fld := range snapshot {
		name, fld := name, fld
		if !o.includes(name) {
			continue
		}
		if f.skipField(name, fld, snapshot, formContext) {
			continue
		}

		if fld.Category() == field.CategoryNestedForms {
			children := fld.Meta.ChildForms
			g.Go(func() error {
				for _, child := range children {
					if child.Validate == nil {
						continue
					}
					valid, err := child.Validate(gctx)
					resMu.Lock()
					if err != nil {
						combined = multierr.Append(combined,
							fmt.Errorf("form %s: child form %s: %w", f.id, child.ID, err))
					} else if !valid {
						childOK = false
					}
					resMu.Unlock()
				}
				return nil
			})
			continue
		}

		g.Go(func() error {
			res, err := validate.RunAsync(gctx, validate.Request{
				Field:   fld,
				Value:   fld.RawValue,
				Fields:  snapshot,
				Context: formContext,
				Schedule: func(n string) {
					resMu.Lock()
					scheduled[n] = true
					resMu.Unlock()
				},
			})
			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				combined = multierr.Append(combined,
					fmt.Errorf("form %s: validate field %q: %w", f.id, name, err))
				return nil
			}
			results[name] = preserveServer(fld.Errors, res)
			return nil
		})
	}
	_ = g.Wait()

	ok := childOK
	f.mu.Lock()
	next := f.fields.Clone()
	for name, res := range results {
		if f.generations[name] != gens[name] {
			continue
		}
		next[name] = res
		if res.Errors.Blocking() {
			ok = false
		}
	}
	for n := range scheduled {
		if fld, exists := next[n]; exists && results[n] == nil {
			next[n] = fld.WithScheduled(true)
		}
	}
	f.fields = next
	tasks := f.rescanLocked("")
	f.validating = false
	f.logger.Debug().Str("form", f.id).Bool("valid", ok).
		Int("validated", len(results)).Msg("validation pass complete")
	f.mu.Unlock()

	for _, task := range tasks {
		f.spawnAsync(task.name, task.value, task.gen)
	}
	f.notify(formNotifyKey)
	return ok, combined
}

// rescanLocked processes fields whose validators scheduled a deferred
// re-validation during the cycle. Each is re-validated synchronously against
// its current raw value and its flag cleared regardless of outcome. Marks
// raised during the rescan itself carry over to the next cycle.
func (f *Form) rescanLocked(exclude string) []asyncTask {
	names := resolve.Scheduled(f.fields, exclude)
	if len(names) == 0 {
		return nil
	}

	var tasks []asyncTask
	for _, name := range names {
		fld := f.fields[name]
		next := f.fields.Clone()
		cleared := fld.WithScheduled(false)

		if f.skipField(name, cleared, next, f.context) {
			next[name] = cleared
			f.fields = next
			continue
		}

		res := validate.Run(validate.Request{
			Field:    cleared,
			Value:    cleared.RawValue,
			Fields:   next,
			Context:  f.context,
			Schedule: scheduleInto(next, name),
		})
		merged := preserveServer(fld.Errors, res.Field)
		next[name] = merged
		f.fields = next

		if res.PendingAsync {
			f.generations[name]++
			tasks = append(tasks, asyncTask{name: name, value: cleared.RawValue, gen: f.generations[name]})
		}
	}
	return tasks
}

// skipField consults the per-field skip predicate.
func (f *Form) skipField(name string, fld *field.Field, fields field.Fields, formContext any) bool {
	if fld.Config.Skip == nil {
		return false
	}
	return fld.Config.Skip(field.SkipArgs{
		Name:    name,
		Value:   fld.RawValue,
		Fields:  fields.Detached(),
		Context: formContext,
	})
}

// preserveServer re-attaches server errors from the previous state after a
// revalidation pass; validators never produce server errors themselves.
func preserveServer(prev field.Errors, next *field.Field) *field.Field {
	var server field.Errors
	for _, e := range prev {
		if e.Type == field.ErrorServer {
			server = append(server, e)
		}
	}
	if len(server) == 0 {
		return next
	}
	return next.WithErrorsAppended(server...)
}

func appendErr(combined, err error) error {
	return multierr.Append(combined, err)
}
