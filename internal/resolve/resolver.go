// Package resolve implements the two dependency mechanisms of a change cycle:
// recursive reset-on-change and scheduled-validation collection. Both scan the
// full collection once per pass; form field counts are small enough that no
// incremental reverse-edge graph is worth maintaining.
package resolve

import (
	"sort"

	"github.com/goliatone/go-formstate/pkg/field"
)

// ResetDependents resets every field whose dependency declaration matches the
// trigger, recursing so fields depending on a reset field also reset. Resets
// never run validators; errors are cleared by the reset transform itself.
//
// A visited set bounds the pass: each field resets at most once, which keeps a
// cyclic dependency configuration from recursing forever.
func ResetDependents(fields field.Fields, trigger string, value any, formContext any) field.Fields {
	visited := map[string]bool{trigger: true}
	pending := []string{trigger}
	triggerValues := map[string]any{trigger: value}

	out := fields
	changed := false

	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]
		currentValue := triggerValues[current]

		names := sortedNames(out)
		for _, name := range names {
			if visited[name] {
				continue
			}
			f := out[name]
			if !f.Config.DependsOn.Matches(current, currentValue, formContext) {
				continue
			}
			if !changed {
				out = fields.Clone()
				changed = true
			}
			reset := f.ResetToDefault()
			out[name] = reset
			visited[name] = true
			pending = append(pending, name)
			triggerValues[name] = reset.RawValue
		}
	}

	return out
}

// Scheduled returns the names of fields marked for deferred validation,
// excluding the field that initiated the cycle. Sorted for deterministic
// rescan order.
func Scheduled(fields field.Fields, exclude string) []string {
	var names []string
	for name, f := range fields {
		if name == exclude {
			continue
		}
		if f.Meta.ValidationScheduled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sortedNames(fields field.Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
