package resolve

import (
	"testing"

	"github.com/goliatone/go-formstate/pkg/field"
)

func collection(t *testing.T, defs map[string]field.Config) field.Fields {
	t.Helper()
	out := make(field.Fields, len(defs))
	for name, cfg := range defs {
		out[name] = field.New(name, cfg, nil, field.Ops{})
	}
	return out
}

func TestResetDependentsDirect(t *testing.T) {
	fields := collection(t, map[string]field.Config{
		"country": {Type: field.TypeText},
		"city":    {Type: field.TypeText, DependsOn: field.DependsOn("country")},
		"zip":     {Type: field.TypeText},
	})
	fields["city"] = fields["city"].WithValue("Bergen", true)
	fields["zip"] = fields["zip"].WithValue("5003", true)

	out := ResetDependents(fields, "country", "NO", nil)

	if out["city"].RawValue != nil {
		t.Fatalf("dependent not reset: %v", out["city"].RawValue)
	}
	if out["zip"].RawValue != "5003" {
		t.Fatalf("unrelated field touched: %v", out["zip"].RawValue)
	}
	if fields["city"].RawValue != "Bergen" {
		t.Fatalf("input collection mutated")
	}
}

func TestResetDependentsRecursive(t *testing.T) {
	fields := collection(t, map[string]field.Config{
		"country": {Type: field.TypeText},
		"region":  {Type: field.TypeText, DependsOn: field.DependsOn("country")},
		"city":    {Type: field.TypeText, DependsOn: field.DependsOn("region")},
	})
	fields["region"] = fields["region"].WithValue("Vestland", true)
	fields["city"] = fields["city"].WithValue("Bergen", true)

	out := ResetDependents(fields, "country", "NO", nil)

	if out["region"].RawValue != nil || out["city"].RawValue != nil {
		t.Fatalf("transitive reset missing: region=%v city=%v", out["region"].RawValue, out["city"].RawValue)
	}
}

func TestResetDependentsCycleTerminates(t *testing.T) {
	fields := collection(t, map[string]field.Config{
		"a": {Type: field.TypeText, DependsOn: field.DependsOn("b")},
		"b": {Type: field.TypeText, DependsOn: field.DependsOn("a")},
	})
	fields["a"] = fields["a"].WithValue("1", true)
	fields["b"] = fields["b"].WithValue("2", true)

	out := ResetDependents(fields, "a", "x", nil)

	if out["b"].RawValue != nil {
		t.Fatalf("b should reset once: %v", out["b"].RawValue)
	}
	// The trigger itself is in the visited set, so the cycle never resets it.
	if out["a"].RawValue != "1" {
		t.Fatalf("trigger must not reset itself: %v", out["a"].RawValue)
	}
}

func TestResetDependentsPredicateSeesNewValue(t *testing.T) {
	var seen []any
	fields := collection(t, map[string]field.Config{
		"plan": {Type: field.TypeText},
		"addon": {Type: field.TypeText, DependsOn: field.DependsOnFunc(func(trigger string, value any, _ any) bool {
			if trigger != "plan" {
				return false
			}
			seen = append(seen, value)
			return value == "custom"
		})},
	})
	fields["addon"] = fields["addon"].WithValue("backup", true)

	out := ResetDependents(fields, "plan", "basic", nil)
	if out["addon"].RawValue != "backup" {
		t.Fatalf("predicate false must not reset")
	}

	out = ResetDependents(fields, "plan", "custom", nil)
	if out["addon"].RawValue != nil {
		t.Fatalf("predicate true must reset")
	}
	if len(seen) != 2 || seen[0] != "basic" || seen[1] != "custom" {
		t.Fatalf("predicate saw wrong values: %v", seen)
	}
}

func TestResetDependentsPropagatesResetValue(t *testing.T) {
	var got any = "unset"
	fields := collection(t, map[string]field.Config{
		"parent": {Type: field.TypeText},
		"mid":    {Type: field.TypeText, DependsOn: field.DependsOn("parent")},
		"leaf": {Type: field.TypeText, DependsOn: field.DependsOnFunc(func(trigger string, value any, _ any) bool {
			if trigger != "mid" {
				return false
			}
			got = value
			return true
		})},
	})
	fields["mid"] = fields["mid"].WithValue("old", true)

	ResetDependents(fields, "parent", "new", nil)
	if got != nil {
		t.Fatalf("leaf predicate should see mid's reset value, got %v", got)
	}
}

func TestResetDependentsNoMatchReturnsSameCollection(t *testing.T) {
	fields := collection(t, map[string]field.Config{
		"a": {Type: field.TypeText},
		"b": {Type: field.TypeText},
	})

	out := ResetDependents(fields, "a", "x", nil)
	if out["b"] != fields["b"] {
		t.Fatalf("untouched pass must not clone the collection")
	}
}

func TestScheduled(t *testing.T) {
	fields := collection(t, map[string]field.Config{
		"a": {Type: field.TypeText},
		"b": {Type: field.TypeText},
		"c": {Type: field.TypeText},
	})
	fields["b"] = fields["b"].WithScheduled(true)
	fields["c"] = fields["c"].WithScheduled(true)

	got := Scheduled(fields, "c")
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("got %v", got)
	}
}
