package field_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/pkg/field"
)

func TestNewNormalizesInteractiveDefaults(t *testing.T) {
	f := field.New("title", field.Config{Type: field.TypeText}, "hello", field.Ops{})

	if f.Config.Mode != field.ModeChange {
		t.Fatalf("expected default mode change, got %q", f.Config.Mode)
	}
	if f.Config.Required {
		t.Fatalf("required should default to false")
	}
	if f.RawValue != "hello" || f.Value != "hello" {
		t.Fatalf("unexpected initial values: raw=%v value=%v", f.RawValue, f.Value)
	}
}

func TestNewAppliesFilterAndFormatter(t *testing.T) {
	cfg := field.Config{
		Type:   field.TypeText,
		Filter: field.TrimSpace(),
		Formatter: func(v any) any {
			return strings.ToUpper(v.(string))
		},
	}
	f := field.New("code", cfg, "  abc  ", field.Ops{})

	if f.RawValue != "abc" {
		t.Fatalf("filter not applied to default: %v", f.RawValue)
	}
	if f.Value != "ABC" {
		t.Fatalf("formatter not applied to display value: %v", f.Value)
	}
}

func TestNewPassiveSkipsFilterPipeline(t *testing.T) {
	cfg := field.Config{
		Type:   field.TypeCheckbox,
		Filter: func(any) any { t.Fatal("filter must not run for passive fields"); return nil },
	}
	f := field.New("agree", cfg, true, field.Ops{})

	if !f.Checked {
		t.Fatalf("checkbox default true should set checked mirror")
	}
}

func TestErrorsNullCleanValue(t *testing.T) {
	f := field.New("age", field.Config{Type: field.TypeNumber}, nil, field.Ops{})
	f = f.WithValue(25, true).WithClean(25)

	erred := f.WithErrors(field.Errors{field.NewError(field.ErrorMin, "too small")})
	if erred.CleanValue != nil {
		t.Fatalf("errors present must null clean value, got %v", erred.CleanValue)
	}
	if erred.RawValue != 25 {
		t.Fatalf("raw value must survive error transition, got %v", erred.RawValue)
	}
	if f.CleanValue != 25 {
		t.Fatalf("transform mutated its input: %v", f.CleanValue)
	}
}

func TestReducerReturnsFreshField(t *testing.T) {
	f := field.New("name", field.Config{Type: field.TypeText}, "x", field.Ops{})

	next := f.WithValue("y", true)
	if next == f {
		t.Fatalf("WithValue must return a new field")
	}
	if f.RawValue != "x" {
		t.Fatalf("input field mutated: %v", f.RawValue)
	}
}

func TestResetToDefaultRestoresEverything(t *testing.T) {
	f := field.New("city", field.Config{Type: field.TypeText}, "Bergen", field.Ops{})
	f = f.WithValue("Oslo", true).
		WithErrors(field.Errors{field.NewError(field.ErrorInvalid, "nope")}).
		WithScheduled(true)

	reset := f.ResetToDefault()
	if reset.RawValue != "Bergen" || reset.Value != "Bergen" || reset.CleanValue != "Bergen" {
		t.Fatalf("reset values wrong: raw=%v value=%v clean=%v", reset.RawValue, reset.Value, reset.CleanValue)
	}
	if len(reset.Errors) != 0 {
		t.Fatalf("reset must clear errors: %v", reset.Errors)
	}
	if reset.Meta.ValidationScheduled {
		t.Fatalf("reset must clear scheduled mark")
	}
}

func TestErrorsBlocking(t *testing.T) {
	serverOnly := field.Errors{field.NewError(field.ErrorServer, "taken")}
	if serverOnly.Blocking() {
		t.Fatalf("server errors must not block")
	}
	mixed := append(serverOnly, field.NewError(field.ErrorRequired, "missing"))
	if !mixed.Blocking() {
		t.Fatalf("non-server errors must block")
	}
	if got := mixed.WithoutServer(); len(got) != 1 || got[0].Type != field.ErrorRequired {
		t.Fatalf("WithoutServer wrong: %v", got)
	}
}

func TestOpsDelegation(t *testing.T) {
	var gotName string
	var gotValue any
	ops := field.Ops{
		SetValue: func(name string, value any) error {
			gotName, gotValue = name, value
			return nil
		},
	}
	f := field.New("email", field.Config{Type: field.TypeEmail}, nil, ops)

	if err := f.SetValue("a@b.co"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if gotName != "email" || gotValue != "a@b.co" {
		t.Fatalf("delegation wrong: %q %v", gotName, gotValue)
	}
}

func TestDetachedFieldsCarryNoOps(t *testing.T) {
	ops := field.Ops{
		SetValue: func(string, any) error { t.Fatal("detached field must not reach ops"); return nil },
	}
	fields := field.Fields{"name": field.New("name", field.Config{Type: field.TypeText}, "ada", ops)}

	detached := fields.Detached()
	if err := detached["name"].SetValue("x"); err == nil {
		t.Fatalf("expected unbound-operation error")
	}
	if detached["name"].RawValue != "ada" {
		t.Fatalf("detached copy lost state: %v", detached["name"].RawValue)
	}
	// The source field keeps its bindings.
	if fields["name"] == detached["name"] {
		t.Fatalf("Detached must copy the records")
	}
}

func TestFocusWithoutBinding(t *testing.T) {
	f := field.New("email", field.Config{Type: field.TypeEmail}, nil, field.Ops{})
	if err := f.Focus(); err == nil {
		t.Fatalf("expected focus error before binding")
	}
}

func TestViewStateByCategory(t *testing.T) {
	interactive := field.New("a", field.Config{Type: field.TypeText}, "v", field.Ops{})
	if _, ok := interactive.ViewState().(field.Props); !ok {
		t.Fatalf("interactive view state has wrong variant: %T", interactive.ViewState())
	}

	passive := field.New("b", field.Config{Type: field.TypeCheckbox}, true, field.Ops{})
	props, ok := passive.ViewState().(field.PassiveProps)
	if !ok {
		t.Fatalf("passive view state has wrong variant: %T", passive.ViewState())
	}
	if !props.Checked {
		t.Fatalf("passive props should mirror checked state")
	}

	object := field.New("c", field.Config{Type: field.TypeObject}, nil, field.Ops{})
	if _, ok := object.ViewState().(field.ObjectProps); !ok {
		t.Fatalf("object view state has wrong variant: %T", object.ViewState())
	}

	nested := field.New("d", field.Config{Type: field.TypeForms}, nil, field.Ops{})
	if _, ok := nested.ViewState().(field.NestedFormsProps); !ok {
		t.Fatalf("nestedForms view state has wrong variant: %T", nested.ViewState())
	}
}

func TestDependencyMatches(t *testing.T) {
	byName := field.DependsOn("country", "region")
	if !byName.Matches("country", nil, nil) || byName.Matches("city", nil, nil) {
		t.Fatalf("name-list dependency matching wrong")
	}

	byFunc := field.DependsOnFunc(func(trigger string, value any, _ any) bool {
		return trigger == "plan" && value == "custom"
	})
	if !byFunc.Matches("plan", "custom", nil) || byFunc.Matches("plan", "basic", nil) {
		t.Fatalf("predicate dependency matching wrong")
	}
}
