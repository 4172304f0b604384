package form_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
)

func memberForms(t *testing.T, options ...form.Option) (*form.Form, *form.Form) {
	t.Helper()
	parent := mustForm(t, append([]form.Option{
		form.WithID("parent"),
		form.WithFields(
			form.FieldDef{Name: "title", Config: field.Config{Type: field.TypeText}},
			form.FieldDef{Name: "members", Config: field.Config{Type: field.TypeForms}},
		),
	}, options...)...)
	child := mustForm(t,
		form.WithID("child-1"),
		form.WithFields(
			form.FieldDef{Name: "name", Config: field.Config{Type: field.TypeText, Required: true}},
		),
		form.WithScheduler(immediateScheduler{}),
	)
	return parent, child
}

func TestRegisterChildFormRejectsWrongCategory(t *testing.T) {
	parent, child := memberForms(t)

	if err := parent.RegisterChildForm("title", child.AsChild()); err == nil {
		t.Fatal("expected category error")
	}
	if err := parent.RegisterChildForm("nope", child.AsChild()); err == nil {
		t.Fatal("expected unknown-field error")
	}
}

func TestChildAggregation(t *testing.T) {
	parent, child := memberForms(t)
	if err := form.LinkChild(parent, "members", child); err != nil {
		t.Fatalf("LinkChild: %v", err)
	}
	if err := child.SetValue("name", "ada"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}

	got := parent.Values()["members"]
	want := []map[string]any{{"name": "ada"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}

	if handles := parent.ChildForms("members"); len(handles) != 1 || handles[0].ID != "child-1" {
		t.Fatalf("child handles wrong: %v", handles)
	}
}

func TestUnregisterKeepsLastAggregate(t *testing.T) {
	parent, child := memberForms(t)
	if err := form.LinkChild(parent, "members", child); err != nil {
		t.Fatalf("LinkChild: %v", err)
	}
	if err := child.SetValue("name", "ada"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}

	if err := form.UnlinkChild(parent, "members", child); err != nil {
		t.Fatalf("UnlinkChild: %v", err)
	}
	if handles := parent.ChildForms("members"); len(handles) != 0 {
		t.Fatalf("handles not cleared: %v", handles)
	}

	// The last aggregate survives as the field's stored value.
	got := parent.Values()["members"]
	want := []map[string]any{{"name": "ada"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback value mismatch (-want +got):\n%s", diff)
	}
}

func TestChildErrorTransitionTriggersParentValidation(t *testing.T) {
	var validations atomic.Int32
	parent := mustForm(t,
		form.WithID("parent"),
		form.WithFields(
			form.FieldDef{Name: "members", Config: field.Config{
				Type: field.TypeForms,
				Validator: func(field.ValidatorArgs) field.Outcome {
					validations.Add(1)
					return field.Valid()
				},
			}},
		),
	)
	child := mustForm(t,
		form.WithID("child-1"),
		form.WithFields(
			form.FieldDef{Name: "name", Config: field.Config{Type: field.TypeText, Required: true}},
		),
		form.WithScheduler(immediateScheduler{}),
	)
	if err := form.LinkChild(parent, "members", child); err != nil {
		t.Fatalf("LinkChild: %v", err)
	}

	// Valid-to-valid change: no transition, no parent validation.
	if err := child.SetValue("name", "ada"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}
	if got := validations.Load(); got != 0 {
		t.Fatalf("no transition yet, parent validated %d times", got)
	}

	// Entering the erred state is a transition.
	if err := child.SetValue("name", ""); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}
	if got := validations.Load(); got != 1 {
		t.Fatalf("expected one parent validation, got %d", got)
	}

	// Leaving it is another.
	if err := child.SetValue("name", "grace"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}
	if got := validations.Load(); got != 2 {
		t.Fatalf("expected two parent validations, got %d", got)
	}
}

func TestAlwaysValidateParent(t *testing.T) {
	var validations atomic.Int32
	parent := mustForm(t,
		form.WithFields(
			form.FieldDef{Name: "members", Config: field.Config{
				Type:                 field.TypeForms,
				AlwaysValidateParent: true,
				Validator: func(field.ValidatorArgs) field.Outcome {
					validations.Add(1)
					return field.Valid()
				},
			}},
		),
	)
	child := mustForm(t,
		form.WithFields(
			form.FieldDef{Name: "name", Config: field.Config{Type: field.TypeText}},
		),
		form.WithScheduler(immediateScheduler{}),
	)
	if err := form.LinkChild(parent, "members", child); err != nil {
		t.Fatalf("LinkChild: %v", err)
	}

	// Every child change triggers, transitions or not.
	if err := child.SetValue("name", "a"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}
	if err := child.SetValue("name", "ab"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}
	if got := validations.Load(); got != 2 {
		t.Fatalf("expected two parent validations, got %d", got)
	}
}

func TestValidateRecursesIntoChildren(t *testing.T) {
	parent, child := memberForms(t)
	if err := form.LinkChild(parent, "members", child); err != nil {
		t.Fatalf("LinkChild: %v", err)
	}

	// The child's required name is empty, so the parent pass fails.
	ok, err := parent.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatalf("invalid child must fail the parent pass")
	}

	if err := child.SetValue("name", "ada"); err != nil {
		t.Fatalf("child SetValue: %v", err)
	}
	ok, err = parent.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok {
		t.Fatalf("valid child must pass the parent pass")
	}
}

func TestSetValuesForwardsToChildren(t *testing.T) {
	parent, child := memberForms(t)
	if err := form.LinkChild(parent, "members", child); err != nil {
		t.Fatalf("LinkChild: %v", err)
	}

	err := parent.SetValues(map[string]any{
		"title":   "team",
		"members": map[string]any{"name": "ada"},
	})
	if err != nil {
		t.Fatalf("SetValues: %v", err)
	}
	if fld, _ := child.Field("name"); fld.RawValue != "ada" {
		t.Fatalf("value not forwarded to child: %v", fld.RawValue)
	}
}
