package schema_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

const signupYAML = `
name: signup
fields:
  - name: email
    type: email
    label: Email address
    required: true
  - name: age
    type: number
    min: 18
    max: 120
  - name: username
    type: text
    minLength: 3
    pattern: "^[a-z0-9_]+$"
    mode: blur
  - name: region
    type: text
    dependsOn: [country]
  - name: country
    type: text
    default: "NO"
`

func TestParseYAML(t *testing.T) {
	def, err := schema.ParseYAML([]byte(signupYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if def.Name != "signup" {
		t.Fatalf("name = %q", def.Name)
	}
	if len(def.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(def.Fields))
	}

	email := def.Fields[0]
	if email.Name != "email" || email.Config.Type != field.TypeEmail || !email.Config.Required {
		t.Fatalf("email definition wrong: %+v", email)
	}
	if email.Label != "Email address" {
		t.Fatalf("label not carried: %q", email.Label)
	}

	age := def.Fields[1]
	if age.Config.Min == nil || *age.Config.Min != 18 || age.Config.Max == nil || *age.Config.Max != 120 {
		t.Fatalf("bounds wrong: %+v", age.Config)
	}

	username := def.Fields[2]
	if username.Config.MinLength == nil || *username.Config.MinLength != 3 {
		t.Fatalf("minLength wrong: %+v", username.Config)
	}
	if username.Config.Pattern != "^[a-z0-9_]+$" || username.Config.Mode != field.ModeBlur {
		t.Fatalf("pattern/mode wrong: %+v", username.Config)
	}

	region := def.Fields[3]
	if !region.Config.DependsOn.Matches("country", nil, nil) {
		t.Fatalf("dependency not wired: %+v", region.Config.DependsOn)
	}

	if country := def.Fields[4]; country.Default != "NO" {
		t.Fatalf("default wrong: %v", country.Default)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty payload", "", "empty"},
		{"no fields", "name: x", "no fields"},
		{"missing name", "fields:\n  - type: text", "requires a name"},
		{"duplicate", "fields:\n  - name: a\n  - name: a", "duplicate"},
		{"unknown type", "fields:\n  - name: a\n    type: slider", "unknown type"},
		{"unknown mode", "fields:\n  - name: a\n    mode: hover", "unknown mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseYAML([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefinitionOptionsBuildForm(t *testing.T) {
	def, err := schema.ParseYAML([]byte(signupYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	f, err := form.New(def.Options()...)
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	if f.ID() != "signup" {
		t.Fatalf("definition name should pin the form ID, got %q", f.ID())
	}
	if fld, ok := f.Field("country"); !ok || fld.RawValue != "NO" {
		t.Fatalf("default not seeded through options")
	}
	if err := f.SetValue("age", 15); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if fld, _ := f.Field("age"); !fld.Errors.Has(field.ErrorMinMax) {
		t.Fatalf("parsed bounds not enforced: %v", fld.Errors)
	}
}
