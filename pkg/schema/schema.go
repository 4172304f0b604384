// Package schema builds form field definitions from external documents: plain
// YAML form definitions and OpenAPI operation request bodies. Both sources
// normalize into a Definition consumable by form.New.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
)

// Definition is a normalized form description extracted from a source
// document.
type Definition struct {
	Name   string
	Fields []form.FieldDef
}

// Options bridges the definition into form construction.
func (d Definition) Options() []form.Option {
	opts := []form.Option{form.WithFields(d.Fields...)}
	if d.Name != "" {
		opts = append([]form.Option{form.WithID(d.Name)}, opts...)
	}
	return opts
}

// yamlDocument mirrors the YAML form definition format.
type yamlDocument struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Label     string   `yaml:"label"`
	Required  bool     `yaml:"required"`
	Default   any      `yaml:"default"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	MinLength *int     `yaml:"minLength"`
	MaxLength *int     `yaml:"maxLength"`
	Pattern   string   `yaml:"pattern"`
	Mode      string   `yaml:"mode"`
	DependsOn []string `yaml:"dependsOn"`
}

var knownTypes = map[string]field.Type{
	"text":     field.TypeText,
	"number":   field.TypeNumber,
	"email":    field.TypeEmail,
	"password": field.TypePassword,
	"textarea": field.TypeTextArea,
	"checkbox": field.TypeCheckbox,
	"radio":    field.TypeRadio,
	"file":     field.TypeFile,
	"object":   field.TypeObject,
	"forms":    field.TypeForms,
}

// ParseYAML decodes a YAML form definition document.
func ParseYAML(data []byte) (Definition, error) {
	if len(data) == 0 {
		return Definition{}, fmt.Errorf("schema: document payload is empty")
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Definition{}, fmt.Errorf("schema: decode document: %w", err)
	}
	if len(doc.Fields) == 0 {
		return Definition{}, fmt.Errorf("schema: document declares no fields")
	}

	def := Definition{Name: doc.Name}
	seen := make(map[string]bool, len(doc.Fields))
	for _, raw := range doc.Fields {
		if raw.Name == "" {
			return Definition{}, fmt.Errorf("schema: field definition requires a name")
		}
		if seen[raw.Name] {
			return Definition{}, fmt.Errorf("schema: duplicate field %q", raw.Name)
		}
		seen[raw.Name] = true

		fieldType := field.TypeText
		if raw.Type != "" {
			mapped, ok := knownTypes[raw.Type]
			if !ok {
				return Definition{}, fmt.Errorf("schema: field %q has unknown type %q", raw.Name, raw.Type)
			}
			fieldType = mapped
		}

		cfg := field.Config{
			Type:      fieldType,
			Required:  raw.Required,
			Min:       raw.Min,
			Max:       raw.Max,
			MinLength: raw.MinLength,
			MaxLength: raw.MaxLength,
			Pattern:   raw.Pattern,
		}
		switch raw.Mode {
		case "":
		case "change":
			cfg.Mode = field.ModeChange
		case "blur":
			cfg.Mode = field.ModeBlur
		default:
			return Definition{}, fmt.Errorf("schema: field %q has unknown mode %q", raw.Name, raw.Mode)
		}
		if len(raw.DependsOn) > 0 {
			cfg.DependsOn = field.DependsOn(raw.DependsOn...)
		}

		def.Fields = append(def.Fields, form.FieldDef{
			Name:    raw.Name,
			Config:  cfg,
			Default: raw.Default,
			Label:   raw.Label,
		})
	}

	return def, nil
}
