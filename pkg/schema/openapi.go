package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
)

// FromOpenAPI loads an OpenAPI document, selects the operation by id, and
// maps its request body schema into a form definition. Property order is
// alphabetical so regenerated forms stay stable across runs.
func FromOpenAPI(ctx context.Context, data []byte, operationID string) (Definition, error) {
	if len(data) == 0 {
		return Definition{}, fmt.Errorf("schema: document payload is empty")
	}
	if operationID == "" {
		return Definition{}, fmt.Errorf("schema: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return Definition{}, fmt.Errorf("schema: load openapi document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return Definition{}, fmt.Errorf("schema: document does not contain any paths")
	}

	op := findOperation(spec, operationID)
	if op == nil {
		return Definition{}, fmt.Errorf("schema: operation %q not found", operationID)
	}

	body := requestBodySchema(op)
	if body == nil {
		return Definition{}, fmt.Errorf("schema: operation %q has no request body schema", operationID)
	}

	def := Definition{Name: operationID}
	requiredSet := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		requiredSet[name] = true
	}

	propNames := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		fieldDef, err := fieldFromSchema(name, ref.Value, requiredSet[name])
		if err != nil {
			return Definition{}, err
		}
		def.Fields = append(def.Fields, fieldDef)
	}

	if len(def.Fields) == 0 {
		return Definition{}, fmt.Errorf("schema: operation %q yields no fields", operationID)
	}
	return def, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch, item.Head, item.Options, item.Trace,
		} {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestBodySchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldFromSchema(name string, src *openapi3.Schema, required bool) (form.FieldDef, error) {
	cfg := field.Config{Required: required}

	switch firstSchemaType(src.Type) {
	case "integer", "number":
		cfg.Type = field.TypeNumber
	case "boolean":
		cfg.Type = field.TypeCheckbox
	case "object":
		cfg.Type = field.TypeObject
	case "array":
		if src.Items != nil && src.Items.Value != nil && firstSchemaType(src.Items.Value.Type) == "object" {
			cfg.Type = field.TypeForms
		} else {
			cfg.Type = field.TypeText
		}
	default:
		cfg.Type = typeFromFormat(src.Format)
	}

	if src.Min != nil {
		value := *src.Min
		cfg.Min = &value
	}
	if src.Max != nil {
		value := *src.Max
		cfg.Max = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		cfg.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		cfg.MaxLength = &value
	}
	if src.Pattern != "" {
		cfg.Pattern = src.Pattern
	}

	return form.FieldDef{
		Name:    name,
		Config:  cfg,
		Default: src.Default,
		Label:   labelFor(name, src),
	}, nil
}

func typeFromFormat(format string) field.Type {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "email":
		return field.TypeEmail
	case "password":
		return field.TypePassword
	case "byte", "binary":
		return field.TypeFile
	default:
		return field.TypeText
	}
}

func labelFor(name string, src *openapi3.Schema) string {
	if src.Title != "" {
		return src.Title
	}
	return name
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
