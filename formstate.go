// Package formstate is a form-state management engine: it tracks field
// values, validation state, dependency relationships between fields, and
// nested child-form composition, exposing immutable state snapshots a view
// layer can diff by reference.
//
// The root package re-exports the types most callers need; the full surface
// lives in pkg/field, pkg/form, and pkg/schema.
package formstate

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Field is one named slot of form state.
type Field = field.Field

// Config is the immutable field description.
type Config = field.Config

// FieldDef pairs a field name with its config and default.
type FieldDef = form.FieldDef

// Error is a structured validation message.
type Error = field.Error

// Errors is the ordered message list attached to a field.
type Errors = field.Errors

// Outcome is the result union custom validators return.
type Outcome = field.Outcome

// Values is the aggregate value map at the storage boundary.
type Values = form.Values

// ServerErrors is the error map a submit handler returns.
type ServerErrors = form.ServerErrors

// Form is the orchestrator owning a field collection.
type Form = form.Form

// Option customises form construction.
type Option = form.Option

// Definition is a normalized form description from an external document.
type Definition = schema.Definition

// New constructs a form from options; see pkg/form for the full option set.
func New(options ...form.Option) (*form.Form, error) {
	return form.New(options...)
}

// NewFromYAML builds a form from a YAML form definition document, applying
// any extra options after the schema-derived ones.
func NewFromYAML(data []byte, options ...form.Option) (*form.Form, error) {
	def, err := schema.ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return form.New(append(def.Options(), options...)...)
}

// NewFromOpenAPI builds a form from an OpenAPI operation's request body,
// applying any extra options after the schema-derived ones.
func NewFromOpenAPI(ctx context.Context, data []byte, operationID string, options ...form.Option) (*form.Form, error) {
	def, err := schema.FromOpenAPI(ctx, data, operationID)
	if err != nil {
		return nil, err
	}
	return form.New(append(def.Options(), options...)...)
}
