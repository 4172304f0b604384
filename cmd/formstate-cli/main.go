// Command formstate-cli drives a form interactively in the terminal: it loads
// a schema document, prompts for every field, validates as values land, and
// prints the submitted value map as YAML.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func main() {
	source := flag.String("schema", "form.yaml", "form definition document (YAML, or OpenAPI with -operation)")
	operation := flag.String("operation", "", "OpenAPI operation id; when set the schema is read as an OpenAPI document")
	verbose := flag.Bool("verbose", false, "log state transitions")
	flag.Parse()

	ctx := context.Background()
	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	def, err := loadDefinition(ctx, *source, *operation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formstate-cli: %v\n", err)
		os.Exit(1)
	}

	f, err := form.New(append(def.Options(), form.WithLogger(logger))...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formstate-cli: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, f, def, surveyDriver{}); err != nil {
		if errors.Is(err, ErrInterrupted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "formstate-cli: %v\n", err)
		os.Exit(1)
	}
}

func loadDefinition(ctx context.Context, path, operation string) (schema.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("read schema: %w", err)
	}
	if operation != "" {
		return schema.FromOpenAPI(ctx, data, operation)
	}
	return schema.ParseYAML(data)
}

// run fills the form field by field, re-prompting while a field stays erred,
// then submits and prints the gathered values.
func run(ctx context.Context, f *form.Form, def schema.Definition, driver PromptDriver) error {
	labels := make(map[string]string, len(def.Fields))
	for _, fd := range def.Fields {
		labels[fd.Name] = fd.Label
	}

	for _, name := range f.Names() {
		if err := fillField(ctx, f, name, labels[name], driver); err != nil {
			return err
		}
	}

	return f.Submit(ctx, func(_ context.Context, values form.Values) (form.ServerErrors, error) {
		payload, err := yaml.Marshal(map[string]any(values))
		if err != nil {
			return nil, err
		}
		return nil, driver.Info(ctx, string(payload))
	})
}

func fillField(ctx context.Context, f *form.Form, name, label string, driver PromptDriver) error {
	fld, ok := f.Field(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	message := label
	if message == "" {
		message = name
	}

	for {
		value, err := promptValue(ctx, fld, message, driver)
		if err != nil {
			return err
		}
		if err := f.SetValue(name, value); err != nil {
			return err
		}

		current, _ := f.Field(name)
		if !current.Errors.Blocking() {
			return nil
		}
		for _, msg := range current.Errors.Messages() {
			if err := driver.Info(ctx, "  ✗ "+msg); err != nil {
				return err
			}
		}
		fld = current
	}
}

func promptValue(ctx context.Context, fld *field.Field, message string, driver PromptDriver) (any, error) {
	switch fld.Config.Type {
	case field.TypeCheckbox:
		return driver.Confirm(ctx, message, fld.Checked)
	case field.TypePassword:
		return driver.Password(ctx, message)
	default:
		def := ""
		if s, ok := fld.Value.(string); ok {
			def = s
		} else if fld.Value != nil {
			def = fmt.Sprint(fld.Value)
		}
		out, err := driver.Input(ctx, message, def)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(out), nil
	}
}
