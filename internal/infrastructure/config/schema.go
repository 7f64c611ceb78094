package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
)

//go:embed schema/settings.schema.json
var settingsSchema []byte

const settingsSchemaURL = "settings.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(settingsSchemaURL, bytes.NewReader(settingsSchema)); err != nil {
		return nil, fmt.Errorf("failed to add settings schema: %w", err)
	}
	return compiler.Compile(settingsSchemaURL)
})

// ValidateSettings checks s against the embedded JSON Schema.
func ValidateSettings(s *Settings) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile settings schema: %w", err)
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return apperrors.NewValidationError("settings", "invalid settings", collectMessages(validationErr)...)
		}
		return fmt.Errorf("settings validation failed: %w", err)
	}
	return nil
}

// collectMessages flattens a validation error tree to "location: message" lines.
func collectMessages(err *jsonschema.ValidationError) []string {
	var messages []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return messages
}
