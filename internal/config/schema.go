package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "kanakey-config.schema.json"

//go:embed schema.json
var schemaJSON []byte

var (
	compiled     *jsonschema.Schema
	compiledErr  error
	compiledOnce sync.Once
)

// Schema returns the embedded JSON schema document.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

func compiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compiledErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compiledErr = compiler.Compile(schemaURL)
		if compiledErr != nil {
			compiledErr = fmt.Errorf("compile schema: %w", compiledErr)
		}
	})
	return compiled, compiledErr
}

// ValidateSchema checks a decoded configuration document against the
// embedded schema. Every violation is reported as a warning.
func ValidateSchema(raw map[string]any) (ValidationErrors, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so TOML and YAML numbers reach the validator
	// as json.Number.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var out ValidationErrors
	collectLeaves(ve, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}

func collectLeaves(ve *jsonschema.ValidationError, out *ValidationErrors) {
	if len(ve.Causes) == 0 {
		*out = append(*out, ValidationError{
			Field:   pointerToKey(ve.InstanceLocation),
			Message: ve.Message,
			Warning: true,
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

// pointerToKey turns a JSON pointer such as /input/comma_period into the
// stable key input.comma_period.
func pointerToKey(ptr string) string {
	key := strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
	if key == "" {
		return "(root)"
	}
	return key
}
