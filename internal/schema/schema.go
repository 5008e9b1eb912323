// Package schema implements the minimal JSON Schema subset used to declare and
// check the shape of structured model output. It validates schema declarations
// up front (catching authoring mistakes before a request is sent) and validates
// decoded payloads against them afterward.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Supported schema types.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Response format types accepted by chat completions.
const (
	FormatText       = "text"
	FormatJSONObject = "json_object"
	FormatJSONSchema = "json_schema"
)

// Schema is a self-describing declaration of an expected JSON shape.
type Schema struct {
	Type                 string             `json:"type"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// NamedSchema pairs a schema with the name the json_schema response format requires.
type NamedSchema struct {
	Name   string  `json:"name"`
	Strict bool    `json:"strict,omitempty"`
	Schema *Schema `json:"schema"`
}

// ResponseFormat declares the output format requested from the model.
type ResponseFormat struct {
	Type       string       `json:"type"`
	JSONSchema *NamedSchema `json:"json_schema,omitempty"`
}

// MismatchError reports a payload that failed schema validation, carrying the
// individual violations and the offending data.
type MismatchError struct {
	Violations []string
	Data       any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("data does not match schema: %s", strings.Join(e.Violations, "; "))
}

// ValidateResponseFormat checks a response-format declaration before it is sent
// upstream.
func ValidateResponseFormat(format *ResponseFormat) error {
	if format == nil {
		return nil
	}

	if format.Type == "" {
		return errors.New("response format type is required")
	}

	if format.Type != FormatJSONSchema {
		return nil
	}

	if format.JSONSchema == nil {
		return errors.New("json_schema response format requires a json_schema declaration")
	}

	if format.JSONSchema.Name == "" {
		return errors.New("json_schema response format requires a non-empty name")
	}

	if format.JSONSchema.Schema == nil {
		return errors.New("json_schema response format requires a schema")
	}

	return ValidateSchema(format.JSONSchema.Schema)
}

// ValidateSchema checks that a schema declaration is structurally sound.
// Object schemas must declare their properties, and every required key must
// name a declared property; array schemas must declare their item shape.
func ValidateSchema(s *Schema) error {
	if s == nil {
		return errors.New("schema cannot be nil")
	}

	switch s.Type {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeNull:
		return nil
	case TypeObject:
		if s.Properties == nil {
			return errors.New("object schema requires properties")
		}
		for _, key := range s.Required {
			if _, declared := s.Properties[key]; !declared {
				return fmt.Errorf("required field %q is not declared in properties", key)
			}
		}
		for name, prop := range s.Properties {
			if err := ValidateSchema(prop); err != nil {
				return fmt.Errorf("property %q: %w", name, err)
			}
		}
		return nil
	case TypeArray:
		if s.Items == nil {
			return errors.New("array schema requires items")
		}
		if err := ValidateSchema(s.Items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported schema type: %q", s.Type)
	}
}

// ValidateData checks decoded JSON data against a schema. Failures surface as
// a *MismatchError listing every violation found.
func ValidateData(data any, s *Schema) error {
	violations := check(data, s, "$")
	if len(violations) > 0 {
		return &MismatchError{Violations: violations, Data: data}
	}
	return nil
}

// ParseJSONResponse parses raw model output as JSON and, when a schema is
// supplied, validates the decoded value against it. Returns the decoded value.
func ParseJSONResponse(content string, s *Schema) (any, error) {
	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, &MismatchError{
			Violations: []string{fmt.Sprintf("invalid JSON: %v (content: %s)", err, excerpt(content))},
			Data:       content,
		}
	}

	if s != nil {
		if err := ValidateData(data, s); err != nil {
			return nil, err
		}
	}

	return data, nil
}

const excerptLimit = 120

func excerpt(content string) string {
	if len(content) <= excerptLimit {
		return content
	}
	return content[:excerptLimit] + "..."
}

// check is the interpreter over the schema's type tag; each variant maps to
// one validation rule.
func check(data any, s *Schema, path string) []string {
	if s == nil {
		return nil
	}

	switch s.Type {
	case TypeNull:
		if data != nil {
			return []string{fmt.Sprintf("%s: expected null", path)}
		}
		return nil

	case TypeBoolean:
		if _, ok := data.(bool); !ok {
			return []string{fmt.Sprintf("%s: expected boolean", path)}
		}
		return nil

	case TypeString:
		if _, ok := data.(string); !ok {
			return []string{fmt.Sprintf("%s: expected string", path)}
		}
		return nil

	case TypeNumber:
		if _, ok := data.(float64); !ok {
			return []string{fmt.Sprintf("%s: expected number", path)}
		}
		return nil

	case TypeInteger:
		num, ok := data.(float64)
		if !ok || num != float64(int64(num)) {
			return []string{fmt.Sprintf("%s: expected integer", path)}
		}
		return nil

	case TypeArray:
		items, ok := data.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected array", path)}
		}
		var violations []string
		for i, item := range items {
			violations = append(violations, check(item, s.Items, fmt.Sprintf("%s[%d]", path, i))...)
		}
		return violations

	case TypeObject:
		obj, ok := data.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected object", path)}
		}

		var violations []string
		for _, key := range s.Required {
			if _, present := obj[key]; !present {
				violations = append(violations, fmt.Sprintf("%s: missing required field %q", path, key))
			}
		}

		for key, value := range obj {
			prop, declared := s.Properties[key]
			if !declared {
				// additionalProperties: false closes the object.
				if s.AdditionalProperties != nil && !*s.AdditionalProperties {
					violations = append(violations, fmt.Sprintf("%s: unexpected field %q", path, key))
				}
				continue
			}
			violations = append(violations, check(value, prop, path+"."+key)...)
		}
		return violations

	default:
		return []string{fmt.Sprintf("%s: unsupported schema type %q", path, s.Type)}
	}
}
