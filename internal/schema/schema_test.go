package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekovalev/wordweave/internal/schema"
)

func boolPtr(b bool) *bool { return &b }

func TestValidateSchema(t *testing.T) {
	t.Run("should accept scalar types", func(t *testing.T) {
		for _, typ := range []string{"string", "number", "integer", "boolean", "null"} {
			require.NoError(t, schema.ValidateSchema(&schema.Schema{Type: typ}))
		}
	})

	t.Run("should reject unknown type", func(t *testing.T) {
		err := schema.ValidateSchema(&schema.Schema{Type: "tuple"})
		require.Error(t, err)
	})

	t.Run("should reject object without properties", func(t *testing.T) {
		err := schema.ValidateSchema(&schema.Schema{Type: "object"})
		require.Error(t, err)
	})

	t.Run("should reject required field not declared in properties", func(t *testing.T) {
		err := schema.ValidateSchema(&schema.Schema{
			Type:       "object",
			Required:   []string{"x"},
			Properties: map[string]*schema.Schema{},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), `"x"`)
	})

	t.Run("should reject array without items", func(t *testing.T) {
		err := schema.ValidateSchema(&schema.Schema{Type: "array"})
		require.Error(t, err)
	})

	t.Run("should validate nested schemas", func(t *testing.T) {
		err := schema.ValidateSchema(&schema.Schema{
			Type: "object",
			Properties: map[string]*schema.Schema{
				"words": {
					Type:  "array",
					Items: &schema.Schema{Type: "bogus"},
				},
			},
		})
		require.Error(t, err)
	})
}

func TestValidateResponseFormat(t *testing.T) {
	t.Run("should accept nil format", func(t *testing.T) {
		require.NoError(t, schema.ValidateResponseFormat(nil))
	})

	t.Run("should reject missing type", func(t *testing.T) {
		err := schema.ValidateResponseFormat(&schema.ResponseFormat{})
		require.Error(t, err)
	})

	t.Run("should accept json_object without schema", func(t *testing.T) {
		require.NoError(t, schema.ValidateResponseFormat(&schema.ResponseFormat{
			Type: schema.FormatJSONObject,
		}))
	})

	t.Run("should require name and schema for json_schema", func(t *testing.T) {
		err := schema.ValidateResponseFormat(&schema.ResponseFormat{Type: schema.FormatJSONSchema})
		require.Error(t, err)

		err = schema.ValidateResponseFormat(&schema.ResponseFormat{
			Type:       schema.FormatJSONSchema,
			JSONSchema: &schema.NamedSchema{Name: ""},
		})
		require.Error(t, err)

		err = schema.ValidateResponseFormat(&schema.ResponseFormat{
			Type:       schema.FormatJSONSchema,
			JSONSchema: &schema.NamedSchema{Name: "words"},
		})
		require.Error(t, err)

		err = schema.ValidateResponseFormat(&schema.ResponseFormat{
			Type: schema.FormatJSONSchema,
			JSONSchema: &schema.NamedSchema{
				Name: "words",
				Schema: &schema.Schema{
					Type:       "object",
					Properties: map[string]*schema.Schema{"a": {Type: "string"}},
				},
			},
		})
		require.NoError(t, err)
	})
}

func TestValidateData(t *testing.T) {
	wordsSchema := &schema.Schema{
		Type: "object",
		Properties: map[string]*schema.Schema{
			"words": {
				Type: "array",
				Items: &schema.Schema{
					Type: "object",
					Properties: map[string]*schema.Schema{
						"term":        {Type: "string"},
						"translation": {Type: "string"},
					},
					Required: []string{"term", "translation"},
				},
			},
		},
		Required: []string{"words"},
	}

	t.Run("should accept matching data", func(t *testing.T) {
		data := map[string]any{
			"words": []any{
				map[string]any{"term": "hola", "translation": "hello"},
			},
		}
		require.NoError(t, schema.ValidateData(data, wordsSchema))
	})

	t.Run("should collect violations with paths", func(t *testing.T) {
		data := map[string]any{
			"words": []any{
				map[string]any{"term": 12},
			},
		}

		err := schema.ValidateData(data, wordsSchema)

		var mismatch *schema.MismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Len(t, mismatch.Violations, 2)
	})

	t.Run("should reject integer with fractional part", func(t *testing.T) {
		s := &schema.Schema{Type: "integer"}
		require.NoError(t, schema.ValidateData(float64(3), s))
		require.Error(t, schema.ValidateData(3.5, s))
	})

	t.Run("should close objects with additionalProperties false", func(t *testing.T) {
		s := &schema.Schema{
			Type:                 "object",
			Properties:           map[string]*schema.Schema{"a": {Type: "number"}},
			AdditionalProperties: boolPtr(false),
		}

		require.NoError(t, schema.ValidateData(map[string]any{"a": 1.0}, s))
		require.Error(t, schema.ValidateData(map[string]any{"a": 1.0, "b": 2.0}, s))
	})

	t.Run("should allow extra fields on open objects", func(t *testing.T) {
		s := &schema.Schema{
			Type:       "object",
			Properties: map[string]*schema.Schema{"a": {Type: "number"}},
		}
		require.NoError(t, schema.ValidateData(map[string]any{"a": 1.0, "b": "x"}, s))
	})
}

func TestParseJSONResponse(t *testing.T) {
	t.Run("should fail on malformed JSON with excerpt", func(t *testing.T) {
		_, err := schema.ParseJSONResponse("not json", nil)

		var mismatch *schema.MismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Contains(t, mismatch.Error(), "not json")
	})

	t.Run("should parse and validate against schema", func(t *testing.T) {
		s := &schema.Schema{
			Type:       "object",
			Properties: map[string]*schema.Schema{"a": {Type: "number"}},
			Required:   []string{"a"},
		}

		value, err := schema.ParseJSONResponse(`{"a":1}`, s)

		require.NoError(t, err)
		require.Equal(t, map[string]any{"a": 1.0}, value)
	})

	t.Run("should surface schema mismatch", func(t *testing.T) {
		s := &schema.Schema{
			Type:       "object",
			Properties: map[string]*schema.Schema{"a": {Type: "number"}},
			Required:   []string{"a"},
		}

		_, err := schema.ParseJSONResponse(`{"b":true}`, s)
		require.Error(t, err)
	})

	t.Run("should parse without schema", func(t *testing.T) {
		value, err := schema.ParseJSONResponse(`[1,2]`, nil)
		require.NoError(t, err)
		require.Equal(t, []any{1.0, 2.0}, value)
	})
}
