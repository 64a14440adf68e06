package decode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema constrains the decode service body before extraction: a
// JSON object whose Results member, when present, is an array of objects.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"Count":   map[string]any{"type": "number"},
			"Message": map[string]any{"type": "string"},
			"Results": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
		},
	}
}

var compiledSchema = mustCompile(responseSchema())

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal decode schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add decode schema: %v", err))
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile decode schema: %v", err))
	}
	return schema
}

// validateResponse checks a raw body against the response schema.
func validateResponse(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal body: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("body does not match schema: %w", err)
	}
	return nil
}
