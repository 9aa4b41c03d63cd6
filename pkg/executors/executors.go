// Package executors hosts the built-in node executors and their shared
// property handling. Each executor validates its node's properties against
// its own JSON schema at execution time; the engine never interprets
// properties.
package executors

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateProperties checks node properties against an executor's schema.
func ValidateProperties(schema, properties map[string]any) error {
	if properties == nil {
		properties = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(properties)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate node properties: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, validationErr := range result.Errors() {
			messages = append(messages, validationErr.String())
		}

		return fmt.Errorf("invalid node properties: %s", strings.Join(messages, "; "))
	}

	return nil
}

// StringProperty reads an optional string property with a default.
func StringProperty(properties map[string]any, key, fallback string) string {
	if value, ok := properties[key].(string); ok && value != "" {
		return value
	}

	return fallback
}

// IntProperty reads an optional numeric property with a default. JSON numbers
// decode as float64, so both representations are accepted.
func IntProperty(properties map[string]any, key string, fallback int) int {
	switch value := properties[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}

// BoolProperty reads an optional boolean property with a default.
func BoolProperty(properties map[string]any, key string, fallback bool) bool {
	if value, ok := properties[key].(bool); ok {
		return value
	}

	return fallback
}

// MapProperty reads an optional object property.
func MapProperty(properties map[string]any, key string) map[string]any {
	if value, ok := properties[key].(map[string]any); ok {
		return value
	}

	return nil
}
