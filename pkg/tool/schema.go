package tool

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateSchema checks the shape of a parameters schema at registration
// time. Rules are applied in order and the first failure wins.
func ValidateSchema(schema map[string]any) error {
	if schema == nil {
		return NewError(KindValidation, "parameters schema must be an object")
	}

	rawType, ok := schema["type"]
	if !ok {
		return NewError(KindValidation, "parameters schema must declare a type")
	}

	typ, ok := rawType.(string)
	if !ok || typ != "object" {
		return NewError(KindValidation, fmt.Sprintf("parameters schema type must be \"object\", got %v", rawType))
	}

	var properties map[string]any
	if rawProps, ok := schema["properties"]; ok {
		properties, ok = rawProps.(map[string]any)
		if !ok {
			return NewError(KindValidation, "schema properties must be an object")
		}
	}

	if rawRequired, ok := schema["required"]; ok {
		names, err := requiredNames(rawRequired)
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, ok := properties[name]; !ok {
				return NewError(KindValidation, fmt.Sprintf("Required field '%s' not found in properties", name))
			}
		}
	}

	return nil
}

func requiredNames(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, NewError(KindValidation, fmt.Sprintf("schema required entries must be strings, got %v", item))
			}
			names = append(names, name)
		}
		return names, nil
	default:
		return nil, NewError(KindValidation, "schema required must be an array")
	}
}

// CompileSchema compiles a validated parameters schema for call-time
// argument checking.
func CompileSchema(schema map[string]any) (*gojsonschema.Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, WrapError(KindValidation, "failed to compile parameters schema", err)
	}
	return compiled, nil
}

// ValidateArguments validates an argument map against a compiled schema.
// Distinct from ValidateSchema, which checks the schema's own shape.
func ValidateArguments(compiled *gojsonschema.Schema, args map[string]any) error {
	if compiled == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return WrapError(KindInvalidArguments, "argument validation failed", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			details = append(details, re.String())
		}
		return NewError(KindInvalidArguments, fmt.Sprintf("argument validation failed: %s", strings.Join(details, "; ")))
	}

	return nil
}
