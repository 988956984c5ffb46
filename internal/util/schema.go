package util

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ValidationError describes one function argument that does not satisfy the
// function's schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives the JSON schema of a function's arguments from a
// struct. Struct tags control the properties:
//
//	json:"city"                 property name ("-" skips the field)
//	description:"..."           property description
//	default:"June"              default value; the property is optional
//	enum:"celsius,fahrenheit"   allowed values
//
// Fields are required unless they are pointers, tagged omitempty or carry a
// default. Anything that is not a struct yields an empty object schema.
func CreateSchema(structType any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}

	t := reflect.TypeOf(structType)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return schema
	}

	properties := schema["properties"].(map[string]any)
	var required []string
	for i := 0; i < t.NumField(); i++ {
		name, prop, isRequired, ok := fieldSchema(t.Field(i))
		if !ok {
			continue
		}
		properties[name] = prop
		if isRequired {
			required = append(required, name)
		}
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func fieldSchema(field reflect.StructField) (name string, prop map[string]any, required, ok bool) {
	if !field.IsExported() {
		return "", nil, false, false
	}

	name = field.Name
	tagName, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
	if tagName == "-" {
		return "", nil, false, false
	}
	if tagName != "" {
		name = tagName
	}

	prop = map[string]any{"type": jsonType(field.Type)}
	if d := field.Tag.Get("description"); d != "" {
		prop["description"] = d
	}
	def, hasDefault := field.Tag.Lookup("default")
	if hasDefault {
		prop["default"] = def
	}
	if e := field.Tag.Get("enum"); e != "" {
		var values []any
		for _, v := range strings.Split(e, ",") {
			values = append(values, strings.TrimSpace(v))
		}
		prop["enum"] = values
	}

	omitEmpty := slices.Contains(strings.Split(opts, ","), "omitempty")
	required = !omitEmpty && !hasDefault && field.Type.Kind() != reflect.Ptr
	return name, prop, required, true
}

// ValidateParameters checks decoded function arguments against a schema:
// required properties must be present and non-null, present properties must
// match their declared type and enum. Unknown arguments are allowed. Every
// problem is reported; the result unwraps to the individual
// *ValidationError values.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	var errs []error

	for _, field := range RequiredFields(schema) {
		if v, ok := params[field]; !ok || v == nil {
			errs = append(errs, &ValidationError{Field: field, Message: "required field is missing"})
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		value := params[name]
		prop, _ := properties[name].(map[string]any)
		if prop == nil || value == nil {
			continue
		}

		expected, _ := prop["type"].(string)
		if !matchesType(value, expected) {
			errs = append(errs, &ValidationError{
				Field:   name,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expected, value),
			})
			continue
		}
		if allowed := enumValues(prop["enum"]); len(allowed) > 0 && !slices.Contains(allowed, fmt.Sprint(value)) {
			errs = append(errs, &ValidationError{
				Field:   name,
				Value:   value,
				Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
			})
		}
	}

	return errors.Join(errs...)
}

// RequiredFields returns the schema's "required" list, accepting both the
// []string form built in code and the []any form decoded from JSON.
func RequiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func enumValues(raw any) []string {
	var out []string
	switch values := raw.(type) {
	case []string:
		out = values
	case []any:
		for _, v := range values {
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}

// matchesType reports whether a value decoded by encoding/json fits a JSON
// schema type. Unknown types match anything.
func matchesType(value any, expected string) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		f, ok := value.(float64)
		if !ok {
			return reflect.ValueOf(value).CanInt() || reflect.ValueOf(value).CanUint()
		}
		return f == float64(int64(f))
	case "number":
		v := reflect.ValueOf(value)
		return v.CanFloat() || v.CanInt() || v.CanUint()
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
