package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Field types that change how operands are coerced.
const (
	FieldTypeNumber  = "number"
	FieldTypeBoolean = "boolean"
)

// FieldTypes maps declared field names to their type.
type FieldTypes map[string]string

// Coerce converts a raw operand to the declared field type. List operators
// split comma-separated strings, drop empty parts and coerce each element;
// a value without a comma stays a single element.
func Coerce(fieldType string, op Operator, raw interface{}) (interface{}, error) {
	if !op.TakesValue() {
		return nil, nil
	}
	if op.IsList() {
		return coerceList(fieldType, raw)
	}
	return coerceScalar(fieldType, raw)
}

func coerceList(fieldType string, raw interface{}) ([]interface{}, error) {
	var parts []interface{}
	switch v := raw.(type) {
	case string:
		if strings.Contains(v, ",") {
			for _, s := range strings.Split(v, ",") {
				if s != "" {
					parts = append(parts, s)
				}
			}
		} else {
			parts = []interface{}{v}
		}
	default:
		parts = asList(raw)
	}

	out := make([]interface{}, 0, len(parts))
	for _, p := range parts {
		c, err := coerceScalar(fieldType, p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func coerceScalar(fieldType string, raw interface{}) (interface{}, error) {
	s, isString := raw.(string)
	if !isString {
		return raw, nil
	}
	switch fieldType {
	case FieldTypeNumber:
		return ParseNumber(s)
	case FieldTypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
		}
		return b, nil
	}
	return s, nil
}

// ParseNumber returns an int64 for integral input and a float64 otherwise.
func ParseNumber(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	return f, nil
}
