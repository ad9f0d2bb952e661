package query

import (
	"regexp"
	"strings"
)

// SearchPredicate builds the free-text search predicate for one field:
// numbers and booleans compare exactly, everything else is a case-insensitive
// substring match.
func SearchPredicate(fieldType, raw string) (Predicate, error) {
	switch fieldType {
	case FieldTypeNumber, FieldTypeBoolean:
		v, err := coerceScalar(fieldType, raw)
		if err != nil {
			return nil, err
		}
		return Equals{Value: v}, nil
	}
	return Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(raw)), CaseInsensitive: true}, nil
}
