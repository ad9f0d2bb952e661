package query

import (
	"fmt"
	"strings"
)

// Operator is a condition operator as stored on a finder or sent as a
// "field:OPERATOR" query key.
type Operator string

const (
	OpEquals            Operator = "EQUALS"
	OpLike              Operator = "LIKE"
	OpInList            Operator = "IN_LIST"
	OpNotInList         Operator = "NOT_IN_LIST"
	OpIsNull            Operator = "IS_NULL"
	OpIsNotNull         Operator = "IS_NOT_NULL"
	OpGreaterThan       Operator = "GREATER_THAN"
	OpGreaterThanEquals Operator = "GREATER_THAN_EQUALS_TO"
	OpLessThan          Operator = "LESS_THAN"
	OpLessThanEquals    Operator = "LESS_THAN_EQUALS_TO"
)

var operatorAliases = map[string]Operator{
	"EQ":       OpEquals,
	"IN":       OpInList,
	"NIN":      OpNotInList,
	"NULL":     OpIsNull,
	"NOT_NULL": OpIsNotNull,
	"GT":       OpGreaterThan,
	"GTE":      OpGreaterThanEquals,
	"LT":       OpLessThan,
	"LTE":      OpLessThanEquals,
}

var knownOperators = map[Operator]struct{}{
	OpEquals: {}, OpLike: {}, OpInList: {}, OpNotInList: {}, OpIsNull: {},
	OpIsNotNull: {}, OpGreaterThan: {}, OpGreaterThanEquals: {}, OpLessThan: {},
	OpLessThanEquals: {},
}

// ParseOperator accepts the long operator names and their short aliases,
// case-insensitively. An empty string means EQUALS.
func ParseOperator(s string) (Operator, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return OpEquals, nil
	}
	if op, ok := operatorAliases[name]; ok {
		return op, nil
	}
	if _, ok := knownOperators[Operator(name)]; ok {
		return Operator(name), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownOperator, s)
}

// IsList reports whether the operator takes a list operand.
func (o Operator) IsList() bool {
	return o == OpInList || o == OpNotInList
}

// TakesValue reports whether the operator needs an operand at all.
func (o Operator) TakesValue() bool {
	return o != OpIsNull && o != OpIsNotNull
}

func (o Operator) rangeOp() (RangeOp, bool) {
	switch o {
	case OpGreaterThan:
		return GreaterThan, true
	case OpGreaterThanEquals:
		return GreaterThanOrEqual, true
	case OpLessThan:
		return LessThan, true
	case OpLessThanEquals:
		return LessThanOrEqual, true
	}
	return "", false
}
