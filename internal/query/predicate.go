package query

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Predicate is one typed comparison against a single field. The set of
// implementations is closed.
type Predicate interface {
	expression() interface{}
}

// Equals matches the exact value.
type Equals struct {
	Value interface{}
}

// In matches any of Values. An empty list matches nothing.
type In struct {
	Values []interface{}
}

// NotIn matches none of Values.
type NotIn struct {
	Values []interface{}
}

// RangeOp is a MongoDB comparison operator.
type RangeOp string

const (
	GreaterThan        RangeOp = "$gt"
	GreaterThanOrEqual RangeOp = "$gte"
	LessThan           RangeOp = "$lt"
	LessThanOrEqual    RangeOp = "$lte"
)

// Range is an ordered comparison.
type Range struct {
	Op    RangeOp
	Value interface{}
}

// Regex is a pattern match.
type Regex struct {
	Pattern         string
	CaseInsensitive bool
}

// IsNull matches missing or null fields.
type IsNull struct{}

// IsNotNull matches present, non-null fields.
type IsNotNull struct{}

func (p Equals) expression() interface{} { return p.Value }

func (p In) expression() interface{} { return bson.D{{Key: "$in", Value: nonNil(p.Values)}} }

func (p NotIn) expression() interface{} { return bson.D{{Key: "$nin", Value: nonNil(p.Values)}} }

func (p Range) expression() interface{} { return bson.D{{Key: string(p.Op), Value: p.Value}} }

func (p Regex) expression() interface{} {
	if p.CaseInsensitive {
		return bson.D{{Key: "$regex", Value: p.Pattern}, {Key: "$options", Value: "i"}}
	}
	return bson.D{{Key: "$regex", Value: p.Pattern}}
}

func (IsNull) expression() interface{} { return nil }

func (IsNotNull) expression() interface{} { return bson.D{{Key: "$ne", Value: nil}} }

func nonNil(values []interface{}) []interface{} {
	if values == nil {
		return []interface{}{}
	}
	return values
}

// NewPredicate shapes an already coerced value for op.
func NewPredicate(op Operator, value interface{}) (Predicate, error) {
	switch op {
	case OpEquals:
		return Equals{Value: value}, nil
	case OpLike:
		return Regex{Pattern: fmt.Sprint(value), CaseInsensitive: true}, nil
	case OpInList:
		return In{Values: asList(value)}, nil
	case OpNotInList:
		return NotIn{Values: asList(value)}, nil
	case OpIsNull:
		return IsNull{}, nil
	case OpIsNotNull:
		return IsNotNull{}, nil
	}
	if rop, ok := op.rangeOp(); ok {
		return Range{Op: rop, Value: value}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, op)
}

// asList wraps a scalar operand; list operands pass through.
func asList(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return []interface{}{value}
}
