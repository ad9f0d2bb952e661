package query

import "errors"

var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrInvalidValue    = errors.New("invalid value")
)
