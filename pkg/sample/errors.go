package sample

import (
	"errors"
	"fmt"
)

// ErrEmptySample is returned when an operation requires at least one row.
var ErrEmptySample = errors.New("sample has no rows")

// ErrNotFitted is returned when a model or transform is used before fitting.
var ErrNotFitted = errors.New("not fitted")

// SchemaMismatchError reports a column-level disagreement between a sample
// and the schema it is being used against.
type SchemaMismatchError struct {
	Column string
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema mismatch on column %q: %s", e.Column, e.Detail)
	}
	return fmt.Sprintf("schema mismatch: %s", e.Detail)
}

// InvalidParameterError reports a parameter outside its valid range.
type InvalidParameterError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Reason)
}
