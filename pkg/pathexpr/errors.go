package pathexpr

import (
	"errors"
	"fmt"
)

// ErrInvalidExpression indicates text that does not satisfy the path grammar.
var ErrInvalidExpression = errors.New("pathexpr: invalid expression")

// InvalidExpressionError carries the rejected input.
type InvalidExpressionError struct {
	Input  string
	Reason string
}

func (e *InvalidExpressionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("pathexpr: invalid expression %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("pathexpr: invalid expression %q", e.Input)
}

// Is makes errors.Is(err, ErrInvalidExpression) succeed.
func (e *InvalidExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}
