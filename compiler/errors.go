package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps a schema validator rejection. The store is never
	// called when validation fails.
	ErrValidation = errors.New("compiler: validation failed")
)

// ShapeError reports a malformed declaration shape, raised only under
// ShapeStrict. Under ShapeLenient the offending element is skipped.
type ShapeError struct {
	// Source names the schema source containing the element.
	Source string
	// Group is the zero-based group index within the source.
	Group int
	// Msg describes the malformed shape.
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("compiler: %s group %d: %s", e.Source, e.Group, e.Msg)
}
