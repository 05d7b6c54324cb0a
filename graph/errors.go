package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("graph: store is closed")
)

// RefError reports a reference to an identity with no backing record,
// raised only by stores created with reference enforcement.
type RefError struct {
	// Attr is the attribute carrying the dangling reference.
	Attr string
	// From is the entity holding the reference.
	From Ident
	// To is the referenced identity with no record.
	To Ident
}

func (e *RefError) Error() string {
	return fmt.Sprintf("graph: %s on entity %d references %d, which has no record", e.Attr, e.From, e.To)
}

// ConflictError reports two upsert-merged entities disagreeing on a
// single-valued attribute.
type ConflictError struct {
	// Attr is the conflicting attribute.
	Attr string
	// Old and New are the two irreconcilable values.
	Old, New any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("graph: conflicting values for single-valued %s: %v vs %v", e.Attr, e.Old, e.New)
}
