package types

import "io"

// Field is the tagged-union value a Tuple carries in one column. The
// aggregators and HeapPage never cast a Field directly; they type-switch
// on the concrete implementation and report InvalidArgument on mismatch,
// per the no-unchecked-cast discipline this package enforces.
type Field interface {
	// Serialize writes the field's on-disk representation.
	Serialize(w io.Writer) error

	// Compare evaluates op against other, which must be the same
	// concrete type. Implementations return (false, error) when the
	// types don't match rather than panicking.
	Compare(op Op, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (uint32, error)
}
