package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"

	"minirel/pkg/dberrors"
)

// IntField is the integer member of the Field tagged union.
type IntField struct {
	Value int
}

func NewIntField(value int) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(f.Value))) // #nosec G115
	_, err := w.Write(buf)
	return err
}

func (f *IntField) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok {
		return false, dberrors.NewInvalidArgument("Compare", fmt.Sprintf("cannot compare IntField to %T", other))
	}
	a, b := f.Value, o.Value
	switch op {
	case Equals:
		return a == b, nil
	case LessThan:
		return a < b, nil
	case GreaterThan:
		return a > b, nil
	case LessThanOrEqual:
		return a <= b, nil
	case GreaterThanOrEqual:
		return a >= b, nil
	case NotEqual:
		return a != b, nil
	default:
		return false, dberrors.NewInvalidArgument("Compare", fmt.Sprintf("unsupported predicate %v", op))
	}
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.Itoa(f.Value)
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() (uint32, error) {
	h := fnv.New32a()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(f.Value))) // #nosec G115
	_, _ = h.Write(buf)
	return h.Sum32(), nil
}
