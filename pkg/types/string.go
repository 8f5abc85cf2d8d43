package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"minirel/pkg/dberrors"
)

// StringMaxSize is the default fixed on-disk width reserved for a
// StringField, matching the slotted-page layout's fixed column widths.
const StringMaxSize = 256

// StringField is the string member of the Field tagged union.
type StringField struct {
	Value   string
	MaxSize int
}

func NewStringField(value string, maxSize int) *StringField {
	if maxSize <= 0 {
		maxSize = StringMaxSize
	}
	if len(value) > maxSize {
		value = value[:maxSize]
	}
	return &StringField{Value: value, MaxSize: maxSize}
}

func (f *StringField) Serialize(w io.Writer) error {
	length := len(f.Value)
	if length > f.MaxSize {
		length = f.MaxSize
	}

	lengthBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBytes, uint32(length)) // #nosec G115
	if _, err := w.Write(lengthBytes); err != nil {
		return err
	}
	if _, err := w.Write([]byte(f.Value[:length])); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, f.MaxSize-length))
	return err
}

func (f *StringField) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, dberrors.NewInvalidArgument("Compare", fmt.Sprintf("cannot compare StringField to %T", other))
	}
	cmp := strings.Compare(f.Value, o.Value)
	switch op {
	case Equals:
		return cmp == 0, nil
	case LessThan:
		return cmp < 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	case NotEqual:
		return cmp != 0, nil
	default:
		return false, dberrors.NewInvalidArgument("Compare", fmt.Sprintf("unsupported predicate %v", op))
	}
}

func (f *StringField) Type() Type {
	return StringType
}

func (f *StringField) String() string {
	return f.Value
}

func (f *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.Value == o.Value
}

func (f *StringField) Hash() (uint32, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(f.Value))
	return h.Sum32(), nil
}
