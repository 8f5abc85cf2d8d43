package tuple

import (
	"fmt"

	"minirel/pkg/types"
)

// TupleDesc describes the schema of a Tuple: an ordered list of field
// types, each with an optional name used only for display.
type TupleDesc struct {
	fieldTypes []types.Type
	fieldNames []string
}

func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDesc, error) {
	if len(fieldNames) != 0 && len(fieldNames) != len(fieldTypes) {
		return nil, fmt.Errorf("tuple: %d field names for %d field types", len(fieldNames), len(fieldTypes))
	}
	names := fieldNames
	if names == nil {
		names = make([]string, len(fieldTypes))
	}
	return &TupleDesc{fieldTypes: fieldTypes, fieldNames: names}, nil
}

func (td *TupleDesc) NumFields() int {
	return len(td.fieldTypes)
}

func (td *TupleDesc) FieldType(i int) types.Type {
	return td.fieldTypes[i]
}

func (td *TupleDesc) FieldName(i int) string {
	return td.fieldNames[i]
}

// Size returns the fixed on-disk width, in bytes, of one tuple matching
// this schema.
func (td *TupleDesc) Size() int {
	size := 0
	for _, t := range td.fieldTypes {
		switch t {
		case types.IntType:
			size += 8
		case types.StringType:
			size += 4 + types.StringMaxSize
		}
	}
	return size
}

// Merge concatenates two descriptors, td1's fields first.
func Merge(td1, td2 *TupleDesc) *TupleDesc {
	fieldTypes := append(append([]types.Type{}, td1.fieldTypes...), td2.fieldTypes...)
	fieldNames := append(append([]string{}, td1.fieldNames...), td2.fieldNames...)
	merged, _ := NewTupleDesc(fieldTypes, fieldNames)
	return merged
}
