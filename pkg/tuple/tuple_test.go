package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirel/pkg/types"
)

func TestNewTupleDesc_RejectsMismatchedNameCount(t *testing.T) {
	_, err := NewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"only_one"})
	assert.Error(t, err)
}

func TestTupleDesc_Size(t *testing.T) {
	td, err := NewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 8+4+types.StringMaxSize, td.Size())
}

func TestMerge_ConcatenatesFieldsInOrder(t *testing.T) {
	left, _ := NewTupleDesc([]types.Type{types.StringType}, []string{"group"})
	right, _ := NewTupleDesc([]types.Type{types.IntType}, []string{"value"})

	merged := Merge(left, right)
	require.Equal(t, 2, merged.NumFields())
	assert.Equal(t, types.StringType, merged.FieldType(0))
	assert.Equal(t, types.IntType, merged.FieldType(1))
	assert.Equal(t, "group", merged.FieldName(0))
	assert.Equal(t, "value", merged.FieldName(1))
}

func TestTuple_SetAndGetField(t *testing.T) {
	td, _ := NewTupleDesc([]types.Type{types.IntType}, []string{"n"})
	tup := NewTuple(td)
	tup.SetField(0, types.NewIntField(7))
	assert.Equal(t, 7, tup.Field(0).(*types.IntField).Value)
	assert.Nil(t, tup.RecordID)
}
