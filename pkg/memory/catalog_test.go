package memory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirel/pkg/storage/heap"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

func TestCatalog_AddAndLookup(t *testing.T) {
	desc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"n"})
	require.NoError(t, err)
	file, err := heap.NewFile(filepath.Join(t.TempDir(), "t.dat"), desc)
	require.NoError(t, err)

	catalog := NewCatalog()
	id := catalog.AddTable(file, "widgets")

	got, err := catalog.GetDbFile(id)
	require.NoError(t, err)
	assert.Same(t, file, got)

	byName, err := catalog.GetTableID("widgets")
	require.NoError(t, err)
	assert.Equal(t, id, byName)

	schema, err := catalog.GetTupleDesc(id)
	require.NoError(t, err)
	assert.Equal(t, desc, schema)
}

func TestCatalog_UnknownTableReturnsNoSuchElement(t *testing.T) {
	catalog := NewCatalog()
	_, err := catalog.GetDbFile(999)
	assert.Error(t, err)

	_, err = catalog.GetTableID("nope")
	assert.Error(t, err)
}
