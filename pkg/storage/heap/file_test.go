package heap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirel/pkg/storage"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

// directPages is a storage.PageGetter that bypasses any lock manager or
// cache, reading/writing straight through to the file under test.
type directPages struct {
	file *File
}

func (d directPages) GetPage(tid *storage.TransactionID, pid tuple.PageID, perm storage.Permission) (storage.Page, error) {
	return d.file.ReadPage(pid)
}

func newTestFile(t *testing.T) (*File, *tuple.TupleDesc) {
	t.Helper()
	desc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"n"})
	require.NoError(t, err)
	file, err := NewFile(filepath.Join(t.TempDir(), "t.dat"), desc)
	require.NoError(t, err)
	return file, desc
}

func TestFile_NumPagesMatchesCeilOfLength(t *testing.T) {
	file, desc := newTestFile(t)
	tid := storage.NewTransactionID()
	pages := directPages{file: file}

	for i := 0; i < 3; i++ {
		tup := tuple.NewTuple(desc)
		tup.SetField(0, types.NewIntField(i))
		dirtied, err := file.InsertTuple(tid, tup, pages)
		require.NoError(t, err)
		for _, p := range dirtied {
			require.NoError(t, file.WritePage(p))
		}
	}

	pageSize := int64(storage.PageSize())
	stat, err := os.Stat(file.path)
	require.NoError(t, err)
	expected := int((stat.Size() + pageSize - 1) / pageSize)
	assert.Equal(t, expected, file.NumPages())
}

func TestFile_InsertThenDeleteTuple(t *testing.T) {
	file, desc := newTestFile(t)
	tid := storage.NewTransactionID()
	pages := directPages{file: file}

	tup := tuple.NewTuple(desc)
	tup.SetField(0, types.NewIntField(42))
	dirtied, err := file.InsertTuple(tid, tup, pages)
	require.NoError(t, err)
	require.Len(t, dirtied, 1)
	require.NoError(t, file.WritePage(dirtied[0]))
	require.NotNil(t, tup.RecordID)

	dirtied, err = file.DeleteTuple(tid, tup, pages)
	require.NoError(t, err)
	require.Len(t, dirtied, 1)
}

func TestFile_DeleteTupleWithoutRecordIDFails(t *testing.T) {
	file, desc := newTestFile(t)
	tid := storage.NewTransactionID()
	pages := directPages{file: file}

	tup := tuple.NewTuple(desc)
	_, err := file.DeleteTuple(tid, tup, pages)
	assert.Error(t, err)
}

func TestFileIterator_ScansAllInsertedTuples(t *testing.T) {
	file, desc := newTestFile(t)
	tid := storage.NewTransactionID()
	pages := directPages{file: file}

	for i := 0; i < 5; i++ {
		tup := tuple.NewTuple(desc)
		tup.SetField(0, types.NewIntField(i))
		dirtied, err := file.InsertTuple(tid, tup, pages)
		require.NoError(t, err)
		for _, p := range dirtied {
			require.NoError(t, file.WritePage(p))
		}
	}

	it := file.Iterator(tid, pages)
	require.NoError(t, it.Open())

	seen := map[int]bool{}
	for {
		ok, err := it.HasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		tup, err := it.Next()
		require.NoError(t, err)
		seen[tup.Field(0).(*types.IntField).Value] = true
	}
	assert.Len(t, seen, 5)
}
