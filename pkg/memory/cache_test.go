package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirel/pkg/storage/heap"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

func newHeapPage(t *testing.T, tableID, pageNo int) *heap.Page {
	t.Helper()
	desc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"n"})
	require.NoError(t, err)
	return heap.NewEmptyPage(heap.NewPageID(tableID, pageNo), desc)
}

func TestLRUPageCache_PutAndGet(t *testing.T) {
	cache := NewLRUPageCache(2)
	page := newHeapPage(t, 1, 0)

	require.NoError(t, cache.Put(page.ID(), page))
	got, ok := cache.Get(page.ID())
	require.True(t, ok)
	assert.Same(t, page, got)
}

func TestLRUPageCache_PutFailsWhenFull(t *testing.T) {
	cache := NewLRUPageCache(1)
	p0 := newHeapPage(t, 1, 0)
	p1 := newHeapPage(t, 1, 1)

	require.NoError(t, cache.Put(p0.ID(), p0))
	err := cache.Put(p1.ID(), p1)
	assert.Error(t, err)
}

func TestLRUPageCache_GetPromotesToFront(t *testing.T) {
	cache := NewLRUPageCache(2)
	p0 := newHeapPage(t, 1, 0)
	p1 := newHeapPage(t, 1, 1)
	require.NoError(t, cache.Put(p0.ID(), p0))
	require.NoError(t, cache.Put(p1.ID(), p1))

	_, _ = cache.Get(p0.ID())
	lru := cache.LeastRecentlyUsed()
	require.Len(t, lru, 2)
	assert.True(t, lru[0].ID().Equals(p1.ID()))
}

func TestLRUPageCache_RemoveAndSize(t *testing.T) {
	cache := NewLRUPageCache(2)
	page := newHeapPage(t, 1, 0)
	require.NoError(t, cache.Put(page.ID(), page))
	assert.Equal(t, 1, cache.Size())

	cache.Remove(page.ID())
	assert.Equal(t, 0, cache.Size())
	_, ok := cache.Get(page.ID())
	assert.False(t, ok)
}

func TestLRUPageCache_Capacity(t *testing.T) {
	cache := NewLRUPageCache(3)
	assert.Equal(t, 3, cache.Capacity())
	require.NoError(t, cache.Put(newHeapPage(t, 1, 0).ID(), newHeapPage(t, 1, 0)))
	assert.Equal(t, 3, cache.Capacity())
}

func TestLRUPageCache_Clear(t *testing.T) {
	cache := NewLRUPageCache(2)
	require.NoError(t, cache.Put(newHeapPage(t, 1, 0).ID(), newHeapPage(t, 1, 0)))
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}
