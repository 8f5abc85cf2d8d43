package memory

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"minirel/pkg/dberrors"
	"minirel/pkg/storage"
	"minirel/pkg/tuple"
)

// Catalog is the BufferPool's tableId -> DbFile registry, the
// collaborator spec.md §6 calls "injected at startup by the
// surrounding engine" and treats as external. A minimal concrete
// implementation is supplied here so the BufferPool has something real
// to call.
type Catalog struct {
	mu      sync.RWMutex
	files   map[int]storage.DbFile
	names   map[string]int
	schemas *ristretto.Cache[int, *tuple.TupleDesc]
}

func NewCatalog() *Catalog {
	// NumCounters/MaxCost/BufferItems follow ristretto's documented
	// starting point for a small, read-mostly cache; GetTupleDesc is a
	// pure lookup over data already held in c.files, so an approximate,
	// async-write cache in front of it loses nothing observable.
	schemas, err := ristretto.NewCache(&ristretto.Config[int, *tuple.TupleDesc]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		// ristretto.NewCache only fails on malformed Config constants
		// above; those are fixed at compile time, so this is
		// unreachable in practice and never surfaced to callers.
		schemas = nil
	}
	return &Catalog{
		files:   make(map[int]storage.DbFile),
		names:   make(map[string]int),
		schemas: schemas,
	}
}

// AddTable registers file under name and returns its stable table id
// (the DbFile's own ID()).
func (c *Catalog) AddTable(file storage.DbFile, name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := file.ID()
	c.files[id] = file
	c.names[name] = id
	if c.schemas != nil {
		c.schemas.Set(id, file.TupleDesc(), 1)
	}
	return id
}

// GetDbFile returns the DbFile registered under tableID, or
// NoSuchElement if none is registered.
func (c *Catalog) GetDbFile(tableID int) (storage.DbFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[tableID]
	if !ok {
		return nil, dberrors.NewNoSuchElement("GetDbFile", fmt.Sprintf("no table with id %d", tableID))
	}
	return f, nil
}

func (c *Catalog) GetTableID(name string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.names[name]
	if !ok {
		return 0, dberrors.NewNoSuchElement("GetTableID", fmt.Sprintf("no table named %q", name))
	}
	return id, nil
}

// GetTupleDesc returns tableID's schema, served from the ristretto
// lookup cache when present (falling back to the authoritative map on
// a cache miss — ristretto's writes are asynchronous, so a freshly
// added table may not be visible in the cache yet).
func (c *Catalog) GetTupleDesc(tableID int) (*tuple.TupleDesc, error) {
	if c.schemas != nil {
		if td, ok := c.schemas.Get(tableID); ok {
			return td, nil
		}
	}
	file, err := c.GetDbFile(tableID)
	if err != nil {
		return nil, err
	}
	return file.TupleDesc(), nil
}
