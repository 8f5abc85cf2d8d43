package memory

import (
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"minirel/pkg/concurrency/lock"
	"minirel/pkg/dberrors"
	"minirel/pkg/logging"
	"minirel/pkg/storage"
	"minirel/pkg/tuple"
)

// DefaultNumPages is the default buffer pool capacity, matching the
// teacher's and original_source's DEFAULT_PAGES.
const DefaultNumPages = 50

// BufferPool is the sole legal path to a page for any transaction: it
// owns the page cache, invokes the LockManager, and implements
// TransactionComplete's commit/abort semantics (NO-STEAL / FORCE at
// commit). One BufferPool exists per database instance.
type BufferPool struct {
	mu          sync.Mutex // serializes structural cache ops: eviction, flush sweeps, discard
	catalog     *Catalog
	cache       PageCache
	lockManager *lock.Manager
	sf          singleflight.Group
}

func NewBufferPool(catalog *Catalog, numPages int) *BufferPool {
	return NewBufferPoolWithLockManager(catalog, numPages, lock.NewManager())
}

// NewBufferPoolWithLockManager builds a BufferPool around a
// caller-supplied LockManager, for wiring a loaded LockConfig's retry
// timings in at startup.
func NewBufferPoolWithLockManager(catalog *Catalog, numPages int, lockManager *lock.Manager) *BufferPool {
	if numPages <= 0 {
		numPages = DefaultNumPages
	}
	return &BufferPool{
		catalog:     catalog,
		cache:       NewLRUPageCache(numPages),
		lockManager: lockManager,
	}
}

// GetPage is the acquisition loop of spec §4.2.2: acquire the lock
// (blocking with timeout via the LockManager), then return the cached
// page or fault it in from the owning DbFile, evicting a clean page if
// the cache is full.
func (bp *BufferPool) GetPage(tid *storage.TransactionID, pid tuple.PageID, perm storage.Permission) (storage.Page, error) {
	if err := bp.lockManager.AcquireLock(pid, tid, perm); err != nil {
		return nil, err
	}

	if page, ok := bp.cache.Get(pid); ok {
		return page, nil
	}

	log := logging.WithPage(int(pid.HashCode()))
	log.Debug("cache miss, faulting in page")

	// Collapse concurrent faults for the same page into one disk read —
	// two transactions racing to acquire the lock above and both
	// missing the cache would otherwise both call ReadPage.
	result, err, _ := bp.sf.Do(mapKey(pid), func() (interface{}, error) {
		if page, ok := bp.cache.Get(pid); ok {
			return page, nil
		}
		dbFile, err := bp.catalog.GetDbFile(pid.TableID())
		if err != nil {
			return nil, err
		}
		page, err := dbFile.ReadPage(pid)
		if err != nil {
			return nil, err
		}

		bp.mu.Lock()
		defer bp.mu.Unlock()
		if err := bp.evictIfFull(); err != nil {
			return nil, err
		}
		if err := bp.cache.Put(pid, page); err != nil {
			return nil, err
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(storage.Page), nil
}

func mapKey(pid tuple.PageID) string {
	return pid.String()
}

// evictIfFull implements NO-STEAL eviction: only once the cache is
// actually at capacity does it discard the least recently used clean
// page. If every cached page is dirty, it fails with DbError
// rather than writing a dirty page early — that failure mode is what
// forces NO-STEAL.
func (bp *BufferPool) evictIfFull() error {
	if bp.cache.Size() < bp.cache.Capacity() {
		return nil
	}

	lru, ok := bp.cache.(*LRUPageCache)
	if !ok {
		return nil
	}

	for _, page := range lru.LeastRecentlyUsed() {
		if page.IsDirty() == nil {
			bp.cache.Remove(page.ID())
			return nil
		}
	}
	return dberrors.NewDbError("evictPage", "BufferPool", "all pages are dirty, cannot evict (NO-STEAL policy)")
}

// UnsafeReleasePage forwards to the LockManager. Calling this is risky
// and may violate strict two-phase locking; it exists as a documented
// escape hatch only — see spec §9.
func (bp *BufferPool) UnsafeReleasePage(tid *storage.TransactionID, pid tuple.PageID) {
	bp.lockManager.UnsafeReleasePage(pid, tid)
}

func (bp *BufferPool) HoldsLock(tid *storage.TransactionID, pid tuple.PageID) bool {
	return bp.lockManager.HoldsLock(pid, tid)
}

// TransactionComplete commits or aborts tid: on commit, every page tid
// holds is flushed (FORCE) and before-imaged; on abort, every page tid
// holds, and every cached page tid dirtied, is discarded from the cache
// so a subsequent read re-faults the
// pre-transaction image from disk (valid only because NO-STEAL ensures
// that image was never overwritten). Locks are released either way.
func (bp *BufferPool) TransactionComplete(tid *storage.TransactionID, commit bool) error {
	pages := bp.lockManager.PagesHeldBy(tid)
	log := logging.WithTx(int(tid.ID()))

	var err error
	if commit {
		log.Debug("committing transaction", "pages", len(pages))
		err = bp.flushPages(pages)
	} else {
		log.Debug("aborting transaction", "pages", len(pages))
		bp.mu.Lock()
		for _, pid := range pages {
			bp.cache.Remove(pid)
		}
		// A page InsertTuple appended to the file is cached dirty without
		// tid ever locking it, so it is found by its dirty owner instead.
		for _, page := range bp.cache.GetAll() {
			if page.IsDirty().Equals(tid) {
				bp.cache.Remove(page.ID())
			}
		}
		bp.mu.Unlock()
	}

	bp.lockManager.ReleaseAll(tid)
	return err
}

// flushPages writes every page in pids to disk concurrently, stopping
// at the first write error. One goroutine per page mirrors the
// teacher's errgroup.Group usage in its DDL-drop fan-out.
func (bp *BufferPool) flushPages(pids []tuple.PageID) error {
	var g errgroup.Group
	for _, pid := range pids {
		pid := pid
		g.Go(func() error {
			return bp.flushPage(pid)
		})
	}
	return g.Wait()
}

func (bp *BufferPool) flushPage(pid tuple.PageID) error {
	bp.mu.Lock()
	page, ok := bp.cache.Get(pid)
	bp.mu.Unlock()
	if !ok {
		return nil
	}
	if page.IsDirty() == nil {
		return nil
	}

	dbFile, err := bp.catalog.GetDbFile(pid.TableID())
	if err != nil {
		return err
	}
	if err := dbFile.WritePage(page); err != nil {
		return err
	}
	page.MarkDirty(false, nil)
	page.SetBeforeImage()
	return nil
}

// FlushAllPages writes every dirty cached page via its DbFile and marks
// it clean, whichever transaction dirtied it. TransactionComplete does
// not call it: its commit path flushes only the committing
// transaction's pages via flushPages. Called while another transaction
// has uncommitted changes, it writes those pages to disk before commit.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	all := bp.cache.GetAll()
	bp.mu.Unlock()

	var g errgroup.Group
	for _, page := range all {
		page := page
		if page.IsDirty() == nil {
			continue
		}
		g.Go(func() error {
			return bp.flushPage(page.ID())
		})
	}
	return g.Wait()
}

// DiscardPage removes pid from the cache without flushing. Used by
// abort and by B-tree-style page reuse in a fuller engine.
func (bp *BufferPool) DiscardPage(pid tuple.PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.cache.Remove(pid)
}

// InsertTuple delegates to tableID's DbFile, then marks every page the
// file dirtied (under tid) and installs it in the cache.
func (bp *BufferPool) InsertTuple(tid *storage.TransactionID, tableID int, t *tuple.Tuple) error {
	dbFile, err := bp.catalog.GetDbFile(tableID)
	if err != nil {
		return err
	}
	dirtied, err := dbFile.InsertTuple(tid, t, bp)
	if err != nil {
		return err
	}
	return bp.markDirtyAndCache(dirtied, tid)
}

// DeleteTuple delegates to the DbFile owning t's current page, then
// marks every dirtied page and installs it in the cache.
func (bp *BufferPool) DeleteTuple(tid *storage.TransactionID, t *tuple.Tuple) error {
	if t.RecordID == nil {
		return dberrors.NewNoSuchElement("DeleteTuple", "tuple has no RecordID")
	}
	dbFile, err := bp.catalog.GetDbFile(t.RecordID.PageID.TableID())
	if err != nil {
		return err
	}
	dirtied, err := dbFile.DeleteTuple(tid, t, bp)
	if err != nil {
		return err
	}
	return bp.markDirtyAndCache(dirtied, tid)
}

func (bp *BufferPool) markDirtyAndCache(pages []storage.Page, tid *storage.TransactionID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for _, p := range pages {
		p.MarkDirty(true, tid)
		// A page already resident updates in place via Put's existing-key
		// branch; a brand-new page may need an eviction first.
		if _, ok := bp.cache.Get(p.ID()); !ok {
			if err := bp.evictIfFull(); err != nil {
				return err
			}
		}
		if err := bp.cache.Put(p.ID(), p); err != nil {
			return err
		}
	}
	return nil
}

// CatalogHandle returns the BufferPool's table registry, for callers
// that need to register new tables before they can be scanned.
func (bp *BufferPool) CatalogHandle() *Catalog {
	return bp.catalog
}
