// Package lock implements the BufferPool's internal page-granularity
// lock manager: per-page shared/exclusive holders with upgrade, and a
// timeout-based deadlock-avoidance acquisition loop.
package lock

import (
	"math/rand"
	"sync"
	"time"

	"minirel/pkg/dberrors"
	"minirel/pkg/logging"
	"minirel/pkg/storage"
	"minirel/pkg/tuple"
)

// retry/timeout constants per spec §4.2.2 and §5: a randomized
// per-attempt delay in [500ms, 550ms), cumulative wait capped at 5s.
const (
	retryMinMillis = 500
	retryJitter    = 50
	maxWaitMillis  = 5000
)

// Table holds, for every page, the map of holding transactions to the
// permission they hold. A single mutex serializes every operation;
// critical sections are O(holders of the page in question).
type Table struct {
	mu    sync.Mutex
	locks map[uint32]map[int64]storage.Permission
	// pids retains one PageID per hash so PagesHeldBy can report
	// identity, since the lock table itself is keyed by hash code.
	pids map[uint32]tuple.PageID
}

func NewTable() *Table {
	return &Table{
		locks: make(map[uint32]map[int64]storage.Permission),
		pids:  make(map[uint32]tuple.PageID),
	}
}

// AcquireLock implements the grant rules of spec §4.2.1: a READ request
// is granted if there is no exclusive holder, or tid is it; a WRITE
// request is granted if tid already holds exclusive, or there is no
// exclusive holder and tid is the sole shared holder (or there are no
// shared holders at all). It never blocks — waiting is the caller's
// concern.
func (t *Table) AcquireLock(pid tuple.PageID, tid *storage.TransactionID, perm storage.Permission) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := pid.HashCode()
	holders := t.locks[key]
	if holders == nil {
		holders = make(map[int64]storage.Permission)
		t.locks[key] = holders
		t.pids[key] = pid
	}

	var exclusiveHolder int64
	hasExclusive := false
	sharedCount := 0
	selfHasShared := false

	for id, p := range holders {
		if p == storage.ReadWrite {
			exclusiveHolder = id
			hasExclusive = true
		} else {
			sharedCount++
			if id == tid.ID() {
				selfHasShared = true
			}
		}
	}

	granted := false
	switch perm {
	case storage.ReadOnly:
		granted = !hasExclusive || exclusiveHolder == tid.ID()
	case storage.ReadWrite:
		if hasExclusive && exclusiveHolder == tid.ID() {
			granted = true
		} else if !hasExclusive && (sharedCount == 0 || (sharedCount == 1 && selfHasShared)) {
			granted = true
		}
	}

	if granted {
		holders[tid.ID()] = perm
	}
	return granted
}

// ReleaseAll removes tid from every page's holder set.
func (t *Table) ReleaseAll(tid *storage.TransactionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, holders := range t.locks {
		delete(holders, tid.ID())
	}
}

// UnsafeRelease removes just tid's entry on pid. Caller accepts the
// loss of strict two-phase-locking guarantees — see spec §9.
func (t *Table) UnsafeRelease(pid tuple.PageID, tid *storage.TransactionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if holders, ok := t.locks[pid.HashCode()]; ok {
		delete(holders, tid.ID())
	}
}

func (t *Table) HoldsLock(pid tuple.PageID, tid *storage.TransactionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	holders, ok := t.locks[pid.HashCode()]
	if !ok {
		return false
	}
	_, held := holders[tid.ID()]
	return held
}

// PagesHeldBy returns every page tid currently holds a lock on.
func (t *Table) PagesHeldBy(tid *storage.TransactionID) []tuple.PageID {
	t.mu.Lock()
	defer t.mu.Unlock()
	var pages []tuple.PageID
	for key, holders := range t.locks {
		if _, held := holders[tid.ID()]; held {
			pages = append(pages, t.pids[key])
		}
	}
	return pages
}

// Manager is the BufferPool's lock manager: Table plus the
// timeout-based acquisition loop that turns a denied AcquireLock into
// either a successful wait or a TransactionAborted.
type Manager struct {
	table          *Table
	rand           *rand.Rand
	mu             sync.Mutex
	retryMinMillis int
	retryJitter    int
	maxWaitMillis  int
}

// NewManager builds a Manager using the package's built-in retry/timeout
// constants.
func NewManager() *Manager {
	return NewManagerWithTimings(retryMinMillis, retryJitter, maxWaitMillis)
}

// NewManagerWithTimings builds a Manager with caller-supplied retry
// timings, for wiring a loaded LockConfig in at startup.
func NewManagerWithTimings(retryMin, jitter, maxWait int) *Manager {
	return &Manager{
		table:          NewTable(),
		rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
		retryMinMillis: retryMin,
		retryJitter:    jitter,
		maxWaitMillis:  maxWait,
	}
}

// AcquireLock blocks the calling goroutine until tid holds perm on pid,
// retrying after every denial at a randomized interval of retryMin plus
// [0, jitter) milliseconds ([500ms, 550ms) with NewManager's defaults).
// This is deadlock *avoidance* by victim timeout, not detection: if
// cumulative sleep exceeds maxWait (5 seconds by default), it aborts
// with TransactionAborted. Non-cyclic waits resolve well under that bound.
func (m *Manager) AcquireLock(pid tuple.PageID, tid *storage.TransactionID, perm storage.Permission) error {
	log := logging.WithLock(int(tid.ID()), pid.String())
	var waited time.Duration

	for {
		if m.table.AcquireLock(pid, tid, perm) {
			return nil
		}

		delay := time.Duration(m.retryMinMillis+m.nextJitter()) * time.Millisecond
		log.Debug("lock denied, retrying", "perm", perm.String(), "waited_ms", waited.Milliseconds())
		time.Sleep(delay)
		waited += delay

		if waited > time.Duration(m.maxWaitMillis)*time.Millisecond {
			log.Warn("lock acquisition timed out, aborting transaction")
			return dberrors.NewTransactionAborted("AcquireLock", tid)
		}
	}
}

func (m *Manager) nextJitter() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	jitter := m.retryJitter
	if jitter <= 0 {
		jitter = 1
	}
	return m.rand.Intn(jitter)
}

func (m *Manager) UnsafeReleasePage(pid tuple.PageID, tid *storage.TransactionID) {
	m.table.UnsafeRelease(pid, tid)
}

func (m *Manager) ReleaseAll(tid *storage.TransactionID) {
	m.table.ReleaseAll(tid)
}

func (m *Manager) HoldsLock(pid tuple.PageID, tid *storage.TransactionID) bool {
	return m.table.HoldsLock(pid, tid)
}

func (m *Manager) PagesHeldBy(tid *storage.TransactionID) []tuple.PageID {
	return m.table.PagesHeldBy(tid)
}
