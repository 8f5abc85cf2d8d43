// Package heap implements the unordered, fixed-page-size table format:
// HeapPageID, HeapPage (bitmap-header slotted page), HeapFile, and the
// transactional page-sequential scan iterators.
package heap

import (
	"fmt"
	"hash/fnv"

	"minirel/pkg/tuple"
)

// PageID is the concrete PageId for heap-organized tables: a table id
// plus a zero-based page number.
type PageID struct {
	tableID int
	pageNo  int
}

func NewPageID(tableID, pageNo int) *PageID {
	return &PageID{tableID: tableID, pageNo: pageNo}
}

func (p *PageID) TableID() int {
	return p.tableID
}

func (p *PageID) PageNo() int {
	return p.pageNo
}

func (p *PageID) Equals(other tuple.PageID) bool {
	o, ok := other.(*PageID)
	return ok && p.tableID == o.tableID && p.pageNo == o.pageNo
}

func (p *PageID) String() string {
	return fmt.Sprintf("heap.PageID(table=%d,page=%d)", p.tableID, p.pageNo)
}

// HashCode is a stable FNV-1a hash of (tableID, pageNo), used by the
// BufferPool's page cache.
func (p *PageID) HashCode() uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%d", p.tableID, p.pageNo)
	return h.Sum32()
}
