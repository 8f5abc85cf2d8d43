package heap

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"

	"minirel/pkg/dberrors"
	"minirel/pkg/iterator"
	"minirel/pkg/storage"
	"minirel/pkg/tuple"
)

// File is an unordered table of fixed-size pages backed by a single OS
// file. It never caches anything itself — every read in its own
// iterator still goes through the BufferPool via PageGetter.
type File struct {
	path string
	desc *tuple.TupleDesc
	id   int
}

func NewFile(path string, desc *tuple.TupleDesc) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, dberrors.NewIoError("NewFile", "HeapFile", err)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(abs))
	return &File{path: path, desc: desc, id: int(h.Sum32())}, nil
}

func (f *File) ID() int {
	return f.id
}

func (f *File) TupleDesc() *tuple.TupleDesc {
	return f.desc
}

func (f *File) NumPages() int {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0
	}
	pageSize := int64(storage.PageSize())
	return int((info.Size() + pageSize - 1) / pageSize)
}

// ReadPage seeks to pid's offset and reads exactly one page's worth of
// bytes. A short read past EOF is the caller's signal that the page
// doesn't exist yet; HeapFile itself never synthesizes blank pages —
// that is insertTuple's job.
func (f *File) ReadPage(pid tuple.PageID) (storage.Page, error) {
	hpid, ok := pid.(*PageID)
	if !ok {
		return nil, dberrors.NewInvalidArgument("ReadPage", fmt.Sprintf("not a heap.PageID: %T", pid))
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, dberrors.NewIoError("ReadPage", "HeapFile", err)
	}
	defer file.Close()

	pageSize := storage.PageSize()
	offset := int64(hpid.PageNo()) * int64(pageSize)
	data := make([]byte, pageSize)
	if _, err := file.ReadAt(data, offset); err != nil && err != io.EOF {
		return nil, dberrors.NewIoError("ReadPage", "HeapFile", err)
	}

	return NewPage(hpid, f.desc, data)
}

// WritePage seeks to the page's offset and writes its byte image,
// extending the file if the offset lies past current length.
func (f *File) WritePage(p storage.Page) error {
	hpid, ok := p.ID().(*PageID)
	if !ok {
		return dberrors.NewInvalidArgument("WritePage", fmt.Sprintf("not a heap.PageID: %T", p.ID()))
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return dberrors.NewIoError("WritePage", "HeapFile", err)
	}
	defer file.Close()

	pageSize := storage.PageSize()
	offset := int64(hpid.PageNo()) * int64(pageSize)
	if _, err := file.WriteAt(p.PageData(), offset); err != nil {
		return dberrors.NewIoError("WritePage", "HeapFile", err)
	}
	return nil
}

// InsertTuple scans pages 0..NumPages for one with a free slot
// (READ_ONLY probe, then re-acquire READ_WRITE to actually insert); if
// none has room, a fresh page is appended directly to disk, matching
// original_source's two-step "write to disk, then let the BufferPool
// cache it" order for brand-new pages.
func (f *File) InsertTuple(tid *storage.TransactionID, t *tuple.Tuple, pages storage.PageGetter) ([]storage.Page, error) {
	numPages := f.NumPages()

	for i := 0; i < numPages; i++ {
		pid := NewPageID(f.id, i)
		page, err := pages.GetPage(tid, pid, storage.ReadOnly)
		if err != nil {
			return nil, err
		}
		hp := page.(*Page)
		if hp.NumEmptySlots() == 0 {
			continue
		}
		page, err = pages.GetPage(tid, pid, storage.ReadWrite)
		if err != nil {
			return nil, err
		}
		hp = page.(*Page)
		if err := hp.InsertTuple(t); err != nil {
			return nil, err
		}
		return []storage.Page{hp}, nil
	}

	pid := NewPageID(f.id, numPages)
	page := NewEmptyPage(pid, f.desc)
	if err := page.InsertTuple(t); err != nil {
		return nil, err
	}
	if err := f.WritePage(page); err != nil {
		return nil, err
	}
	return []storage.Page{page}, nil
}

// DeleteTuple requires t to carry a non-nil RecordID and deletes it
// from that exact page, acquired READ_WRITE.
func (f *File) DeleteTuple(tid *storage.TransactionID, t *tuple.Tuple, pages storage.PageGetter) ([]storage.Page, error) {
	if t.RecordID == nil {
		return nil, dberrors.NewNoSuchElement("DeleteTuple", "tuple has no RecordID")
	}
	page, err := pages.GetPage(tid, t.RecordID.PageID, storage.ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := page.(*Page)
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	return []storage.Page{hp}, nil
}

// Iterator returns a transactional page-sequential scan over this
// file's tuples, reading every page through pages so in-flight dirty
// pages are visible.
func (f *File) Iterator(tid *storage.TransactionID, pages storage.PageGetter) iterator.DbFileIterator {
	return &FileIterator{file: f, tid: tid, pages: pages, nextPageNo: -1}
}
