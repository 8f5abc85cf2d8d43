package heap

import (
	"minirel/pkg/dberrors"
	"minirel/pkg/storage"
	"minirel/pkg/tuple"
)

// FileIterator is the transactional page-sequential scan over a
// File's tuples. It is a standalone state object (not a closure over
// File) per the "avoid inner-class iterators" design note: its only
// captured inputs are the file, the transaction, and a PageGetter.
type FileIterator struct {
	file       *File
	tid        *storage.TransactionID
	pages      storage.PageGetter
	isOpen     bool
	nextPageNo int
	pageIter   tuple.TupleIterator
}

func (it *FileIterator) Open() error {
	it.isOpen = true
	it.nextPageNo = -1
	it.pageIter = nil
	return nil
}

func (it *FileIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, nil
	}
	for {
		if it.pageIter != nil && it.pageIter.HasNext() {
			return true, nil
		}
		if it.nextPageNo+1 >= it.file.NumPages() {
			return false, nil
		}
		it.nextPageNo++
		pid := NewPageID(it.file.id, it.nextPageNo)
		page, err := it.pages.GetPage(it.tid, pid, storage.ReadOnly)
		if err != nil {
			return false, err
		}
		it.pageIter = page.Iterator()
	}
}

func (it *FileIterator) Next() (*tuple.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberrors.NewNoSuchElement("FileIterator.Next", "scan exhausted")
	}
	return it.pageIter.Next()
}

func (it *FileIterator) Rewind() error {
	if err := it.Close(); err != nil {
		return err
	}
	return it.Open()
}

func (it *FileIterator) Close() error {
	it.nextPageNo = -1
	it.pageIter = nil
	it.isOpen = false
	return nil
}
