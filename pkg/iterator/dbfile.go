// Package iterator defines the storage-level and operator-level
// iterator contracts the core exposes: DbFileIterator (a file's raw
// transactional scan) and DbIterator (an operator's output stream,
// e.g. an aggregator).
package iterator

import "minirel/pkg/tuple"

// DbFileIterator is the low-level, transactional scan contract a DbFile
// exposes. It carries no GetTupleDesc — callers already know the
// file's schema — unlike DbIterator, which is a full operator.
type DbFileIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*tuple.Tuple, error)
	Rewind() error
	Close() error
}
