package iterator

import "minirel/pkg/tuple"

// DbIterator is the operator-level stream contract: an aggregator's
// output, or any higher-level query operator built above it.
type DbIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*tuple.Tuple, error)
	Rewind() error
	Close() error
	TupleDesc() *tuple.TupleDesc
}
