package aggregation

import (
	"minirel/pkg/dberrors"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

// AggregatorIterator is a standalone DbIterator over an aggregator's
// group map. It is not a snapshot: order, keyOf, and reduce are the
// aggregator's own accessors, so a Merge racing with iteration is
// visible to an in-progress scan — the aggregator does not promise
// snapshot isolation between Iterator() and the Merge calls that
// follow it.
type AggregatorIterator struct {
	desc   *tuple.TupleDesc
	order  func() []string
	keyOf  func(ck string) GroupKey
	reduce func(ck string) (types.Field, error)

	isOpen bool
	pos    int
}

func newAggregatorIterator(desc *tuple.TupleDesc, order func() []string, keyOf func(string) GroupKey, reduce func(string) (types.Field, error)) *AggregatorIterator {
	return &AggregatorIterator{
		desc:   desc,
		order:  order,
		keyOf:  keyOf,
		reduce: reduce,
	}
}

func (it *AggregatorIterator) Open() error {
	it.isOpen = true
	it.pos = 0
	return nil
}

func (it *AggregatorIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, nil
	}
	return it.pos < len(it.order()), nil
}

func (it *AggregatorIterator) Next() (*tuple.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberrors.NewNoSuchElement("AggregatorIterator.Next", "no more groups")
	}

	ck := it.order()[it.pos]
	it.pos++
	key := it.keyOf(ck)
	value, err := it.reduce(ck)
	if err != nil {
		return nil, err
	}

	out := tuple.NewTuple(it.desc)
	if key.IsNone() {
		out.SetField(0, value)
		return out, nil
	}
	out.SetField(0, key.Field())
	out.SetField(1, value)
	return out, nil
}

func (it *AggregatorIterator) Rewind() error {
	it.pos = 0
	return nil
}

func (it *AggregatorIterator) Close() error {
	it.isOpen = false
	return nil
}

func (it *AggregatorIterator) TupleDesc() *tuple.TupleDesc {
	return it.desc
}
