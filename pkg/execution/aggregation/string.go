package aggregation

import (
	"sync"

	"minirel/pkg/dberrors"
	"minirel/pkg/iterator"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

// StringAggregator computes COUNT over a string field, optionally
// grouped by another field. It is constructed to fail fast: any op
// other than Count is rejected at construction with InvalidArgument,
// rather than silently producing nothing at iteration time.
type StringAggregator struct {
	mu           sync.Mutex
	gbFieldIndex int
	gbFieldType  types.Type
	aggField     int

	order  []string
	keys   map[string]GroupKey
	values map[string][]string
}

// NewStringAggregator constructs an aggregator. op must be Count; any
// other value is rejected immediately.
func NewStringAggregator(gbFieldIndex int, gbFieldType types.Type, aggField int, op AggregateOp) (*StringAggregator, error) {
	if op != Count {
		return nil, dberrors.NewInvalidArgument("NewStringAggregator", "string aggregation supports only COUNT, got "+op.String())
	}
	return &StringAggregator{
		gbFieldIndex: gbFieldIndex,
		gbFieldType:  gbFieldType,
		aggField:     aggField,
		keys:         make(map[string]GroupKey),
		values:       make(map[string][]string),
	}, nil
}

func (a *StringAggregator) Merge(t *tuple.Tuple) error {
	field := t.Field(a.aggField)
	strField, ok := field.(*types.StringField)
	if !ok {
		return dberrors.NewInvalidArgument("StringAggregator.Merge", "aggregate field is not a string field")
	}

	key, err := a.groupKeyFor(t)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	ck := key.comparable()
	if _, seen := a.keys[ck]; !seen {
		a.keys[ck] = key
		a.order = append(a.order, ck)
	}
	a.values[ck] = append(a.values[ck], strField.Value)
	return nil
}

func (a *StringAggregator) groupKeyFor(t *tuple.Tuple) (GroupKey, error) {
	if a.gbFieldIndex == NoGrouping {
		return NoneKey(), nil
	}
	f := t.Field(a.gbFieldIndex)
	if f == nil {
		return GroupKey{}, dberrors.NewInvalidArgument("StringAggregator.Merge", "missing group-by field")
	}
	return SomeKey(f), nil
}

func (a *StringAggregator) TupleDesc() *tuple.TupleDesc {
	if a.gbFieldIndex == NoGrouping {
		td, _ := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"aggregateVal"})
		return td
	}
	td, _ := tuple.NewTupleDesc([]types.Type{a.gbFieldType, types.IntType}, []string{"groupVal", "aggregateVal"})
	return td
}

func (a *StringAggregator) Iterator() iterator.DbIterator {
	return newAggregatorIterator(a.TupleDesc(), a.orderSnapshot, a.keyOf, a.reduce)
}

func (a *StringAggregator) orderSnapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *StringAggregator) keyOf(ck string) GroupKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keys[ck]
}

func (a *StringAggregator) reduce(ck string) (types.Field, error) {
	a.mu.Lock()
	n := len(a.values[ck])
	a.mu.Unlock()
	return types.NewIntField(n), nil
}
