package aggregation

import (
	"sync"

	"minirel/pkg/dberrors"
	"minirel/pkg/iterator"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

// IntegerAggregator computes COUNT, SUM, AVG, MIN, or MAX over an
// integer field, optionally grouped by another field. Each group holds
// the full list of merged values rather than a running accumulator, so
// the reduction happens at iteration time, not at merge time.
type IntegerAggregator struct {
	mu           sync.Mutex
	gbFieldIndex int
	gbFieldType  types.Type
	aggField     int
	op           AggregateOp

	order  []string // comparable() in first-seen order, for a stable re-iteration
	keys   map[string]GroupKey
	values map[string][]int
}

// NewIntegerAggregator constructs an aggregator. gbFieldIndex may be
// NoGrouping, in which case gbFieldType is ignored.
func NewIntegerAggregator(gbFieldIndex int, gbFieldType types.Type, aggField int, op AggregateOp) *IntegerAggregator {
	return &IntegerAggregator{
		gbFieldIndex: gbFieldIndex,
		gbFieldType:  gbFieldType,
		aggField:     aggField,
		op:           op,
		keys:         make(map[string]GroupKey),
		values:       make(map[string][]int),
	}
}

// Merge reads the integer at aggField and the group key at
// gbFieldIndex (or NoneKey under NoGrouping), appending the value to
// that group's list.
func (a *IntegerAggregator) Merge(t *tuple.Tuple) error {
	field := t.Field(a.aggField)
	intField, ok := field.(*types.IntField)
	if !ok {
		return dberrors.NewInvalidArgument("IntegerAggregator.Merge", "aggregate field is not an integer field")
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
	a.values[ck] = append(a.values[ck], intField.Value)
	return nil
}

func (a *IntegerAggregator) groupKeyFor(t *tuple.Tuple) (GroupKey, error) {
	if a.gbFieldIndex == NoGrouping {
		return NoneKey(), nil
	}
	f := t.Field(a.gbFieldIndex)
	if f == nil {
		return GroupKey{}, dberrors.NewInvalidArgument("IntegerAggregator.Merge", "missing group-by field")
	}
	return SomeKey(f), nil
}

// TupleDesc returns the output schema: (gbFieldType, INT) when
// grouping, else (INT).
func (a *IntegerAggregator) TupleDesc() *tuple.TupleDesc {
	if a.gbFieldIndex == NoGrouping {
		td, _ := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"aggregateVal"})
		return td
	}
	td, _ := tuple.NewTupleDesc([]types.Type{a.gbFieldType, types.IntType}, []string{"groupVal", "aggregateVal"})
	return td
}

// Iterator returns an iterator holding a live reference to this
// aggregator's group map: a Merge that runs concurrently with an
// in-progress scan is visible to it, matching the "no snapshot
// isolation" contract documented on AggregatorIterator.
func (a *IntegerAggregator) Iterator() iterator.DbIterator {
	return newAggregatorIterator(a.TupleDesc(), a.orderSnapshot, a.keyOf, a.reduce)
}

func (a *IntegerAggregator) orderSnapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *IntegerAggregator) keyOf(ck string) GroupKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keys[ck]
}

func (a *IntegerAggregator) reduce(ck string) (types.Field, error) {
	a.mu.Lock()
	vals := a.values[ck]
	a.mu.Unlock()

	switch a.op {
	case Count:
		return types.NewIntField(len(vals)), nil
	case Sum:
		sum := 0
		for _, v := range vals {
			sum += v
		}
		return types.NewIntField(sum), nil
	case Avg:
		sum := 0
		for _, v := range vals {
			sum += v
		}
		return types.NewIntField(sum / len(vals)), nil
	case Min:
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return types.NewIntField(m), nil
	case Max:
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return types.NewIntField(m), nil
	default:
		return nil, dberrors.NewInvalidArgument("IntegerAggregator.reduce", "unsupported operator: "+a.op.String())
	}
}
