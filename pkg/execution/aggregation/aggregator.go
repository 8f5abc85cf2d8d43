// Package aggregation implements streaming grouped aggregation over
// tuple streams: IntegerAggregator (COUNT/SUM/AVG/MIN/MAX) and
// StringAggregator (COUNT only), each holding one value list per group
// rather than a running accumulator.
package aggregation

import (
	"minirel/pkg/dberrors"
	"minirel/pkg/types"
)

// NoGrouping is the sentinel field index meaning "aggregate the whole
// stream as a single group."
const NoGrouping = -1

// AggregateOp is the operation an aggregator reduces a group's value
// list to.
type AggregateOp int

const (
	Count AggregateOp = iota
	Sum
	Avg
	Min
	Max
)

func (op AggregateOp) String() string {
	switch op {
	case Count:
		return "COUNT"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// ParseAggregateOp maps a name such as "count" or "SUM" to an
// AggregateOp, for callers parsing a query-layer AST node.
func ParseAggregateOp(name string) (AggregateOp, error) {
	switch name {
	case "COUNT", "count":
		return Count, nil
	case "SUM", "sum":
		return Sum, nil
	case "AVG", "avg":
		return Avg, nil
	case "MIN", "min":
		return Min, nil
	case "MAX", "max":
		return Max, nil
	default:
		return 0, dberrors.NewInvalidArgument("ParseAggregateOp", "unknown aggregate operator: "+name)
	}
}

// GroupKey is a tagged variant over "grouped by this field's value" and
// "no grouping is in effect" — modeled explicitly rather than as a
// nullable Field, so the no-grouping case can't be confused with a
// group whose key happens to be a zero value.
type GroupKey struct {
	field types.Field
	none  bool
}

// SomeKey wraps f as a present group key.
func SomeKey(f types.Field) GroupKey {
	return GroupKey{field: f}
}

// NoneKey is the single key used for all tuples when NoGrouping is in
// effect.
func NoneKey() GroupKey {
	return GroupKey{none: true}
}

func (k GroupKey) IsNone() bool {
	return k.none
}

// Field returns the wrapped field. Callers must check IsNone first;
// calling this on a none key returns nil.
func (k GroupKey) Field() types.Field {
	if k.none {
		return nil
	}
	return k.field
}

// comparable is the map key form of GroupKey: a none key maps to the
// sentinel "\x00none", and a present key maps to its field's String()
// as is, with no per-type prefix.
func (k GroupKey) comparable() string {
	if k.none {
		return "\x00none"
	}
	return k.field.String()
}
