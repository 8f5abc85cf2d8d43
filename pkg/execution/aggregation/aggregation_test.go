package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

func groupedTuple(group string, val int) *tuple.Tuple {
	td, _ := tuple.NewTupleDesc([]types.Type{types.StringType, types.IntType}, []string{"g", "v"})
	tup := tuple.NewTuple(td)
	tup.SetField(0, types.NewStringField(group, 0))
	tup.SetField(1, types.NewIntField(val))
	return tup
}

func drain(t *testing.T, it interface {
	Open() error
	HasNext() (bool, error)
	Next() (*tuple.Tuple, error)
}) []*tuple.Tuple {
	require.NoError(t, it.Open())
	var out []*tuple.Tuple
	for {
		ok, err := it.HasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		tup, err := it.Next()
		require.NoError(t, err)
		out = append(out, tup)
	}
	return out
}

func TestIntegerAggregator_GroupedAvg(t *testing.T) {
	agg := NewIntegerAggregator(0, types.StringType, 1, Avg)
	require.NoError(t, agg.Merge(groupedTuple("A", 2)))
	require.NoError(t, agg.Merge(groupedTuple("A", 4)))
	require.NoError(t, agg.Merge(groupedTuple("B", 6)))

	results := drain(t, agg.Iterator())
	got := map[string]int{}
	for _, tup := range results {
		got[tup.Field(0).(*types.StringField).Value] = tup.Field(1).(*types.IntField).Value
	}
	assert.Equal(t, map[string]int{"A": 3, "B": 6}, got)
}

func TestIntegerAggregator_NoGroupingSum(t *testing.T) {
	agg := NewIntegerAggregator(NoGrouping, types.StringType, 1, Sum)
	require.NoError(t, agg.Merge(groupedTuple("A", 2)))
	require.NoError(t, agg.Merge(groupedTuple("A", 4)))
	require.NoError(t, agg.Merge(groupedTuple("B", 6)))

	results := drain(t, agg.Iterator())
	require.Len(t, results, 1)
	assert.Equal(t, 12, results[0].Field(0).(*types.IntField).Value)
}

func TestIntegerAggregator_NoGroupingCount(t *testing.T) {
	agg := NewIntegerAggregator(NoGrouping, types.StringType, 1, Count)
	require.NoError(t, agg.Merge(groupedTuple("A", 2)))
	require.NoError(t, agg.Merge(groupedTuple("A", 4)))
	require.NoError(t, agg.Merge(groupedTuple("B", 6)))

	results := drain(t, agg.Iterator())
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Field(0).(*types.IntField).Value)
}

func TestIntegerAggregator_MinMax(t *testing.T) {
	agg := NewIntegerAggregator(NoGrouping, types.StringType, 1, Min)
	require.NoError(t, agg.Merge(groupedTuple("A", 5)))
	require.NoError(t, agg.Merge(groupedTuple("A", 1)))
	require.NoError(t, agg.Merge(groupedTuple("A", 9)))

	results := drain(t, agg.Iterator())
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Field(0).(*types.IntField).Value)

	maxAgg := NewIntegerAggregator(NoGrouping, types.StringType, 1, Max)
	require.NoError(t, maxAgg.Merge(groupedTuple("A", 5)))
	require.NoError(t, maxAgg.Merge(groupedTuple("A", 1)))
	require.NoError(t, maxAgg.Merge(groupedTuple("A", 9)))

	results = drain(t, maxAgg.Iterator())
	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].Field(0).(*types.IntField).Value)
}

func TestIntegerAggregator_MergeRejectsWrongFieldType(t *testing.T) {
	agg := NewIntegerAggregator(NoGrouping, types.StringType, 0, Sum)
	err := agg.Merge(groupedTuple("A", 1))
	assert.Error(t, err)
}

func TestStringAggregator_RejectsNonCountOp(t *testing.T) {
	_, err := NewStringAggregator(NoGrouping, types.StringType, 0, Sum)
	assert.Error(t, err)
}

func TestStringAggregator_CountsPerGroup(t *testing.T) {
	agg, err := NewStringAggregator(0, types.StringType, 0, Count)
	require.NoError(t, err)

	td, _ := tuple.NewTupleDesc([]types.Type{types.StringType}, []string{"name"})
	mk := func(v string) *tuple.Tuple {
		tup := tuple.NewTuple(td)
		tup.SetField(0, types.NewStringField(v, 0))
		return tup
	}

	require.NoError(t, agg.Merge(mk("alice")))
	require.NoError(t, agg.Merge(mk("alice")))
	require.NoError(t, agg.Merge(mk("bob")))

	results := drain(t, agg.Iterator())
	got := map[string]int{}
	for _, tup := range results {
		got[tup.Field(0).(*types.StringField).Value] = tup.Field(1).(*types.IntField).Value
	}
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, got)
}

func TestAggregatorIterator_RewindReplaysSameResults(t *testing.T) {
	agg := NewIntegerAggregator(NoGrouping, types.StringType, 1, Count)
	require.NoError(t, agg.Merge(groupedTuple("A", 1)))

	it := agg.Iterator()
	require.NoError(t, it.Open())
	ok, err := it.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	first, err := it.Next()
	require.NoError(t, err)

	require.NoError(t, it.Rewind())
	ok, err = it.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	second, err := it.Next()
	require.NoError(t, err)

	assert.Equal(t, first.Field(0).(*types.IntField).Value, second.Field(0).(*types.IntField).Value)
}
