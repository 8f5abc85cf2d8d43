package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntField_Compare(t *testing.T) {
	a := NewIntField(5)
	b := NewIntField(9)

	ok, err := a.Compare(LessThan, b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Compare(Equals, NewIntField(5))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.Compare(Equals, NewStringField("x", 0))
	assert.Error(t, err)
}

func TestIntField_SerializeRoundTrips(t *testing.T) {
	f := NewIntField(-42)
	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	assert.Len(t, buf.Bytes(), 8)
}

func TestStringField_TruncatesOnConstruction(t *testing.T) {
	f := NewStringField("hello world", 5)
	assert.Equal(t, "hello", f.Value)
}

func TestStringField_Compare(t *testing.T) {
	a := NewStringField("apple", 0)
	b := NewStringField("banana", 0)

	ok, err := a.Compare(LessThan, b)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStringField_Hash_StableAcrossInstances(t *testing.T) {
	h1, err := NewStringField("same", 0).Hash()
	require.NoError(t, err)
	h2, err := NewStringField("same", 0).Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
