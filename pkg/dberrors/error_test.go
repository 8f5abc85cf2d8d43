package dberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStringer struct{ s string }

func (f fakeStringer) String() string { return f.s }

func TestNewTransactionAborted_IsTransactionAborted(t *testing.T) {
	err := NewTransactionAborted("AcquireLock", fakeStringer{"TID-1"})
	assert.True(t, IsTransactionAborted(err))
	assert.False(t, IsNoSuchElement(err))
}

func TestWrap_EnrichesRatherThanDoubleWraps(t *testing.T) {
	inner := NewInvalidArgument("Merge", "bad field")
	wrapped := Wrap(inner, CodeDbError, "Outer", "Component")

	require.Same(t, inner, wrapped)
	assert.Equal(t, "Outer", wrapped.Operation)
	assert.Equal(t, "Component", wrapped.Component)
}

func TestWrap_WrapsPlainError(t *testing.T) {
	plain := errors.New("disk full")
	wrapped := Wrap(plain, CodeIoError, "WritePage", "HeapFile")

	assert.Equal(t, CodeIoError, wrapped.Code)
	assert.Same(t, plain, wrapped.Cause)
	assert.ErrorIs(t, wrapped, plain)
}

func TestDBError_ErrorStringIncludesOperationAndComponent(t *testing.T) {
	err := NewDbError("evictPage", "BufferPool", "all pages dirty")
	msg := err.Error()
	assert.Contains(t, msg, "evictPage")
	assert.Contains(t, msg, "BufferPool")
	assert.Contains(t, msg, "all pages dirty")
}
