package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageID_EqualsAndHashCode(t *testing.T) {
	a := NewPageID(1, 2)
	b := NewPageID(1, 2)
	c := NewPageID(1, 3)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.Equal(t, a.HashCode(), b.HashCode())
}
