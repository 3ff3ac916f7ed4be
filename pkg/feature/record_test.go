package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyVector(t *testing.T) {
	_, err := New("a", nil)
	assert.ErrorIs(t, err, ErrEmptyVector)

	_, err = New("a", []float64{})
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestVectorIsDefensiveCopy(t *testing.T) {
	v := []float64{1, 2, 3}
	r, err := New("a", v)
	require.NoError(t, err)

	v[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, r.Vector())

	out := r.Vector()
	out[0] = 42
	assert.Equal(t, []float64{1, 2, 3}, r.Vector())
}

func TestEqualByIdentifierOnly(t *testing.T) {
	a, _ := New("x", []float64{1, 2})
	b, _ := New("x", []float64{9, 9})
	c, _ := New("y", []float64{1, 2})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestDimensions(t *testing.T) {
	r, err := New("a", []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Dimensions())
}
