package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBetweenIntegers(t *testing.T) {
	k, err := Generate(Key{10}, Key{20})
	require.NoError(t, err)
	assert.True(t, Less(Key{10}, k))
	assert.True(t, Less(k, Key{20}))
}

func TestGenerateAdjacentDescends(t *testing.T) {
	k, err := Generate(Key{10}, Key{11})
	require.NoError(t, err)
	assert.True(t, Less(Key{10}, k))
	assert.True(t, Less(k, Key{11}))
}

func TestGenerateRejectsOutOfOrder(t *testing.T) {
	_, err := Generate(Key{20}, Key{10})
	assert.Error(t, err)
	_, err = Generate(Key{10}, Key{10})
	assert.Error(t, err)
}

// TestGenerateRepeatedSubdivision is spec.md §8 property 6 exercised
// directly on keys: repeatedly generating between the same neighbours
// keeps producing keys in strict total order.
func TestGenerateRepeatedSubdivision(t *testing.T) {
	lo, hi := Key{0}, Key{2}
	for i := 0; i < 20; i++ {
		mid, err := Generate(lo, hi)
		require.NoError(t, err)
		assert.True(t, Less(lo, mid))
		assert.True(t, Less(mid, hi))
		hi = mid
	}
}

func TestCompareLexicographic(t *testing.T) {
	assert.True(t, Less(Key{1}, Key{1, 0}))
	assert.True(t, Less(Key{1, 5}, Key{2}))
	assert.Equal(t, 0, Compare(Key{3}, Key{3}))
}
