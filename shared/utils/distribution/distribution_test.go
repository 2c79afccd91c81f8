package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributeProportional(t *testing.T) {
	shares, err := Distribute(100, []int64{1, 2})
	require.NoError(t, err)

	// 100×1/3 truncates to 33, the remainder lands on the larger weight.
	assert.Equal(t, []int64{33, 67}, shares)
}

func TestDistributeExactSplit(t *testing.T) {
	shares, err := Distribute(90, []int64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 30, 30}, shares)
}

func TestDistributeSumsToTotal(t *testing.T) {
	weights := []int64{3_500_000, 1_250_000, 777_777, 1}
	shares, err := Distribute(10_000_001, weights)
	require.NoError(t, err)
	require.Len(t, shares, len(weights))

	var sum int64
	for _, s := range shares {
		sum += s
	}
	assert.Equal(t, int64(10_000_001), sum)
}

func TestDistributeZeroWeights(t *testing.T) {
	shares, err := Distribute(500, []int64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, shares)
}

func TestDistributeNoWeights(t *testing.T) {
	shares, err := Distribute(500, nil)
	require.NoError(t, err)
	assert.Empty(t, shares)
}

func TestDistributeNegativeWeight(t *testing.T) {
	_, err := Distribute(100, []int64{5, -1})
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestDistributeLargeAmounts(t *testing.T) {
	// total × weight exceeds int64, the big.Int path must hold.
	total := int64(9_000_000_000_000) // 9 triliun
	weights := []int64{4_000_000_000_000, 5_000_000_000_000}

	shares, err := Distribute(total, weights)
	require.NoError(t, err)
	assert.Equal(t, int64(4_000_000_000_000), shares[0])
	assert.Equal(t, int64(5_000_000_000_000), shares[1])
}

func TestDistributeDeterministic(t *testing.T) {
	weights := []int64{123, 456, 789}
	first, err := Distribute(1_000, weights)
	require.NoError(t, err)

	second, err := Distribute(1_000, weights)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
