package distribution

import (
	"errors"
	"math/big"
)

// Amounts are integer rupiah. Each line's raw share is
// total × weight / sumOfWeights truncated toward zero; the rounding
// remainder goes to the single largest-weight line so the shares
// always sum to the input total exactly.

var ErrNegativeWeight = errors.New("bobot distribusi tidak boleh negatif")

// Distribute allocates total across lines proportionally to weights.
// Zero total weight yields all-zero shares. Any negative weight is an
// error. len(result) == len(weights) and sum(result) == total.
func Distribute(total int64, weights []int64) ([]int64, error) {
	shares := make([]int64, len(weights))
	if len(weights) == 0 {
		return shares, nil
	}

	var sumWeights int64
	largest := 0
	for i, w := range weights {
		if w < 0 {
			return nil, ErrNegativeWeight
		}
		sumWeights += w
		if w > weights[largest] {
			largest = i
		}
	}

	if sumWeights == 0 {
		return shares, nil
	}

	// total × weight can overflow int64 for realistic budget figures,
	// so the multiplication runs through big.Int.
	bigTotal := big.NewInt(total)
	bigSum := big.NewInt(sumWeights)

	var distributed int64
	for i, w := range weights {
		share := new(big.Int).Mul(bigTotal, big.NewInt(w))
		share.Quo(share, bigSum)
		shares[i] = share.Int64()
		distributed += shares[i]
	}

	// Remainder to the largest-weight line.
	shares[largest] += total - distributed

	return shares, nil
}
