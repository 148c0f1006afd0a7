package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// RandRange returns a uniform random value in [a, b). It panics if got a
// non-positive parameter or a>=b.
func RandRange(a, b int) int {
	return RandIntn(b-a) + a
}

// RandBigIntRange returns a uniform random value in [a, b]. Both bounds are
// inclusive because reward amounts are specified as closed ranges.
func RandBigIntRange(a, b *big.Int) *big.Int {
	width := new(big.Int).Sub(b, a)
	width.Add(width, big.NewInt(1))

	r, err := rand.Int(rand.Reader, width)
	if err != nil {
		panic(err)
	}

	return r.Add(r, a)
}
