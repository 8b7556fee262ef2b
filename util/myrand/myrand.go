// Package myrand is the deterministic generator workers use to pick keys and
// partitions. A given seed always yields the same sequence on every node.
package myrand

const randMax = 2147483647

type Rand struct {
	seed uint64
}

func New(seed uint64) *Rand {
	r := &Rand{}
	r.Init(seed)
	return r
}

func (r *Rand) Init(seed uint64) {
	r.seed = seed
}

// Next advances the linear congruential state and returns a value in [0, 2^31-1).
func (r *Rand) Next() uint64 {
	r.seed = (r.seed*1103515247 + 12345) % (1 << 63)
	return (r.seed / 65537) % randMax
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Next()) / randMax
}

// Intn returns a value in [0, n). It panics if n is 0.
func (r *Rand) Intn(n uint64) uint64 {
	if n == 0 {
		panic("myrand: Intn with n == 0")
	}
	return r.Next() % n
}
