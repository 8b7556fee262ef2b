package myrand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZipfRange(t *testing.T) {
	z := NewZipf(100, 0.9)
	r := New(7)
	for i := 0; i < 10000; i++ {
		assert.True(t, z.Next(r) < 100)
	}
}

func TestZipfSkew(t *testing.T) {
	const n = 1000
	z := NewZipf(n, 0.9)
	r := New(11)
	counts := make([]int, n)
	for i := 0; i < 50000; i++ {
		counts[z.Next(r)]++
	}
	// The head must be far hotter than a uniform draw would make it.
	assert.True(t, counts[0] > 50*50000/n)
	assert.True(t, counts[0] > counts[n/2])
}

func TestZipfDeterministic(t *testing.T) {
	z := NewZipf(500, 0.6)
	a, b := New(3), New(3)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, z.Next(a), z.Next(b))
	}
}

func TestZipfInvalid(t *testing.T) {
	assert.Panics(t, func() { NewZipf(1, 0.5) })
	assert.Panics(t, func() { NewZipf(10, 1) })
	assert.Panics(t, func() { NewZipf(10, -0.1) })
}
