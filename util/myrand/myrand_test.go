package myrand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}

	c := New(43)
	same := 0
	a.Init(42)
	for i := 0; i < 100; i++ {
		if a.Next() == c.Next() {
			same++
		}
	}
	assert.True(t, same < 100)
}

func TestRange(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		assert.True(t, r.Next() < randMax)
		assert.True(t, r.Intn(10) < 10)
		f := r.Float64()
		assert.True(t, f >= 0 && f < 1)
	}
	assert.Panics(t, func() { r.Intn(0) })
}

func TestReinit(t *testing.T) {
	r := New(1)
	first := []uint64{r.Next(), r.Next(), r.Next()}
	r.Init(1)
	assert.Equal(t, first, []uint64{r.Next(), r.Next(), r.Next()})
}
