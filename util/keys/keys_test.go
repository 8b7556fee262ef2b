package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	assert.Equal(t, uint64(1<<32|2), Merge2(1, 2))
	assert.Equal(t, uint64(1<<42|2<<21|3), Merge3(1, 2, 3))
	assert.Panics(t, func() { Merge2(1<<32, 0) })
	assert.Panics(t, func() { Merge3(0, 1<<21, 0) })
}

func TestMergeN(t *testing.T) {
	assert.Equal(t, Merge2(5, 6), MergeN([]uint64{5, 6}))
	assert.Equal(t, uint64(0x0102030405060708), MergeN([]uint64{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, uint64(77), MergeN([]uint64{77}))
	assert.Panics(t, func() { MergeN(nil) })
	assert.Panics(t, func() { MergeN([]uint64{256, 0, 0, 0, 0, 0, 0, 0}) })
}

func TestKeyToPart(t *testing.T) {
	assert.Equal(t, uint64(3), KeyToPart(13, 5))
	assert.Equal(t, uint64(0), KeyToPart(10, 5))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint(1, 2, 3), Fingerprint(1, 2, 3))
	assert.NotEqual(t, Fingerprint(1, 2, 3), Fingerprint(3, 2, 1))
	assert.NotEqual(t, Fingerprint(1), Fingerprint(1, 0))
}
