package mem

import (
	"testing"
	"unsafe"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counters struct {
	a, b, c uint64
}

func TestPaddedSize(t *testing.T) {
	assert.Equal(t, uint64(64), PaddedSize(24, 64, true))
	assert.Equal(t, uint64(128), PaddedSize(128, 64, true))
	assert.Equal(t, uint64(192), PaddedSize(130, 64, true))
	assert.Equal(t, uint64(24), PaddedSize(24, 64, false))
}

func TestAllocBlocksPadded(t *testing.T) {
	opts := OptionsFromConfig(config.NewTestConfig())
	require.True(t, opts.PartAlloc)
	blocks := AllocBlocks[counters](3, 2, opts)
	require.Len(t, blocks, 3)
	elem := int(unsafe.Sizeof(counters{}))
	for i, b := range blocks {
		assert.Equal(t, i, b.Part())
		items := b.Items()
		assert.Len(t, items, 2)
		assert.True(t, cap(items)*elem >= 64, "block %d not padded", i)
		items[1].b = uint64(i)
	}
	assert.Equal(t, uint64(2), blocks[2].Items()[1].b)
	ReleaseBlocks(blocks)
}

func TestAllocBlocksPlain(t *testing.T) {
	conf := config.NewTestConfig()
	conf.PartAlloc = false
	blocks := AllocBlocks[counters](2, 3, OptionsFromConfig(conf))
	assert.Equal(t, 3, cap(blocks[0].Items()))
}

func TestBlockReleaseOnce(t *testing.T) {
	b := AllocBlocks[uint64](1, 4, Options{})[0]
	b.Release()
	assert.Panics(t, func() { b.Release() })
	assert.Panics(t, func() { b.Items() })
}

func TestPoolReuse(t *testing.T) {
	p := NewPool[uint64](2)
	assert.Nil(t, p.Get(0, 0))

	s := p.Get(1, 5)
	require.Len(t, s, 5)
	assert.Equal(t, 8, cap(s))
	s[4] = 99
	p.Put(1, s)

	r := p.Get(1, 7)
	require.Len(t, r, 7)
	assert.Equal(t, uint64(0), r[4], "reused slice must be zeroed")
	assert.Equal(t, PoolStats{Allocs: 1, Reuses: 1}, p.Stats(1))

	// Other partitions have their own free lists.
	p.Put(1, r)
	p.Get(0, 7)
	assert.Equal(t, PoolStats{Allocs: 1}, p.Stats(0))
}

func TestPoolSmallerRequestsDoNotStealLargeClass(t *testing.T) {
	p := NewPool[byte](1)
	p.Put(0, make([]byte, 0, 64))
	p.Get(0, 3)
	assert.Equal(t, PoolStats{Allocs: 1}, p.Stats(0))
	p.Get(0, 40)
	assert.Equal(t, PoolStats{Allocs: 1, Reuses: 1}, p.Stats(0))
}

func TestSizeClass(t *testing.T) {
	for n, c := range map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 1024: 10, 1025: 11} {
		assert.Equal(t, c, sizeClass(n), "n=%d", n)
	}
}
