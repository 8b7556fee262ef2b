// Package mem hands out per-partition memory: padded blocks that keep
// neighbouring partitions off each other's cache lines, and pooled slices
// backing the variable-length arrays of decoded messages.
package mem

import (
	"unsafe"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap/errors"
	uatomic "go.uber.org/atomic"
)

// Options mirrors the allocation switches of config.Config.
type Options struct {
	PartAlloc   bool
	ThreadAlloc bool
	MemPad      bool
	CacheLine   uint64
}

func OptionsFromConfig(c *config.Config) Options {
	return Options{
		PartAlloc:   c.PartAlloc,
		ThreadAlloc: c.ThreadAlloc,
		MemPad:      c.MemPad,
		CacheLine:   c.CacheLine,
	}
}

func (o Options) partitioned() bool {
	return o.PartAlloc || o.ThreadAlloc
}

// PaddedSize rounds size up to a whole number of cache lines when pad is set.
func PaddedSize(size, cacheLine uint64, pad bool) uint64 {
	if !pad || cacheLine == 0 || size%cacheLine == 0 {
		return size
	}
	return size + cacheLine - size%cacheLine
}

// Block is an owned run of scale elements belonging to one partition. It
// must be released exactly once.
type Block[T any] struct {
	part     int
	items    []T
	released uatomic.Bool
}

func (b *Block[T]) Part() int {
	return b.part
}

// Items exposes the elements. It panics after Release.
func (b *Block[T]) Items() []T {
	if b.released.Load() {
		panic(errors.Errorf("mem: block of partition %d used after release", b.part))
	}
	return b.items
}

// Release drops the block's storage. A second release panics.
func (b *Block[T]) Release() {
	if !b.released.CompareAndSwap(false, true) {
		panic(errors.Errorf("mem: block of partition %d released twice", b.part))
	}
	b.items = nil
}

// AllocBlocks allocates n blocks of scale elements, one per partition or
// thread. With partitioned allocation each block's backing array is padded
// to a multiple of the cache line so no two blocks share a line; otherwise
// the blocks are plain heap slices.
func AllocBlocks[T any](n, scale int, opts Options) []*Block[T] {
	blocks := make([]*Block[T], n)
	var zero T
	elem := uint64(unsafe.Sizeof(zero))
	for i := 0; i < n; i++ {
		b := &Block[T]{part: i}
		if opts.partitioned() && elem > 0 {
			padded := PaddedSize(elem*uint64(scale), opts.CacheLine, opts.MemPad)
			capacity := int((padded + elem - 1) / elem)
			b.items = make([]T, scale, capacity)
		} else {
			b.items = make([]T, scale)
		}
		blocks[i] = b
	}
	return blocks
}

// ReleaseBlocks releases every block in bs.
func ReleaseBlocks[T any](bs []*Block[T]) {
	for _, b := range bs {
		b.Release()
	}
}
