package mem

import (
	"math/bits"

	"github.com/pingcap-incubator/txnbed/util/atom"
	"github.com/pingcap-incubator/txnbed/util/list"
	uatomic "go.uber.org/atomic"
)

const maxClass = 32

// Pool is a partition-local slice allocator. Freed slices are kept on per
// size-class free lists of their partition and handed out again by Get.
type Pool[T any] struct {
	parts []*partPool[T]
}

type partPool[T any] struct {
	lock  atom.SpinLock
	arena *list.Arena
	slots [][]T
	free  [maxClass]list.Stack
	spare list.Stack

	allocs uatomic.Uint64
	reuses uatomic.Uint64
}

// NewPool creates a pool with one free list set per partition.
func NewPool[T any](parts int) *Pool[T] {
	if parts <= 0 {
		parts = 1
	}
	p := &Pool[T]{parts: make([]*partPool[T], parts)}
	for i := range p.parts {
		pp := &partPool[T]{arena: list.NewArena(16), spare: list.NewStack()}
		for c := range pp.free {
			pp.free[c] = list.NewStack()
		}
		p.parts[i] = pp
	}
	return p
}

func (p *Pool[T]) part(part uint64) *partPool[T] {
	return p.parts[part%uint64(len(p.parts))]
}

// sizeClass returns the smallest c with 1<<c >= n.
func sizeClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Get returns a zeroed slice of length n owned by the caller until Put.
func (p *Pool[T]) Get(part uint64, n int) []T {
	if n <= 0 {
		return nil
	}
	c := sizeClass(n)
	pp := p.part(part)
	if c < maxClass {
		pp.lock.Lock()
		idx := pp.arena.Pop(&pp.free[c])
		if idx != list.Nil {
			s := pp.slots[idx]
			pp.slots[idx] = nil
			pp.arena.Push(&pp.spare, idx)
			pp.lock.Unlock()
			pp.reuses.Inc()
			s = s[:n]
			var zero T
			for i := range s {
				s[i] = zero
			}
			return s
		}
		pp.lock.Unlock()
	}
	pp.allocs.Inc()
	return make([]T, n, 1<<uint(c))
}

// Put hands s back to the partition's free lists.
func (p *Pool[T]) Put(part uint64, s []T) {
	if cap(s) == 0 {
		return
	}
	// Largest class whose size still fits in cap(s).
	c := bits.Len(uint(cap(s))) - 1
	if c >= maxClass {
		return
	}
	pp := p.part(part)
	pp.lock.Lock()
	idx := pp.arena.Pop(&pp.spare)
	if idx == list.Nil {
		idx = pp.arena.Add()
		pp.slots = append(pp.slots, nil)
	}
	pp.slots[idx] = s[:0]
	pp.arena.Push(&pp.free[c], idx)
	pp.lock.Unlock()
}

// PoolStats counts fresh allocations and reuses of one partition.
type PoolStats struct {
	Allocs uint64
	Reuses uint64
}

func (p *Pool[T]) Stats(part uint64) PoolStats {
	pp := p.part(part)
	return PoolStats{Allocs: pp.allocs.Load(), Reuses: pp.reuses.Load()}
}

func (p *Pool[T]) Partitions() int {
	return len(p.parts)
}
