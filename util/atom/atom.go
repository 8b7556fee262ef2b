// Package atom provides the word-sized atomic primitives used for shared
// counters and lock-free splicing. Two flavours exist: one over
// go.uber.org/atomic values, which is what new code should hold, and one over
// bare *uint64 words for fields embedded in larger structs.
package atom

import (
	"sync/atomic"

	uatomic "go.uber.org/atomic"
)

// FetchAdd adds delta to v and returns the previous value.
func FetchAdd(v *uatomic.Uint64, delta uint64) uint64 {
	return v.Add(delta) - delta
}

// FetchSub subtracts delta from v and returns the previous value.
func FetchSub(v *uatomic.Uint64, delta uint64) uint64 {
	return v.Sub(delta) + delta
}

// AddFetch adds delta to v and returns the new value.
func AddFetch(v *uatomic.Uint64, delta uint64) uint64 {
	return v.Add(delta)
}

// SubFetch subtracts delta from v and returns the new value.
func SubFetch(v *uatomic.Uint64, delta uint64) uint64 {
	return v.Sub(delta)
}

// CAS stores newVal into v if it still holds oldVal, reporting success.
func CAS(v *uatomic.Uint64, oldVal, newVal uint64) bool {
	return v.CompareAndSwap(oldVal, newVal)
}

// FetchAddWord is FetchAdd over a bare word.
func FetchAddWord(addr *uint64, delta uint64) uint64 {
	return atomic.AddUint64(addr, delta) - delta
}

// FetchSubWord is FetchSub over a bare word.
func FetchSubWord(addr *uint64, delta uint64) uint64 {
	return atomic.AddUint64(addr, ^(delta - 1)) + delta
}

// AddFetchWord is AddFetch over a bare word.
func AddFetchWord(addr *uint64, delta uint64) uint64 {
	return atomic.AddUint64(addr, delta)
}

// SubFetchWord is SubFetch over a bare word.
func SubFetchWord(addr *uint64, delta uint64) uint64 {
	return atomic.AddUint64(addr, ^(delta - 1))
}

// CASWord is CAS over a bare word.
func CASWord(addr *uint64, oldVal, newVal uint64) bool {
	return atomic.CompareAndSwapUint64(addr, oldVal, newVal)
}
