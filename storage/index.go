package storage

import (
	"github.com/pingcap-incubator/txnbed/util/keys"
)

type entry struct {
	key  uint64
	item ItemID
}

// Index is a fixed-size hash index. Each bucket is a chain of ItemIDs linked
// through Next; the keys are kept alongside in a parallel chain. It is owned
// by a single partition worker.
type Index struct {
	buckets []*node
	size    int
}

type node struct {
	entry
	next *node
}

func NewIndex(buckets int) *Index {
	if buckets <= 0 {
		buckets = 1
	}
	return &Index{buckets: make([]*node, buckets)}
}

func (ix *Index) bucket(key uint64) int {
	return int(keys.Fingerprint(key) % uint64(len(ix.buckets)))
}

// Insert adds or replaces the item stored under key.
func (ix *Index) Insert(key uint64, item *ItemID) {
	b := ix.bucket(key)
	for n := ix.buckets[b]; n != nil; n = n.next {
		if n.key == key {
			next := n.item.Next
			n.item.Assign(item)
			n.item.Next = next
			return
		}
	}
	n := &node{entry: entry{key: key}}
	n.item.Assign(item)
	n.next = ix.buckets[b]
	if n.next != nil {
		n.item.Next = &n.next.item
	} else {
		n.item.Next = nil
	}
	ix.buckets[b] = n
	ix.size++
}

// Lookup returns the item stored under key or nil.
func (ix *Index) Lookup(key uint64) *ItemID {
	for n := ix.buckets[ix.bucket(key)]; n != nil; n = n.next {
		if n.key == key {
			return &n.item
		}
	}
	return nil
}

// Chain returns the head of the collision chain key hashes to.
func (ix *Index) Chain(key uint64) *ItemID {
	if n := ix.buckets[ix.bucket(key)]; n != nil {
		return &n.item
	}
	return nil
}

// Remove deletes key and reports whether it was present.
func (ix *Index) Remove(key uint64) bool {
	b := ix.bucket(key)
	var prev *node
	for n := ix.buckets[b]; n != nil; prev, n = n, n.next {
		if n.key != key {
			continue
		}
		if prev == nil {
			ix.buckets[b] = n.next
		} else {
			prev.next = n.next
			prev.item.Next = n.item.Next
		}
		n.item.Init()
		ix.size--
		return true
	}
	return false
}

func (ix *Index) Len() int {
	return ix.size
}
