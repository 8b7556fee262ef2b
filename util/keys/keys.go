// Package keys builds composite index keys and maps keys to partitions.
package keys

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"
	"github.com/pingcap/errors"
)

// Merge2 packs two 32-bit keys into one.
func Merge2(key1, key2 uint64) uint64 {
	if key1 >= 1<<32 || key2 >= 1<<32 {
		panic(errors.Errorf("keys: merge of (%d, %d) overflows 32 bits", key1, key2))
	}
	return key1<<32 | key2
}

// Merge3 packs three 21-bit keys into one.
func Merge3(key1, key2, key3 uint64) uint64 {
	if key1 >= 1<<21 || key2 >= 1<<21 || key3 >= 1<<21 {
		panic(errors.Errorf("keys: merge of (%d, %d, %d) overflows 21 bits", key1, key2, key3))
	}
	return key1<<42 | key2<<21 | key3
}

// MergeN packs len(ks) keys into 64/len(ks) bits each, first key highest.
func MergeN(ks []uint64) uint64 {
	if len(ks) == 0 || len(ks) > 64 {
		panic(errors.Errorf("keys: cannot merge %d keys", len(ks)))
	}
	width := uint(64 / len(ks))
	var key uint64
	for _, k := range ks {
		if width < 64 && k >= 1<<width {
			panic(errors.Errorf("keys: component %d overflows %d bits", k, width))
		}
		if width == 64 {
			key = k
		} else {
			key = key<<width | k
		}
	}
	return key
}

// KeyToPart maps a YCSB key to the partition owning it.
func KeyToPart(key, partCnt uint64) uint64 {
	return key % partCnt
}

// Fingerprint hashes any number of keys into one well-mixed value, for
// composite keys too wide to merge.
func Fingerprint(ks ...uint64) uint64 {
	buf := make([]byte, 8*len(ks))
	for i, k := range ks {
		binary.LittleEndian.PutUint64(buf[i*8:], k)
	}
	return farm.Fingerprint64(buf)
}
