package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIDInit(t *testing.T) {
	id := NewItemID(DTRow, 7)
	require.True(t, id.Valid)
	id.Next = NewItemID(DTRow, 8)
	id.Init()
	assert.False(t, id.Valid)
	assert.Equal(t, NilLocation, id.Location)
	assert.Nil(t, id.Next)
}

func TestItemIDEqual(t *testing.T) {
	a := NewItemID(DTRow, 7)
	b := NewItemID(DTRow, 7)
	b.Valid = false
	b.Next = NewItemID(DTPage, 1)
	assert.True(t, a.Equal(b), "next and valid must not matter")

	assert.False(t, a.Equal(NewItemID(DTPage, 7)))
	assert.False(t, a.Equal(NewItemID(DTRow, 8)))
}

func TestItemIDAssign(t *testing.T) {
	chain := NewItemID(DTRow, 2)
	src := NewItemID(DTTable, 1)
	src.Next = chain
	var dst ItemID
	dst.Assign(src)
	assert.Equal(t, *src, dst)
	assert.True(t, dst.Next == chain, "assign is shallow")
}

func TestIndex(t *testing.T) {
	ix := NewIndex(1) // every key collides
	for k := uint64(1); k <= 3; k++ {
		ix.Insert(k, NewItemID(DTRow, Location(k*10)))
	}
	assert.Equal(t, 3, ix.Len())

	// The collision chain is reachable through ItemID.Next.
	n := 0
	for it := ix.Chain(1); it != nil; it = it.Next {
		assert.True(t, it.Valid)
		n++
	}
	assert.Equal(t, 3, n)

	assert.Equal(t, Location(20), ix.Lookup(2).Location)
	ix.Insert(2, NewItemID(DTRow, 21))
	assert.Equal(t, Location(21), ix.Lookup(2).Location)
	assert.Equal(t, 3, ix.Len())

	assert.True(t, ix.Remove(2))
	assert.False(t, ix.Remove(2))
	assert.Nil(t, ix.Lookup(2))
	n = 0
	for it := ix.Chain(1); it != nil; it = it.Next {
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, Location(30), ix.Lookup(3).Location)
	assert.Equal(t, Location(10), ix.Lookup(1).Location)
}
