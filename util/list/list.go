// Package list implements intrusive stacks and doubly linked lists whose
// nodes live in an Arena and refer to each other by Index. The operations
// only rewrite links: they never grow or shrink the arena, so a node can be
// recycled without leaving dangling references behind.
package list

import (
	"github.com/pingcap/errors"
)

// Index addresses a node inside an Arena.
type Index int32

// Nil is the empty link.
const Nil Index = -1

type link struct {
	next Index
	prev Index
}

// Arena owns the link storage of every node. Payloads are kept by the caller
// in a slice indexed the same way.
type Arena struct {
	links []link
}

func NewArena(capacity int) *Arena {
	return &Arena{links: make([]link, 0, capacity)}
}

// Add appends an unlinked node and returns its index.
func (a *Arena) Add() Index {
	a.links = append(a.links, link{next: Nil, prev: Nil})
	return Index(len(a.links) - 1)
}

func (a *Arena) Len() int {
	return len(a.links)
}

func (a *Arena) Next(i Index) Index {
	return a.links[i].next
}

func (a *Arena) Prev(i Index) Index {
	return a.links[i].prev
}

// Stack is a singly linked LIFO threaded through the arena's next links.
type Stack struct {
	Top Index
}

func NewStack() Stack {
	return Stack{Top: Nil}
}

func (s *Stack) Empty() bool {
	return s.Top == Nil
}

func (a *Arena) Push(s *Stack, e Index) {
	a.links[e].next = s.Top
	s.Top = e
}

// Pop returns Nil when the stack is empty.
func (a *Arena) Pop(s *Stack) Index {
	top := s.Top
	if top == Nil {
		return Nil
	}
	s.Top = a.links[top].next
	a.links[top].next = Nil
	return top
}

// List is a doubly linked FIFO; entries are read from Head and written at Tail.
type List struct {
	Head Index
	Tail Index
}

func NewList() List {
	return List{Head: Nil, Tail: Nil}
}

func (l *List) Empty() bool {
	return l.Head == Nil
}

// GetHead unlinks and returns the head entry, or Nil for an empty list.
func (a *Arena) GetHead(l *List) Index {
	en := l.Head
	if en == Nil {
		return Nil
	}
	l.Head = a.links[en].next
	if l.Head != Nil {
		a.links[l.Head].prev = Nil
	} else {
		l.Tail = Nil
	}
	a.links[en].next = Nil
	return en
}

func (a *Arena) PutTail(l *List, en Index) {
	a.links[en].next = Nil
	a.links[en].prev = Nil
	if l.Tail != Nil {
		a.links[en].prev = l.Tail
		a.links[l.Tail].next = en
		l.Tail = en
	} else {
		l.Head = en
		l.Tail = en
	}
}

// InsertBefore links newEntry in front of entry and moves the head when
// entry was the head.
func (a *Arena) InsertBefore(l *List, entry, newEntry Index) {
	prev := a.links[entry].prev
	a.links[newEntry].next = entry
	a.links[newEntry].prev = prev
	if prev != Nil {
		a.links[prev].next = newEntry
	}
	a.links[entry].prev = newEntry
	if l.Head == entry {
		l.Head = newEntry
	}
}

// Remove unlinks entry from its neighbours only. The caller is responsible
// for entries that may be the head or tail of a list, see RemoveHT.
func (a *Arena) Remove(entry Index) {
	en := a.links[entry]
	if en.next != Nil {
		a.links[en.next].prev = en.prev
	}
	if en.prev != Nil {
		a.links[en.prev].next = en.next
	}
	a.links[entry] = link{next: Nil, prev: Nil}
}

// RemoveHT unlinks entry and repairs the list's head and tail. It panics if
// the links claim entry is an end of the list while the list disagrees.
func (a *Arena) RemoveHT(l *List, entry Index) {
	en := a.links[entry]
	if en.next != Nil {
		a.links[en.next].prev = en.prev
	} else {
		if entry != l.Tail {
			panic(errors.Errorf("list: entry %d has no next but tail is %d", entry, l.Tail))
		}
		l.Tail = en.prev
	}
	if en.prev != Nil {
		a.links[en.prev].next = en.next
	} else {
		if entry != l.Head {
			panic(errors.Errorf("list: entry %d has no prev but head is %d", entry, l.Head))
		}
		l.Head = en.next
	}
	a.links[entry] = link{next: Nil, prev: Nil}
}

// Walk calls fn for every entry from head to tail until fn returns false.
func (a *Arena) Walk(l *List, fn func(Index) bool) {
	for i := l.Head; i != Nil; i = a.links[i].next {
		if !fn(i) {
			return
		}
	}
}
