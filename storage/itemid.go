package storage

import "fmt"

// DataType is what an ItemID points at.
type DataType uint8

const (
	DTTable DataType = iota
	DTPage
	DTRow
)

// Location is an opaque handle resolved by the storage engine. Zero is null.
type Location uint64

const NilLocation Location = 0

// ItemID references a located table, page or row. Next chains identifiers
// that share a slot, e.g. index collision lists; it does not own the target.
type ItemID struct {
	Type     DataType
	Location Location
	Next     *ItemID
	Valid    bool
}

func NewItemID(tp DataType, loc Location) *ItemID {
	return &ItemID{Type: tp, Location: loc, Valid: loc != NilLocation}
}

// Init resets the identifier to invalid.
func (id *ItemID) Init() {
	id.Location = NilLocation
	id.Next = nil
	id.Valid = false
}

// Equal compares type and location only.
func (id *ItemID) Equal(other *ItemID) bool {
	return id.Type == other.Type && id.Location == other.Location
}

// Assign copies every field of other, including the chain link.
func (id *ItemID) Assign(other *ItemID) {
	*id = *other
}

func (id *ItemID) String() string {
	return fmt.Sprintf("{type:%d loc:%d valid:%v}", id.Type, id.Location, id.Valid)
}
