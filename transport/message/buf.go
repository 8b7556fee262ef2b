package message

import (
	"encoding/binary"

	"github.com/pingcap-incubator/txnbed/txn"
	"github.com/pingcap/errors"
)

const (
	u8Size      = 1
	u32Size     = 4
	u64Size     = 8
	requestSize = u32Size + u64Size + u8Size

	// HeaderSize is the type tag plus the transaction id.
	HeaderSize = u32Size + u64Size
)

var (
	// ErrShortBuffer means the buffer ended before the message did.
	ErrShortBuffer = errors.New("message: insufficient bytes")
	// ErrUnknownType means the tag names no known variant.
	ErrUnknownType = errors.New("message: unknown type")
)

// encoder writes scalars in little endian at consecutive offsets. The caller
// sizes the buffer beforehand.
type encoder struct {
	buf []byte
	off int
}

func (e *encoder) u8(v uint8) {
	e.buf[e.off] = v
	e.off += u8Size
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[e.off:], v)
	e.off += u32Size
}

func (e *encoder) u64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[e.off:], v)
	e.off += u64Size
}

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) rc(rc txn.RC) {
	e.u32(uint32(rc))
}

func (e *encoder) u64s(vs []uint64) {
	e.u64(uint64(len(vs)))
	for _, v := range vs {
		e.u64(v)
	}
}

func (e *encoder) requests(reqs []txn.Request) {
	e.u64(uint64(len(reqs)))
	for i := range reqs {
		e.u32(uint32(reqs[i].Type))
		e.u64(reqs[i].Key)
		e.u8(reqs[i].Value)
	}
}

// decoder reads what encoder wrote. The first short read sticks in err and
// every later read returns zero.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if len(d.buf)-d.off < n {
		d.err = errors.Annotatef(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, d.off, len(d.buf)-d.off)
		return false
	}
	return true
}

func (d *decoder) u8() uint8 {
	if !d.need(u8Size) {
		return 0
	}
	v := d.buf[d.off]
	d.off += u8Size
	return v
}

func (d *decoder) u32() uint32 {
	if !d.need(u32Size) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += u32Size
	return v
}

func (d *decoder) u64() uint64 {
	if !d.need(u64Size) {
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf[d.off:])
	d.off += u64Size
	return v
}

func (d *decoder) bool() bool {
	return d.u8() != 0
}

func (d *decoder) rc() txn.RC {
	return txn.RC(d.u32())
}

// count reads an array length and checks the elements fit in what is left.
func (d *decoder) count(elemSize int) int {
	n := d.u64()
	if d.err != nil {
		return 0
	}
	if n > uint64(len(d.buf)-d.off)/uint64(elemSize) {
		d.err = errors.Annotatef(ErrShortBuffer, "array of %d elements at offset %d overruns buffer", n, d.off)
		return 0
	}
	return int(n)
}
