// Package transport moves encoded messages between nodes. Messages carry no
// length of their own, so every message travels inside a frame with a u32
// length prefix.
package transport

import (
	"encoding/binary"
	"io"

	"github.com/pingcap/errors"
)

const frameHeaderSize = 4

// ErrFrameTooLarge means a frame exceeds the configured limit.
var ErrFrameTooLarge = errors.New("transport: frame too large")

// WriteFrame writes payload with its length prefix.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Trace(err)
	}
	_, err := w.Write(payload)
	return errors.Trace(err)
}

// ReadFrame reads one frame of at most max payload bytes.
func ReadFrame(r io.Reader, max uint64) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.Trace(err)
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if uint64(n) > max {
		return nil, errors.Annotatef(ErrFrameTooLarge, "frame of %d bytes, limit %d", n, max)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Trace(err)
	}
	return payload, nil
}
