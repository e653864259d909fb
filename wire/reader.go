package wire

import (
	"github.com/wippyai/stabletrace/errors"
)

// Reader decodes wire primitives from a byte slice and tracks the offset.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the current byte offset.
func (r *Reader) Offset() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errors.Truncated(errors.PhaseDecode, nil, r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, errors.Truncated(errors.PhaseDecode, nil, r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUvarint reads an unsigned LEB128 varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	v, n := DecodeUvarint(r.buf[r.pos:])
	switch {
	case n == 0:
		return 0, errors.Truncated(errors.PhaseDecode, nil, r.pos)
	case n < 0:
		return 0, errors.Overflow(errors.PhaseDecode, nil, r.pos, "u64")
	}
	r.pos += n
	return v, nil
}

// ReadBool reads a byte that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	off := r.pos
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		e := errors.InvalidDiscriminant(errors.PhaseDecode, nil, b, 1)
		e.Offset = off
		return false, e
	}
	return b == 1, nil
}

// ReadString reads n bytes as a string, keeping any padding.
func (r *Reader) ReadString(n int) (string, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
