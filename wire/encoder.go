package wire

// Encoder is implemented by every value of the wire format.
//
// EncodeInto must write exactly EncodedSize bytes starting at buf[0] and
// return that count. Callers size buf from EncodedSize, so writing more
// panics and writing less leaves zero bytes behind.
type Encoder interface {
	EncodedSize() int
	EncodeInto(buf []byte) int
}

// Append grows dst by e.EncodedSize() zero bytes, encodes e into the new
// region and returns the extended slice.
func Append(dst []byte, e Encoder) []byte {
	n := e.EncodedSize()
	start := len(dst)
	dst = append(dst, make([]byte, n)...)
	e.EncodeInto(dst[start:])
	return dst
}

// Marshal encodes e into a freshly allocated slice of exactly
// e.EncodedSize() bytes.
func Marshal(e Encoder) []byte {
	return Append(make([]byte, 0, e.EncodedSize()), e)
}

// Uvarint is an unsigned 64-bit integer in LEB128 form.
type Uvarint uint64

// EncodedSize returns the number of 7-bit groups needed, minimum 1.
func (v Uvarint) EncodedSize() int {
	return UvarintSize(uint64(v))
}

// EncodeInto writes the varint.
func (v Uvarint) EncodeInto(buf []byte) int {
	return PutUvarint(buf, uint64(v))
}

// Byte is a u8 encoded as a varint.
type Byte uint8

// EncodedSize returns 1 for values below 0x80 and 2 otherwise.
func (b Byte) EncodedSize() int {
	return UvarintSize(uint64(b))
}

// EncodeInto writes the byte as a varint.
func (b Byte) EncodeInto(buf []byte) int {
	return PutUvarint(buf, uint64(b))
}

// Bool is a single 0 or 1 byte.
type Bool bool

// EncodedSize always returns 1.
func (Bool) EncodedSize() int {
	return 1
}

// EncodeInto writes 1 for true and 0 for false.
func (b Bool) EncodeInto(buf []byte) int {
	if b {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	return 1
}
