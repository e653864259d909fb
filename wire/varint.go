package wire

// MaxVarintLen is the longest LEB128 encoding of a uint64.
const MaxVarintLen = 10

// UvarintSize returns the encoded length of v.
func UvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// PutUvarint writes v into buf and returns the number of bytes written.
// buf must hold at least UvarintSize(v) bytes.
func PutUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = 0x80 | byte(v)
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// AppendUvarint appends the encoding of v to dst.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, 0x80|byte(v))
		v >>= 7
	}
	return append(dst, byte(v))
}

// DecodeUvarint decodes a varint from the start of buf. It returns the value
// and the number of bytes read. n == 0 means buf ended inside the varint and
// n < 0 means the value overflows 64 bits (-n bytes were examined).
func DecodeUvarint(buf []byte) (v uint64, n int) {
	var shift uint
	for i, b := range buf {
		if i == MaxVarintLen {
			return 0, -(i + 1)
		}
		if b < 0x80 {
			if i == MaxVarintLen-1 && b > 1 {
				return 0, -(i + 1)
			}
			return v | uint64(b)<<shift, i + 1
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
	return 0, 0
}
