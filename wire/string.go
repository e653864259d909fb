package wire

import "math"

// MaxStringLen is the longest content an OtherString can carry.
const MaxStringLen = math.MaxUint8

// OtherString is a length-prefixed string with a minimum encoded width.
//
// The length byte holds max(Min, min(len(Value), 255)). Content beyond 255
// bytes is dropped and content shorter than Min is right-padded with spaces.
// A decoder cannot tell padding from trailing spaces in Value.
type OtherString struct {
	Value string
	Min   int
}

// NewOtherString returns an OtherString with the given minimum width.
func NewOtherString(value string, minWidth int) OtherString {
	return OtherString{Value: value, Min: minWidth}
}

func (s OtherString) contentLen() int {
	return min(len(s.Value), MaxStringLen)
}

func (s OtherString) width() int {
	return min(max(s.contentLen(), s.Min), MaxStringLen)
}

// EncodedSize returns 1 + the padded, truncated content length.
func (s OtherString) EncodedSize() int {
	return 1 + s.width()
}

// EncodeInto writes the length byte, the content and any padding.
func (s OtherString) EncodeInto(buf []byte) int {
	w := s.width()
	buf[0] = byte(w)
	n := copy(buf[1:1+w], s.Value[:s.contentLen()])
	for i := 1 + n; i <= w; i++ {
		buf[i] = ' '
	}
	return 1 + w
}
