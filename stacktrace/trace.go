package stacktrace

import (
	"github.com/wippyai/stabletrace/wire"
)

// Addrs is an ordered list of stabilized addresses, innermost frame first.
type Addrs []uint64

// EncodedSize sums the varint sizes of all addresses.
func (a Addrs) EncodedSize() int {
	n := 0
	for _, v := range a {
		n += wire.UvarintSize(v)
	}
	return n
}

// EncodeInto writes the addresses back to back.
func (a Addrs) EncodeInto(buf []byte) int {
	i := 0
	for _, v := range a {
		i += wire.PutUvarint(buf[i:], v)
	}
	return i
}

// Trace is the serializable unit: a header and the address list.
type Trace struct {
	Header Header
	Addrs  Addrs
}

// New builds a trace of the current TraceVersion. Names that are not one of
// the known OS or architecture names are carried as strings.
func New(addrs []uint64, arch Arch, os OS, version Version) *Trace {
	return &Trace{
		Header: Header{
			TraceVersion: TraceVersion,
			OS:           os,
			Arch:         arch,
			Version:      version,
		},
		Addrs: addrs,
	}
}

// NewHost builds a trace tagged with the running OS and architecture.
func NewHost(addrs []uint64, version Version) *Trace {
	return New(addrs, HostArch(), HostOS(), version)
}

// EncodedSize returns the exact encoded length of the trace.
func (t *Trace) EncodedSize() int {
	return t.Header.EncodedSize() + t.Addrs.EncodedSize()
}

// EncodeInto writes the header followed by the addresses.
func (t *Trace) EncodeInto(buf []byte) int {
	i := t.Header.EncodeInto(buf)
	i += t.Addrs.EncodeInto(buf[i:])
	return i
}

// Encode returns the binary form of the trace.
func (t *Trace) Encode() []byte {
	return wire.Marshal(t)
}

// EncodeBase64URL returns the text transport form of the trace.
func (t *Trace) EncodeBase64URL() string {
	return wire.EncodeBase64URL(t.Encode())
}
