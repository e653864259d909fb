package stacktrace

import (
	"strings"

	"github.com/wippyai/stabletrace/wire"
)

// TraceVersion is the layout version written by this package.
const TraceVersion uint8 = 0

// Header is the fixed preamble of a trace.
type Header struct {
	TraceVersion uint8
	OS           OS
	Arch         Arch
	Version      Version
}

// EncodedSize sums the fields in wire order.
func (h Header) EncodedSize() int {
	return wire.Byte(h.TraceVersion).EncodedSize() +
		h.OS.EncodedSize() +
		h.Arch.EncodedSize() +
		h.Version.EncodedSize()
}

// EncodeInto writes trace version, OS, arch and version in that order.
// Reordering these fields requires a new TraceVersion.
func (h Header) EncodeInto(buf []byte) int {
	i := 0
	i += wire.Byte(h.TraceVersion).EncodeInto(buf[i:])
	i += h.OS.EncodeInto(buf[i:])
	i += h.Arch.EncodeInto(buf[i:])
	i += h.Version.EncodeInto(buf[i:])
	return i
}

// BuildKey identifies the build that produced the trace:
// arch/os/major.minor.patch[-canary]. Dev builds share the key of the
// release they are based on.
func (h Header) BuildKey() string {
	var b strings.Builder
	b.WriteString(string(h.Arch))
	b.WriteByte('/')
	b.WriteString(string(h.OS))
	b.WriteByte('/')
	v := h.Version
	v.DevBuild = false
	b.WriteString(v.String())
	return b.String()
}

var fileKeyReplacer = strings.NewReplacer("/", "__", ".", "_")

// FileKey is BuildKey made safe for use as a file name.
func (h Header) FileKey() string {
	return fileKeyReplacer.Replace(h.BuildKey())
}
