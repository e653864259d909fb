// Package stacktrace defines the stable stack trace record and its wire form.
//
// A Trace is a Header followed by the stabilized addresses of a call stack,
// innermost frame first. The encoded layout is:
//
//	trace version   varint, currently 0
//	os              1 byte tag (linux=0, macos=1, windows=2) or length-prefixed name (min width 3)
//	arch            1 byte tag (x86_64=0, aarch64=1) or length-prefixed name (min width 2)
//	major           varint
//	minor           varint
//	patch           varint
//	canary hash     0 if absent, else length-prefixed (min width 1)
//	dev build       1 byte, 0 or 1
//	addresses       varints until the end of the record
//
// The trace version is the only field allowed to change the layout of what
// follows it. Decode rejects versions it does not know before reading on.
//
// The minimum widths keep the length byte of an unrecognized name from
// colliding with a known tag, so the decoder can tell them apart.
package stacktrace
