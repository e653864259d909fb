// Package stabletrace captures stack traces of a running program in a form
// that can be symbolicated later, on another machine, against the debug
// information of the exact build that produced them.
//
// A trace is a header (OS, architecture and build version) followed by
// stable addresses: offsets into the main executable's image that do not
// depend on where the loader placed it. The encoded form is a compact
// binary record, carried as unpadded base64url text.
//
// Capturing is split in packages:
//
//   - stabilize maps a runtime address to a stable address
//   - capture walks the stack and applies a Stabilizer per frame
//   - stacktrace encodes and decodes the record
//
// Symbolication lives in symcache (debug info to a compact lookup table)
// and symbolicate (trace plus symcache to frames, and an HTTP endpoint).
//
// Basic usage:
//
//	gate := capture.NewHost()
//	if trace, ok := stabletrace.Capture(gate, stacktrace.MustParseVersion("1.4.2")); ok {
//		log.Printf("stack: %s", trace)
//	}
package stabletrace
