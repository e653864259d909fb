package stabletrace

import (
	"github.com/wippyai/stabletrace/capture"
	"github.com/wippyai/stabletrace/stacktrace"
)

// Capture records the calling stack and returns it as base64url text. It
// returns false when the running binary carries its own debug information,
// since such a build can symbolicate locally.
func Capture(gate *capture.Gate, version stacktrace.Version) (string, bool) {
	addrs, ok := gate.StableAddrsIfNoDebugInfo()
	if !ok {
		return "", false
	}
	return encode(addrs, version), true
}

// CaptureAll is Capture without the debug information check. Frames from
// the first one with local debug information on are omitted.
func CaptureAll(gate *capture.Gate, version stacktrace.Version) string {
	return encode(gate.StableAddrs(), version)
}

func encode(addrs []capture.Addr, version stacktrace.Version) string {
	return stacktrace.NewHost(capture.Offsets(addrs), version).EncodeBase64URL()
}
