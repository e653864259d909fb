package stabletrace_test

import (
	"testing"

	"github.com/wippyai/stabletrace"
	"github.com/wippyai/stabletrace/capture"
	"github.com/wippyai/stabletrace/stabilize"
	"github.com/wippyai/stabletrace/stacktrace"
)

type listUnwinder struct {
	ips   []uint64
	debug uint64
}

func (u listUnwinder) Trace(_ int, fn func(ip uint64) bool) {
	for _, ip := range u.ips {
		if !fn(ip) {
			return
		}
	}
}

func (u listUnwinder) Resolve(ip uint64) (capture.Location, bool) {
	if u.debug != 0 && ip == u.debug {
		return capture.Location{Function: "main.main"}, true
	}
	return capture.Location{}, false
}

var textStabilizer = stabilize.Func(func(addr uint64) (uint64, bool) {
	addr = stabilize.Adjust(addr)
	if addr >= 0x1000 && addr < 0x2000 {
		return addr - 0x1000, true
	}
	return 0, false
})

func decode(t *testing.T, s string) *stacktrace.Trace {
	t.Helper()
	tr, err := stacktrace.DecodeString(s)
	if err != nil {
		t.Fatalf("DecodeString(%q): %v", s, err)
	}
	return tr
}

func TestCapture(t *testing.T) {
	version := stacktrace.MustParseVersion("1.46.3-deadbeef")
	gate := capture.New(listUnwinder{ips: []uint64{0x1011, 0x9000, 0x1101}}, textStabilizer)

	s, ok := stabletrace.Capture(gate, version)
	if !ok {
		t.Fatal("Capture reported local debug info")
	}

	tr := decode(t, s)
	want := []uint64{0x10, 0, 0x100}
	if len(tr.Addrs) != len(want) {
		t.Fatalf("addrs = %#x, want %#x", tr.Addrs, want)
	}
	for i := range want {
		if tr.Addrs[i] != want[i] {
			t.Errorf("addr %d = %#x, want %#x", i, tr.Addrs[i], want[i])
		}
	}
	if tr.Header.OS != stacktrace.HostOS() || tr.Header.Arch != stacktrace.HostArch() {
		t.Errorf("header = %s/%s, want host", tr.Header.Arch, tr.Header.OS)
	}
	if tr.Header.Version != version {
		t.Errorf("version = %v, want %v", tr.Header.Version, version)
	}
}

func TestCaptureWithDebugInfo(t *testing.T) {
	gate := capture.New(listUnwinder{ips: []uint64{0x1011, 0x1101}, debug: 0x1101}, textStabilizer)

	if s, ok := stabletrace.Capture(gate, stacktrace.Version{}); ok {
		t.Errorf("Capture = %q, want no trace", s)
	}

	tr := decode(t, stabletrace.CaptureAll(gate, stacktrace.Version{}))
	if len(tr.Addrs) != 1 || tr.Addrs[0] != 0x10 {
		t.Errorf("CaptureAll addrs = %#x, want [0x10]", tr.Addrs)
	}
}
