package stacktrace_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	sterrors "github.com/wippyai/stabletrace/errors"
	"github.com/wippyai/stabletrace/stacktrace"
)

func TestEncodeFixture(t *testing.T) {
	trace := stacktrace.New(
		[]uint64{1, 2, 3},
		"aarch64",
		"windows",
		stacktrace.Version{Major: 4, Minor: 5, Patch: 6, DevBuild: true},
	)

	want := []byte{0, 2, 1, 4, 5, 6, 0, 1, 1, 2, 3}
	got := trace.Encode()
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
	if trace.EncodedSize() != len(want) {
		t.Errorf("EncodedSize = %d, want %d", trace.EncodedSize(), len(want))
	}
	if s := trace.EncodeBase64URL(); s != "AAIBBAUGAAEBAgM" {
		t.Errorf("EncodeBase64URL = %q", s)
	}
}

func TestKnownTagsAreOneByte(t *testing.T) {
	for _, os := range []stacktrace.OS{stacktrace.OSLinux, stacktrace.OSMac, stacktrace.OSWindows} {
		if os.EncodedSize() != 1 {
			t.Errorf("%s EncodedSize = %d", os, os.EncodedSize())
		}
	}
	for _, arch := range []stacktrace.Arch{stacktrace.ArchX86_64, stacktrace.ArchAarch64} {
		if arch.EncodedSize() != 1 {
			t.Errorf("%s EncodedSize = %d", arch, arch.EncodedSize())
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		trace   *stacktrace.Trace
		wantOS  stacktrace.OS
		wantArc stacktrace.Arch
	}{
		{
			name:    "basic",
			trace:   stacktrace.New([]uint64{1, 2, 3}, "x86_64", "linux", stacktrace.MustParseVersion("1.0.0")),
			wantOS:  stacktrace.OSLinux,
			wantArc: stacktrace.ArchX86_64,
		},
		{
			name:    "macos",
			trace:   stacktrace.New([]uint64{0x1234, 0xffffffffffff}, "aarch64", "macos", stacktrace.MustParseVersion("2.3.4+dev")),
			wantOS:  stacktrace.OSMac,
			wantArc: stacktrace.ArchAarch64,
		},
		{
			name:    "other values",
			trace:   stacktrace.New(nil, "otherarch", "otheros", stacktrace.MustParseVersion("1.0.0")),
			wantOS:  "otheros",
			wantArc: "otherarch",
		},
		{
			name:    "short other names keep padding",
			trace:   stacktrace.New([]uint64{7}, "x", "ab", stacktrace.MustParseVersion("1.0.0")),
			wantOS:  "ab ",
			wantArc: "x ",
		},
		{
			name: "canary hash",
			trace: stacktrace.New([]uint64{42}, "x86_64", "windows",
				stacktrace.MustParseVersion("1.0.0-134f14feebabdb8ebf294130c9d073492d3eb1c6+dev")),
			wantOS:  stacktrace.OSWindows,
			wantArc: stacktrace.ArchX86_64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := stacktrace.DecodeString(tt.trace.EncodeBase64URL())
			if err != nil {
				t.Fatalf("DecodeString: %v", err)
			}
			if decoded.Header.OS != tt.wantOS {
				t.Errorf("OS = %q, want %q", decoded.Header.OS, tt.wantOS)
			}
			if decoded.Header.Arch != tt.wantArc {
				t.Errorf("Arch = %q, want %q", decoded.Header.Arch, tt.wantArc)
			}
			if decoded.Header.Version != tt.trace.Header.Version {
				t.Errorf("Version = %+v, want %+v", decoded.Header.Version, tt.trace.Header.Version)
			}
			if len(decoded.Addrs) != len(tt.trace.Addrs) {
				t.Fatalf("Addrs = %v, want %v", decoded.Addrs, tt.trace.Addrs)
			}
			for i := range decoded.Addrs {
				if decoded.Addrs[i] != tt.trace.Addrs[i] {
					t.Errorf("Addrs[%d] = %d, want %d", i, decoded.Addrs[i], tt.trace.Addrs[i])
				}
			}
		})
	}
}

func TestCanaryHash(t *testing.T) {
	v := stacktrace.MustParseVersion("1.0.0-134f14feebabdb8ebf294130c9d073492d3eb1c6")
	decoded, err := stacktrace.Decode(stacktrace.New(nil, "x86_64", "linux", v).Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	hash, ok := decoded.Header.Version.CanaryHash.Get()
	if !ok || hash != "134f14feebabdb8ebf294130c9d073492d3eb1c6" {
		t.Errorf("canary = %q, %v", hash, ok)
	}
	if decoded.Header.Version.DevBuild {
		t.Error("DevBuild should be false")
	}
}

func TestLongOtherNameIsTruncated(t *testing.T) {
	name := strings.Repeat("z", 300)
	decoded, err := stacktrace.Decode(stacktrace.New([]uint64{9}, "x86_64", stacktrace.OS(name), stacktrace.Version{}).Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded.Header.OS) != name[:255] {
		t.Errorf("OS has %d bytes, want 255", len(decoded.Header.OS))
	}
	if len(decoded.Addrs) != 1 || decoded.Addrs[0] != 9 {
		t.Errorf("Addrs = %v", decoded.Addrs)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := stacktrace.Decode([]byte{1, 0, 0, 1, 0, 0, 0, 0})
	if !errors.Is(err, stacktrace.ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want unsupported version", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	truncated := &sterrors.Error{Phase: sterrors.PhaseDecode, Kind: sterrors.KindTruncated}
	invalid := &sterrors.Error{Phase: sterrors.PhaseDecode, Kind: sterrors.KindInvalidData}

	tests := []struct {
		name string
		data []byte
		want error
		path string
	}{
		{"empty", nil, truncated, "header.trace_version"},
		{"missing arch", []byte{0, 0}, truncated, "header.arch"},
		{"short os name", []byte{0, 5, 'a', 'b'}, truncated, "header.os"},
		{"missing patch", []byte{0, 0, 0, 1, 2}, truncated, "header.version.patch"},
		{"short canary", []byte{0, 0, 0, 1, 2, 3, 4, 'a'}, truncated, "header.version.canary_hash"},
		{"bad dev flag", []byte{0, 0, 0, 1, 2, 3, 0, 2}, invalid, "header.version.dev_build"},
		{"unterminated addr", []byte{0, 0, 0, 1, 2, 3, 0, 0, 0x80}, truncated, "addrs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stacktrace.Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var e *sterrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("err is %T", err)
			}
			if got := strings.Join(e.Path, "."); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestDecodeNormalizesKnownNamesInStringForm(t *testing.T) {
	data := []byte{0, 5, 'l', 'i', 'n', 'u', 'x', 7, 'a', 'a', 'r', 'c', 'h', '6', '4', 1, 2, 3, 0, 0}
	tr, err := stacktrace.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tr.Header.OS != stacktrace.OSLinux || tr.Header.Arch != stacktrace.ArchAarch64 {
		t.Fatalf("header = %s/%s, want aarch64/linux", tr.Header.Arch, tr.Header.OS)
	}

	want := []byte{0, 0, 1, 1, 2, 3, 0, 0}
	if got := tr.Encode(); !bytes.Equal(got, want) {
		t.Errorf("re-encoded = %v, want canonical %v", got, want)
	}
}

func TestDecodeEmptyReportsOffsetZero(t *testing.T) {
	_, err := stacktrace.Decode(nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "(offset 0)") {
		t.Errorf("error %q does not report offset 0", err.Error())
	}
}

func TestDecodeStringRejectsBadBase64(t *testing.T) {
	if _, err := stacktrace.DecodeString("!!!"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEncodedSizeMatchesWrittenProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Encode writes EncodedSize bytes and decodes back", prop.ForAll(
		func(addrs []uint64, osName, archName, canary string, major, minor, patch uint64, dev bool) bool {
			v := stacktrace.Version{Major: major, Minor: minor, Patch: patch, DevBuild: dev}
			if canary != "" {
				v.CanaryHash = stacktrace.Canary(canary)
			}
			trace := stacktrace.New(addrs, stacktrace.Arch(archName), stacktrace.OS(osName), v)

			buf := make([]byte, trace.EncodedSize()+8)
			n := trace.EncodeInto(buf)
			if n != trace.EncodedSize() {
				return false
			}

			decoded, err := stacktrace.Decode(buf[:n])
			if err != nil || len(decoded.Addrs) != len(addrs) {
				return false
			}
			for i := range addrs {
				if decoded.Addrs[i] != addrs[i] {
					return false
				}
			}
			got := decoded.Header.Version
			return got.Major == major && got.Minor == minor && got.Patch == patch && got.DevBuild == dev
		},
		gen.SliceOf(gen.UInt64()),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
