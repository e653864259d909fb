package stacktrace

import (
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "1.0.0", want: Version{Major: 1}},
		{in: "2.3.4+dev", want: Version{Major: 2, Minor: 3, Patch: 4, DevBuild: true}},
		{in: "1.0.0-abc123", want: Version{Major: 1, CanaryHash: Canary("abc123")}},
		{in: "1.0.0-abc123+dev", want: Version{Major: 1, CanaryHash: Canary("abc123"), DevBuild: true}},
		{in: "1.0", wantErr: true},
		{in: "v1.0.0", wantErr: true},
		{in: "1.0.0+nightly", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseVersion(%q) = %+v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestAbsentCanaryIsOneZeroByte(t *testing.T) {
	var c CanaryHash
	buf := []byte{0xff}
	if n := c.EncodeInto(buf); n != 1 || buf[0] != 0 {
		t.Errorf("EncodeInto = %d, %v", n, buf)
	}
}

func TestEmptyCanaryIsPadded(t *testing.T) {
	c := Canary("")
	buf := make([]byte, c.EncodedSize())
	c.EncodeInto(buf)
	if len(buf) != 2 || buf[0] != 1 || buf[1] != ' ' {
		t.Errorf("encoded = %v, want [1 ' ']", buf)
	}
}

func TestBuildKey(t *testing.T) {
	h := Header{
		OS:      OSLinux,
		Arch:    ArchX86_64,
		Version: Version{Major: 1, Minor: 46, Patch: 3, CanaryHash: Canary("deadbeef"), DevBuild: true},
	}
	if got := h.BuildKey(); got != "x86_64/linux/1.46.3-deadbeef" {
		t.Errorf("BuildKey = %q", got)
	}
	if got := h.FileKey(); got != "x86_64__linux__1_46_3-deadbeef" {
		t.Errorf("FileKey = %q", got)
	}
}

func TestHostNames(t *testing.T) {
	if osName("darwin") != OSMac || osName("linux") != OSLinux || osName("plan9") != "plan9" {
		t.Error("osName mapping")
	}
	if archName("amd64") != ArchX86_64 || archName("arm64") != ArchAarch64 || archName("riscv64") != "riscv64" {
		t.Error("archName mapping")
	}
}
