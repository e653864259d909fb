package stacktrace

import (
	"runtime"

	"github.com/wippyai/stabletrace/wire"
)

// OS identifies the operating system a trace was captured on. The three
// known names encode as a single tag byte; any other name is carried as a
// string.
type OS string

const (
	OSLinux   OS = "linux"
	OSMac     OS = "macos"
	OSWindows OS = "windows"
)

// osOtherMin keeps the length byte of an unknown name above the known tags.
const osOtherMin = 3

// Tag returns the wire tag of a known OS.
func (o OS) Tag() (byte, bool) {
	switch o {
	case OSLinux:
		return 0, true
	case OSMac:
		return 1, true
	case OSWindows:
		return 2, true
	}
	return 0, false
}

// EncodedSize is 1 for known systems and 1 + name width otherwise.
func (o OS) EncodedSize() int {
	if _, ok := o.Tag(); ok {
		return 1
	}
	return wire.NewOtherString(string(o), osOtherMin).EncodedSize()
}

// EncodeInto writes the tag byte or the padded name.
func (o OS) EncodeInto(buf []byte) int {
	if tag, ok := o.Tag(); ok {
		buf[0] = tag
		return 1
	}
	return wire.NewOtherString(string(o), osOtherMin).EncodeInto(buf)
}

func osFromTag(tag byte) (OS, bool) {
	switch tag {
	case 0:
		return OSLinux, true
	case 1:
		return OSMac, true
	case 2:
		return OSWindows, true
	}
	return "", false
}

// Arch identifies the CPU architecture a trace was captured on.
type Arch string

const (
	ArchX86_64  Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
)

const archOtherMin = 2

// Tag returns the wire tag of a known architecture.
func (a Arch) Tag() (byte, bool) {
	switch a {
	case ArchX86_64:
		return 0, true
	case ArchAarch64:
		return 1, true
	}
	return 0, false
}

// EncodedSize is 1 for known architectures and 1 + name width otherwise.
func (a Arch) EncodedSize() int {
	if _, ok := a.Tag(); ok {
		return 1
	}
	return wire.NewOtherString(string(a), archOtherMin).EncodedSize()
}

// EncodeInto writes the tag byte or the padded name.
func (a Arch) EncodeInto(buf []byte) int {
	if tag, ok := a.Tag(); ok {
		buf[0] = tag
		return 1
	}
	return wire.NewOtherString(string(a), archOtherMin).EncodeInto(buf)
}

func archFromTag(tag byte) (Arch, bool) {
	switch tag {
	case 0:
		return ArchX86_64, true
	case 1:
		return ArchAarch64, true
	}
	return "", false
}

// HostOS returns the wire name of the running operating system.
func HostOS() OS {
	return osName(runtime.GOOS)
}

// HostArch returns the wire name of the running architecture.
func HostArch() Arch {
	return archName(runtime.GOARCH)
}

func osName(goos string) OS {
	if goos == "darwin" {
		return OSMac
	}
	return OS(goos)
}

func archName(goarch string) Arch {
	switch goarch {
	case "amd64":
		return ArchX86_64
	case "arm64":
		return ArchAarch64
	}
	return Arch(goarch)
}
