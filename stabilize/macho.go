package stabilize

import (
	"bytes"
	"debug/macho"
	"encoding/binary"
)

const (
	machHeader64Size = 32
	segment64NameOff = 8
	segment64AddrOff = 24
	segment64SizeOff = 32
	segment64MinSize = 72
)

var textSegment = []byte("__TEXT")

// resolveMachO resolves addr against the main image. image holds the
// in-memory mach_header_64 followed by its load commands, headerAddr is the
// address the header was loaded at and slide is the loader's vmaddr slide.
// The offset is relative to the start of the __TEXT segment.
func resolveMachO(addr, headerAddr, slide uint64, image []byte) (uint64, bool) {
	if headerAddr == 0 || headerAddr >= addr {
		return 0, false
	}
	if len(image) < machHeader64Size {
		return 0, false
	}
	bo := binary.LittleEndian
	if bo.Uint32(image[0:4]) != macho.Magic64 {
		return 0, false
	}
	ncmds := bo.Uint32(image[16:20])

	stable := addr - min(slide, addr)
	off := machHeader64Size
	for range ncmds {
		if off+8 > len(image) {
			return 0, false
		}
		cmd := macho.LoadCmd(bo.Uint32(image[off:]))
		size := int(bo.Uint32(image[off+4:]))
		if size < 8 || off+size > len(image) {
			return 0, false
		}
		if cmd == macho.LoadCmdSegment64 && size >= segment64MinSize {
			seg := image[off : off+size]
			name := seg[segment64NameOff : segment64NameOff+16]
			if i := bytes.IndexByte(name, 0); i >= 0 {
				name = name[:i]
			}
			if bytes.Equal(name, textSegment) {
				start := bo.Uint64(seg[segment64AddrOff:])
				end := start + bo.Uint64(seg[segment64SizeOff:])
				if stable >= start && stable < end {
					return stable - start, true
				}
			}
		}
		off += size
	}
	return 0, false
}

// machCommandsSize reads sizeofcmds from a mach_header_64.
func machCommandsSize(header []byte) int {
	return int(binary.LittleEndian.Uint32(header[20:24]))
}
