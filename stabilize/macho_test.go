package stabilize

import (
	"debug/macho"
	"encoding/binary"
	"testing"
)

func segment64(name string, vmaddr, vmsize uint64) []byte {
	seg := make([]byte, segment64MinSize)
	bo := binary.LittleEndian
	bo.PutUint32(seg[0:], uint32(macho.LoadCmdSegment64))
	bo.PutUint32(seg[4:], segment64MinSize)
	copy(seg[segment64NameOff:segment64NameOff+16], name)
	bo.PutUint64(seg[segment64AddrOff:], vmaddr)
	bo.PutUint64(seg[segment64SizeOff:], vmsize)
	return seg
}

func loadCmd(cmd macho.LoadCmd, size int) []byte {
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b[0:], uint32(cmd))
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	return b
}

func machImage(cmds ...[]byte) []byte {
	var body []byte
	for _, c := range cmds {
		body = append(body, c...)
	}
	hdr := make([]byte, machHeader64Size)
	bo := binary.LittleEndian
	bo.PutUint32(hdr[0:], uint32(macho.Magic64))
	bo.PutUint32(hdr[12:], uint32(macho.TypeExec))
	bo.PutUint32(hdr[16:], uint32(len(cmds)))
	bo.PutUint32(hdr[20:], uint32(len(body)))
	return append(hdr, body...)
}

func TestResolveMachO(t *testing.T) {
	const (
		textAddr = 0x100000000
		textSize = 0x4000
		slide    = 0x5000
		header   = textAddr + slide
	)
	image := machImage(
		segment64("__PAGEZERO", 0, textAddr),
		loadCmd(macho.LoadCmdDylib, 24),
		segment64("__TEXT", textAddr, textSize),
		segment64("__DATA", textAddr+textSize, 0x1000),
	)

	if got := machCommandsSize(image); got != len(image)-machHeader64Size {
		t.Fatalf("machCommandsSize = %d", got)
	}

	tests := []struct {
		name   string
		addr   uint64
		want   uint64
		wantOK bool
	}{
		{"inside text", header + 0x1234, 0x1234, true},
		{"last text byte", header + textSize - 1, textSize - 1, true},
		{"data segment", header + textSize, 0, false},
		{"before header", header - 1, 0, false},
		{"at header", header, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveMachO(tt.addr, header, slide, image)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("resolveMachO(%#x) = %#x, %v; want %#x, %v", tt.addr, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMachOOffByOne(t *testing.T) {
	const textAddr, textSize = 0x100000000, 0x1000
	image := machImage(segment64("__TEXT", textAddr, textSize))
	ret := uint64(textAddr + textSize)

	if _, ok := resolveMachO(ret, textAddr-0x1000, 0, image); ok {
		t.Fatal("unadjusted return address should fall outside __TEXT")
	}
	got, ok := resolveMachO(Adjust(ret), textAddr-0x1000, 0, image)
	if !ok || got != textSize-1 {
		t.Errorf("adjusted = %#x, %v", got, ok)
	}
}

func TestResolveMachORejectsMalformed(t *testing.T) {
	good := machImage(segment64("__TEXT", 0x1000, 0x1000))

	tests := []struct {
		name  string
		image []byte
	}{
		{"empty", nil},
		{"short header", good[:16]},
		{"wrong magic", append([]byte{0xce, 0xfa, 0xed, 0xfe}, good[4:]...)},
		{"truncated commands", good[:machHeader64Size+40]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := resolveMachO(0x1800, 0x800, 0, tt.image); ok {
				t.Error("malformed image resolved")
			}
		})
	}
}
