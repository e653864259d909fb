//go:build linux && !cgo

package stabilize

import (
	"debug/elf"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Binding names the compiled OS binding.
const Binding = "elf-auxv"

const (
	atPHDR  = 3
	atPHENT = 4
	atPHNUM = 5
)

// Without cgo there is no dl_iterate_phdr, but a pure Go binary has nothing
// loaded besides itself and the vDSO. The main executable's program headers
// are read from the auxiliary vector at init, so lookups take no locks.
var mainImage []ELFObject

func init() {
	mainImage = loadMainImage()
}

func loadMainImage() []ELFObject {
	auxv, err := unix.Auxv()
	if err != nil {
		return nil
	}
	var phdr, phent, phnum uintptr
	for _, kv := range auxv {
		switch kv[0] {
		case atPHDR:
			phdr = kv[1]
		case atPHENT:
			phent = kv[1]
		case atPHNUM:
			phnum = kv[1]
		}
	}
	if phdr == 0 || phnum == 0 || phent != unsafe.Sizeof(elf.Prog64{}) {
		return nil
	}

	raw := unsafe.Slice((*elf.Prog64)(unsafe.Pointer(phdr)), phnum)
	progs := make([]ELFProg, len(raw))
	for i, p := range raw {
		progs[i] = ELFProg{Type: elf.ProgType(p.Type), Vaddr: p.Vaddr, Memsz: p.Memsz}
	}
	return []ELFObject{{Bias: mainBias(uint64(phdr), progs), Progs: progs}}
}

func lookup(addr uint64) (uint64, bool) {
	return resolveELF(addr, mainImage)
}
