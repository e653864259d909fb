package stabilize

import "debug/elf"

// ELFObject is one loaded ELF object as seen by the dynamic loader.
type ELFObject struct {
	Bias  uint64 // load bias: runtime address minus link-time address
	Progs []ELFProg
}

// ELFProg is the part of a program header needed for resolution.
type ELFProg struct {
	Type  elf.ProgType
	Vaddr uint64
	Memsz uint64
}

// resolveELF finds the first object with a PT_LOAD segment containing addr
// and returns addr minus that object's load bias. Objects are searched in
// the order given, which is the loader's order.
func resolveELF(addr uint64, objects []ELFObject) (uint64, bool) {
	for _, obj := range objects {
		if addr < obj.Bias {
			continue
		}
		for _, p := range obj.Progs {
			if p.Type != elf.PT_LOAD {
				continue
			}
			start := obj.Bias + p.Vaddr
			end := start + p.Memsz
			if addr >= start && addr < end {
				return addr - obj.Bias, true
			}
		}
	}
	return 0, false
}

// mainBias computes the load bias of an executable from the runtime address
// of its program headers. Without a PT_PHDR entry the executable is not
// position independent and the bias is zero.
func mainBias(phdrAddr uint64, progs []ELFProg) uint64 {
	for _, p := range progs {
		if p.Type == elf.PT_PHDR {
			return phdrAddr - p.Vaddr
		}
	}
	return 0
}
