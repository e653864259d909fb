//go:build cgo && (linux || freebsd)

package stabilize

/*
#define _GNU_SOURCE
#include <link.h>
#include <stdint.h>

struct st_prog {
	uint64_t obj;
	uint64_t bias;
	uint64_t vaddr;
	uint64_t memsz;
	uint32_t type;
};

struct st_collect {
	struct st_prog *progs;
	int cap;
	int n;
	uint64_t obj;
};

static int st_phdr_cb(struct dl_phdr_info *info, size_t size, void *data) {
	struct st_collect *c = data;
	for (int i = 0; i < info->dlpi_phnum; i++) {
		if (c->n >= c->cap) {
			return 1;
		}
		struct st_prog *p = &c->progs[c->n++];
		p->obj = c->obj;
		p->bias = (uint64_t)info->dlpi_addr;
		p->vaddr = (uint64_t)info->dlpi_phdr[i].p_vaddr;
		p->memsz = (uint64_t)info->dlpi_phdr[i].p_memsz;
		p->type = (uint32_t)info->dlpi_phdr[i].p_type;
	}
	c->obj++;
	return 0;
}

static int st_collect_progs(struct st_prog *progs, int cap) {
	struct st_collect c = { progs, cap, 0, 0 };
	dl_iterate_phdr(st_phdr_cb, &c);
	return c.n;
}
*/
import "C"

import (
	"debug/elf"
	"unsafe"
)

// Binding names the compiled OS binding.
const Binding = "elf"

// maxProgs bounds the program headers collected per lookup. A process with
// more loaded segments than this resolves only against the first objects,
// which always include the main executable.
const maxProgs = 1024

func lookup(addr uint64) (uint64, bool) {
	var buf [maxProgs]C.struct_st_prog
	n := int(C.st_collect_progs((*C.struct_st_prog)(unsafe.Pointer(&buf[0])), C.int(maxProgs)))
	return resolveELF(addr, groupObjects(buf[:n]))
}

func groupObjects(progs []C.struct_st_prog) []ELFObject {
	var objects []ELFObject
	for i := range progs {
		p := &progs[i]
		if len(objects) == 0 || uint64(progs[i-1].obj) != uint64(p.obj) {
			objects = append(objects, ELFObject{Bias: uint64(p.bias)})
		}
		last := &objects[len(objects)-1]
		last.Progs = append(last.Progs, ELFProg{
			Type:  elf.ProgType(p._type),
			Vaddr: uint64(p.vaddr),
			Memsz: uint64(p.memsz),
		})
	}
	return objects
}
