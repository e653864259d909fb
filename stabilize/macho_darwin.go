//go:build darwin && cgo

package stabilize

/*
#include <mach-o/dyld.h>
#include <mach-o/loader.h>
*/
import "C"

import "unsafe"

// Binding names the compiled OS binding.
const Binding = "macho"

// Only image 0, the main executable, is authoritative.
const mainImageIndex = 0

func lookup(addr uint64) (uint64, bool) {
	if C._dyld_image_count() == 0 {
		return 0, false
	}
	hdr := C._dyld_get_image_header(mainImageIndex)
	if hdr == nil {
		return 0, false
	}
	slide := uint64(C._dyld_get_image_vmaddr_slide(mainImageIndex))

	base := unsafe.Pointer(hdr)
	header := unsafe.Slice((*byte)(base), machHeader64Size)
	image := unsafe.Slice((*byte)(base), machHeader64Size+machCommandsSize(header))
	return resolveMachO(addr, uint64(uintptr(base)), slide, image)
}
