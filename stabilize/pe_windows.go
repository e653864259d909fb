//go:build windows

package stabilize

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Binding names the compiled OS binding.
const Binding = "pe"

const maxModulePath = 512

// exePath is resolved at init so lookups take no locks. It stays empty
// when the executable cannot be located, and nothing resolves.
var exePath string

func init() {
	exePath, _ = os.Executable()
}

func lookup(addr uint64) (uint64, bool) {
	var module windows.Handle
	err := windows.GetModuleHandleEx(
		windows.GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS|windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT,
		(*uint16)(unsafe.Pointer(uintptr(addr))),
		&module,
	)
	if err != nil {
		return 0, false
	}

	var name [maxModulePath]uint16
	n, err := windows.GetModuleFileName(module, &name[0], uint32(len(name)))
	if err != nil || n == 0 {
		return 0, false
	}
	return resolvePE(addr, uint64(module), windows.UTF16ToString(name[:n]), exePath)
}
