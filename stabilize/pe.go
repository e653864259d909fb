package stabilize

import "strings"

// resolvePE returns addr relative to the module that owns it, provided that
// module is the main executable. Windows paths compare case-insensitively.
func resolvePE(addr, moduleBase uint64, modulePath, exePath string) (uint64, bool) {
	if modulePath == "" || !strings.EqualFold(modulePath, exePath) {
		return 0, false
	}
	if addr < moduleBase {
		return 0, false
	}
	return addr - moduleBase, true
}
