//go:build !linux && !windows && !(darwin && cgo) && !(freebsd && cgo)

package stabilize

// Binding names the compiled OS binding.
const Binding = "none"

func lookup(uint64) (uint64, bool) {
	return 0, false
}
