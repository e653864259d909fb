package stabilize

// Stabilizer maps a raw return address to a stable offset within the main
// executable. ok is false when the address cannot be stabilized.
type Stabilizer interface {
	StableAddr(addr uint64) (offset uint64, ok bool)
}

// Func adapts a plain function to Stabilizer.
type Func func(addr uint64) (uint64, bool)

// StableAddr calls f.
func (f Func) StableAddr(addr uint64) (uint64, bool) {
	return f(addr)
}

// Adjust moves a return address back into the call instruction that
// produced it. A return address points past the call, which for calls to
// noreturn functions can be outside the caller entirely.
func Adjust(addr uint64) uint64 {
	if addr == 0 {
		return 0
	}
	return addr - 1
}

type host struct{}

// Host returns the Stabilizer for the running process, backed by the
// binding compiled in for this target.
func Host() Stabilizer {
	return host{}
}

// StableAddr resolves Adjust(addr) against the running process.
func (host) StableAddr(addr uint64) (uint64, bool) {
	return lookup(Adjust(addr))
}

// Supported reports whether the compiled binding can resolve anything.
func Supported() bool {
	return Binding != "none"
}
