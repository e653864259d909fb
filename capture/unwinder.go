package capture

// Location is the local debug information of one frame.
type Location struct {
	Function string
	File     string
	Line     int
}

// Unwinder is the stack walking facility a Gate drives.
type Unwinder interface {
	// Trace calls fn with the return address of each frame, innermost
	// first, until fn returns false or the stack ends. skip frames above
	// the caller of Trace are omitted.
	Trace(skip int, fn func(ip uint64) bool)

	// Resolve returns the local debug information for a return address.
	// ok is false when the running binary cannot answer on its own.
	Resolve(ip uint64) (loc Location, ok bool)
}
