package capture

import (
	"os"
	"runtime"

	"go.uber.org/zap"
)

// MaxDepth is the deepest stack RuntimeUnwinder reports.
const MaxDepth = 128

// RuntimeUnwinder walks goroutine stacks with runtime.Callers.
//
// The Go runtime can always name a frame from its own pc tables, so that
// alone says nothing about whether a crash report needs offline
// symbolication. RuntimeUnwinder treats a frame as resolvable only when the
// executable also ships DWARF, which is what external tools need and what
// "go build -ldflags=-w" removes.
type RuntimeUnwinder struct {
	debugInfo bool
}

// NewRuntimeUnwinder inspects the running executable once for DWARF.
func NewRuntimeUnwinder() *RuntimeUnwinder {
	u := &RuntimeUnwinder{}

	exe, err := os.Executable()
	if err != nil {
		Logger().Debug("locate executable", zap.Error(err))
		return u
	}
	u.debugInfo, err = HasDebugInfo(exe)
	if err != nil {
		Logger().Debug("inspect executable", zap.String("path", exe), zap.Error(err))
	}
	Logger().Debug("runtime unwinder ready",
		zap.String("executable", exe),
		zap.Bool("debug_info", u.debugInfo))
	return u
}

// HasDebugInfo reports whether the executable carries DWARF.
func (u *RuntimeUnwinder) HasDebugInfo() bool {
	return u.debugInfo
}

// Trace walks the calling goroutine's stack.
func (u *RuntimeUnwinder) Trace(skip int, fn func(ip uint64) bool) {
	var pcs [MaxDepth]uintptr
	// runtime.Callers and Trace itself
	n := runtime.Callers(skip+2, pcs[:])
	for _, pc := range pcs[:n] {
		if !fn(uint64(pc)) {
			return
		}
	}
}

// Resolve names the function containing the call before ip.
func (u *RuntimeUnwinder) Resolve(ip uint64) (Location, bool) {
	if !u.debugInfo || ip == 0 {
		return Location{}, false
	}
	pc := uintptr(ip) - 1
	f := runtime.FuncForPC(pc)
	if f == nil {
		return Location{}, false
	}
	file, line := f.FileLine(pc)
	return Location{Function: f.Name(), File: file, Line: line}, true
}
