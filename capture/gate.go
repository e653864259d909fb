package capture

import (
	"go.uber.org/zap"

	"github.com/wippyai/stabletrace/stabilize"
)

// Addr is one captured frame. Resolved is false when the frame's address
// does not belong to the main executable or could not be located.
type Addr struct {
	Offset   uint64
	Resolved bool
}

// Gate captures stabilized stack traces.
type Gate struct {
	unwinder   Unwinder
	stabilizer stabilize.Stabilizer
}

// New creates a Gate over the given unwinder and stabilizer.
func New(u Unwinder, s stabilize.Stabilizer) *Gate {
	return &Gate{unwinder: u, stabilizer: s}
}

// NewHost creates a Gate for the running process.
func NewHost() *Gate {
	return New(NewRuntimeUnwinder(), stabilize.Host())
}

// frames above the caller of a public entry point: walk and the entry point
const gateFrames = 2

// StableAddrs captures the calling stack. The result covers every frame up
// to, not including, the first frame with local debug information.
func (g *Gate) StableAddrs() []Addr {
	addrs, _ := g.walk()
	return addrs
}

// StableAddrsIfNoDebugInfo captures the calling stack unless some frame
// resolves local debug information, in which case ok is false. That outcome
// is expected for unstripped builds and is not an error.
func (g *Gate) StableAddrsIfNoDebugInfo() (addrs []Addr, ok bool) {
	addrs, found := g.walk()
	if found {
		return nil, false
	}
	return addrs, true
}

func (g *Gate) walk() ([]Addr, bool) {
	var addrs []Addr
	found := false
	g.unwinder.Trace(gateFrames, func(ip uint64) bool {
		if loc, ok := g.unwinder.Resolve(ip); ok {
			found = true
			Logger().Debug("frame has local debug info",
				zap.Int("frame", len(addrs)),
				zap.String("function", loc.Function))
			return false
		}
		off, ok := g.stabilizer.StableAddr(ip)
		addrs = append(addrs, Addr{Offset: off, Resolved: ok})
		return true
	})
	return addrs, found
}

// Offsets flattens a capture for encoding. Unresolved frames become 0 so
// the list keeps one entry per frame.
func Offsets(addrs []Addr) []uint64 {
	out := make([]uint64, len(addrs))
	for i, a := range addrs {
		if a.Resolved {
			out[i] = a.Offset
		}
	}
	return out
}
