package symbolicate

import (
	"github.com/wippyai/stabletrace/stacktrace"
	"github.com/wippyai/stabletrace/symcache"
)

// Frame is one address of a trace and what it resolved to. Locations is
// empty when the address is outside every known function.
type Frame struct {
	Addr      uint64
	Locations []symcache.FrameLocation
}

// SymbolicatedTrace is a trace with every address resolved.
type SymbolicatedTrace struct {
	Header stacktrace.Header
	Frames []Frame
}

// Symbolicator resolves addresses of one build.
type Symbolicator struct {
	cache *symcache.SymCache
}

// New wraps an opened symcache.
func New(c *symcache.SymCache) *Symbolicator {
	return &Symbolicator{cache: c}
}

// Open parses a serialized symcache into a Symbolicator.
func Open(data []byte) (*Symbolicator, error) {
	c, err := symcache.Open(data)
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

// SymCache returns the underlying symcache.
func (s *Symbolicator) SymCache() *symcache.SymCache {
	return s.cache
}

// SymbolicateAddrs resolves each address, keeping order.
func (s *Symbolicator) SymbolicateAddrs(addrs []uint64) []Frame {
	frames := make([]Frame, len(addrs))
	for i, addr := range addrs {
		locs := s.cache.Lookup(addr)
		if locs == nil {
			locs = []symcache.FrameLocation{}
		}
		frames[i] = Frame{Addr: addr, Locations: locs}
	}
	return frames
}

// Symbolicate resolves every address of a decoded trace.
func (s *Symbolicator) Symbolicate(t *stacktrace.Trace) *SymbolicatedTrace {
	return &SymbolicatedTrace{
		Header: t.Header,
		Frames: s.SymbolicateAddrs(t.Addrs),
	}
}
