package symbolicate

import (
	"encoding/json"
	"strconv"

	"github.com/wippyai/stabletrace/stacktrace"
	"github.com/wippyai/stabletrace/symcache"
)

type versionJSON struct {
	Major      uint64  `json:"major"`
	Minor      uint64  `json:"minor"`
	Patch      uint64  `json:"patch"`
	CanaryHash *string `json:"canaryHash,omitempty"`
	DevBuild   bool    `json:"devBuild"`
}

type headerJSON struct {
	TraceVersion uint8       `json:"traceVersion"`
	OS           string      `json:"os"`
	Arch         string      `json:"arch"`
	Version      versionJSON `json:"version"`
}

type frameJSON struct {
	Addr      string                   `json:"addr"`
	Locations []symcache.FrameLocation `json:"locations"`
}

type traceJSON struct {
	Header headerJSON  `json:"header"`
	Frames []frameJSON `json:"frames"`
}

func toHeaderJSON(h stacktrace.Header) headerJSON {
	v := versionJSON{
		Major:    h.Version.Major,
		Minor:    h.Version.Minor,
		Patch:    h.Version.Patch,
		DevBuild: h.Version.DevBuild,
	}
	if hash, ok := h.Version.CanaryHash.Get(); ok {
		v.CanaryHash = &hash
	}
	return headerJSON{
		TraceVersion: h.TraceVersion,
		OS:           string(h.OS),
		Arch:         string(h.Arch),
		Version:      v,
	}
}

// FormatAddr renders an address the way the JSON form does.
func FormatAddr(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}

// MarshalJSON renders addresses as 0x-prefixed hex strings, since JSON
// numbers cannot carry every u64.
func (t *SymbolicatedTrace) MarshalJSON() ([]byte, error) {
	out := traceJSON{
		Header: toHeaderJSON(t.Header),
		Frames: make([]frameJSON, len(t.Frames)),
	}
	for i, f := range t.Frames {
		locs := f.Locations
		if locs == nil {
			locs = []symcache.FrameLocation{}
		}
		out.Frames[i] = frameJSON{Addr: FormatAddr(f.Addr), Locations: locs}
	}
	return json.Marshal(out)
}
