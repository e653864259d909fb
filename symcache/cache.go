package symcache

import (
	"sort"
)

// UnknownFile is the path reported when no source file is known.
const UnknownFile = "<unknown file>"

// FrameLocation is one symbolicated frame. An address inside inlined code
// yields several, innermost first.
type FrameLocation struct {
	DemangledName string `json:"demangledName"`
	Name          string `json:"name"`
	Language      string `json:"language"`
	FullPath      string `json:"fullPath"`
	Line          uint32 `json:"line"`
}

// SymCache is an opened symcache. It owns its tables and is safe for
// concurrent lookups.
type SymCache struct {
	data *cacheData
	size int
}

// Open parses a serialized symcache. data is not retained.
func Open(data []byte) (*SymCache, error) {
	d, err := unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &SymCache{data: d, size: len(data)}, nil
}

// Size returns the length of the serialized form Open was given.
func (c *SymCache) Size() int {
	return c.size
}

// Functions returns the number of functions in the cache.
func (c *SymCache) Functions() int {
	return len(c.data.Functions)
}

// Lookup symbolicates a stabilized address. The result is empty when no
// function contains addr.
func (c *SymCache) Lookup(addr uint64) []FrameLocation {
	d := c.data

	i := sort.Search(len(d.Ranges), func(i int) bool { return d.Ranges[i].Start > addr }) - 1
	if i < 0 || addr >= d.Ranges[i].End {
		return nil
	}
	fn := d.Functions[d.Ranges[i].Func]

	// inline chain, outermost first
	var chain []*inline
	for j := fn.InlineStart; j < fn.InlineEnd; j++ {
		in := &d.Inlines[j]
		if in.Start > addr {
			break
		}
		if addr < in.End {
			chain = append(chain, in)
		}
	}
	sort.SliceStable(chain, func(a, b int) bool { return chain[a].Depth < chain[b].Depth })

	file, line := c.lineAt(addr)
	out := make([]FrameLocation, 0, len(chain)+1)
	for k := len(chain) - 1; k >= 0; k-- {
		in := chain[k]
		out = append(out, c.location(in.Name, in.Linkage, fn.Language, file, line))
		file, line = in.CallFile, in.CallLine
	}
	out = append(out, c.location(fn.Name, fn.Linkage, fn.Language, file, line))
	return out
}

func (c *SymCache) lineAt(addr uint64) (file, line int) {
	rows := c.data.Lines
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Addr > addr }) - 1
	if i < 0 {
		return noFile, 0
	}
	return rows[i].File, rows[i].Line
}

func (c *SymCache) location(name, linkage, lang string, file, line int) FrameLocation {
	path := UnknownFile
	if file != noFile {
		path = c.data.Files[file]
	}
	if linkage == "" {
		linkage = name
	}
	if lang == "" {
		lang = LanguageUnknown
	}
	return FrameLocation{
		DemangledName: name,
		Name:          linkage,
		Language:      lang,
		FullPath:      path,
		Line:          uint32(max(line, 0)),
	}
}
