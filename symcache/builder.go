package symcache

import (
	"cmp"
	"slices"
)

// Builder assembles a symcache from individual records. Build uses it for
// DWARF; other producers, such as symbol tables or tests, can use it
// directly. Addresses are stabilized offsets and ranges are half open.
type Builder struct {
	files     []string
	fileIndex map[string]int

	functions []function
	ranges    []funcRange
	inlines   []inline
	owner     []int // function index per entry of inlines
	lines     []lineRow
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{fileIndex: map[string]int{}}
}

// AddFunction records a function and its address ranges and returns its
// index for AddInline. Empty ranges are ignored.
func (b *Builder) AddFunction(name, linkage, language string, ranges ...[2]uint64) int {
	fn := len(b.functions)
	b.functions = append(b.functions, function{Name: name, Linkage: linkage, Language: language})
	for _, r := range ranges {
		if r[1] <= r[0] {
			continue
		}
		b.ranges = append(b.ranges, funcRange{Start: r[0], End: r[1], Func: fn})
	}
	return fn
}

// AddInline records code inlined into function fn. depth is 1 for a call
// made directly by fn, 2 for a call made by that inlined code, and so on.
// callFile and callLine locate the call in the enclosing frame; an empty
// callFile means unknown.
func (b *Builder) AddInline(fn, depth int, name, linkage, callFile string, callLine int, ranges ...[2]uint64) {
	file := noFile
	if callFile != "" {
		file = b.file(callFile)
	}
	for _, r := range ranges {
		if r[1] <= r[0] {
			continue
		}
		b.inlines = append(b.inlines, inline{
			Start:    r[0],
			End:      r[1],
			Depth:    depth,
			Name:     name,
			Linkage:  linkage,
			CallFile: file,
			CallLine: callLine,
		})
		b.owner = append(b.owner, fn)
	}
}

// AddLine records that code from addr up to the next row comes from
// file:line. An empty file means unknown.
func (b *Builder) AddLine(addr uint64, file string, line int) {
	f := noFile
	if file != "" {
		f = b.file(file)
	}
	b.lines = append(b.lines, lineRow{Addr: addr, File: f, Line: line})
}

// EndSequence marks addr as the first address after a run of line rows.
func (b *Builder) EndSequence(addr uint64) {
	b.lines = append(b.lines, lineRow{Addr: addr, File: noFile})
}

// Bytes sorts the records and returns the serialized symcache.
func (b *Builder) Bytes() ([]byte, error) {
	d := b.finish()
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d.marshal()
}

func (b *Builder) file(path string) int {
	if i, ok := b.fileIndex[path]; ok {
		return i
	}
	i := len(b.files)
	b.files = append(b.files, path)
	b.fileIndex[path] = i
	return i
}

// finish sorts the tables into the order Lookup searches them.
func (b *Builder) finish() *cacheData {
	sorted := slices.Clone(b.ranges)
	slices.SortStableFunc(sorted, func(x, y funcRange) int {
		return cmp.Compare(x.Start, y.Start)
	})
	ranges := sorted[:0]
	for _, r := range sorted {
		if n := len(ranges); n > 0 && ranges[n-1].End > r.Start {
			// folded or duplicated code: first function wins
			continue
		}
		ranges = append(ranges, r)
	}

	functions := slices.Clone(b.functions)
	order := make([]int, len(b.inlines))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		if c := cmp.Compare(b.owner[x], b.owner[y]); c != 0 {
			return c
		}
		return cmp.Compare(b.inlines[x].Start, b.inlines[y].Start)
	})
	inlines := make([]inline, len(order))
	for i, j := range order {
		inlines[i] = b.inlines[j]
	}
	for i := 0; i < len(order); {
		fn := b.owner[order[i]]
		j := i
		for j < len(order) && b.owner[order[j]] == fn {
			j++
		}
		if fn >= 0 && fn < len(functions) {
			functions[fn].InlineStart = i
			functions[fn].InlineEnd = j
		}
		i = j
	}

	lines := slices.Clone(b.lines)
	slices.SortStableFunc(lines, func(x, y lineRow) int {
		if c := cmp.Compare(x.Addr, y.Addr); c != 0 {
			return c
		}
		// a sequence end sorts before a sequence starting at the same address
		return cmp.Compare(endRank(x), endRank(y))
	})

	return &cacheData{
		Files:     slices.Clone(b.files),
		Functions: functions,
		Ranges:    ranges,
		Inlines:   inlines,
		Lines:     lines,
	}
}

func endRank(r lineRow) int {
	if r.File == noFile && r.Line == 0 {
		return 0
	}
	return 1
}
