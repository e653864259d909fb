package symcache

import (
	"debug/dwarf"
	"io"
)

// extractor feeds a Builder from DWARF, one compile unit at a time.
type extractor struct {
	*Builder
	d    *dwarf.Data
	base uint64

	// per compile unit
	lang      string
	unitFiles []*dwarf.LineFile
}

// scope is the innermost enclosing function of a DIE while walking a unit.
type scope struct {
	fn    int // -1 outside any function
	depth int // inline nesting depth inside fn
}

func extract(d *dwarf.Data, base uint64) (*cacheData, error) {
	x := &extractor{Builder: NewBuilder(), d: d, base: base}

	r := d.Reader()
	stack := []scope{{fn: -1}}
	for {
		e, err := r.Next()
		if err != nil {
			return nil, err
		}
		if e == nil {
			break
		}
		if e.Tag == 0 {
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		cur := stack[len(stack)-1]
		next := cur
		switch e.Tag {
		case dwarf.TagCompileUnit, dwarf.TagPartialUnit:
			if err := x.beginUnit(e); err != nil {
				return nil, err
			}
			next = scope{fn: -1}
		case dwarf.TagSubprogram:
			if fn, ok := x.addFunction(e); ok {
				next = scope{fn: fn}
			}
		case dwarf.TagInlinedSubroutine:
			if cur.fn >= 0 {
				x.addInline(e, cur.fn, cur.depth+1)
				next.depth = cur.depth + 1
			}
		}
		if e.Children {
			stack = append(stack, next)
		}
	}
	return x.finish(), nil
}

func (x *extractor) beginUnit(cu *dwarf.Entry) error {
	x.lang = unitLanguage(cu)
	x.unitFiles = nil

	lr, err := x.d.LineReader(cu)
	if err != nil {
		return err
	}
	if lr == nil {
		return nil
	}
	x.unitFiles = lr.Files()

	var le dwarf.LineEntry
	for {
		if err := lr.Next(&le); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		addr, ok := x.rebase(le.Address)
		if !ok {
			continue
		}
		switch {
		case le.EndSequence:
			x.EndSequence(addr)
		case le.File != nil:
			x.AddLine(addr, le.File.Name, le.Line)
		default:
			x.AddLine(addr, "", le.Line)
		}
	}
	return nil
}

func (x *extractor) addFunction(e *dwarf.Entry) (int, bool) {
	rs, ok := x.addrRanges(e)
	if !ok {
		return 0, false
	}
	name, linkage := x.names(e)
	return x.AddFunction(name, linkage, x.lang, rs...), true
}

func (x *extractor) addInline(e *dwarf.Entry, fn, depth int) {
	rs, ok := x.addrRanges(e)
	if !ok {
		return
	}
	name, linkage := x.names(e)
	var callFile string
	if i, ok := e.Val(dwarf.AttrCallFile).(int64); ok && i >= 0 && int(i) < len(x.unitFiles) && x.unitFiles[i] != nil {
		callFile = x.unitFiles[i].Name
	}
	callLine, _ := e.Val(dwarf.AttrCallLine).(int64)
	x.AddInline(fn, depth, name, linkage, callFile, int(callLine), rs...)
}

// addrRanges returns the rebased address ranges of a DIE.
func (x *extractor) addrRanges(e *dwarf.Entry) ([][2]uint64, bool) {
	rs, err := x.d.Ranges(e)
	if err != nil || len(rs) == 0 {
		return nil, false
	}
	out := rs[:0]
	for _, r := range rs {
		start, ok1 := x.rebase(r[0])
		end, ok2 := x.rebase(r[1])
		if ok1 && ok2 {
			out = append(out, [2]uint64{start, end})
		}
	}
	return out, true
}

// names returns the display and linkage names of a DIE, following
// DW_AT_abstract_origin and DW_AT_specification when the DIE has none.
func (x *extractor) names(e *dwarf.Entry) (name, linkage string) {
	for hops := 0; e != nil && hops < 4; hops++ {
		if name == "" {
			name, _ = e.Val(dwarf.AttrName).(string)
		}
		if linkage == "" {
			linkage, _ = e.Val(dwarf.AttrLinkageName).(string)
		}
		if name != "" && linkage != "" {
			break
		}
		off, ok := e.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset)
		if !ok {
			off, ok = e.Val(dwarf.AttrSpecification).(dwarf.Offset)
		}
		if !ok {
			break
		}
		e = x.entryAt(off)
	}
	if name == "" {
		name = linkage
	}
	return name, linkage
}

func (x *extractor) entryAt(off dwarf.Offset) *dwarf.Entry {
	r := x.d.Reader()
	r.Seek(off)
	e, err := r.Next()
	if err != nil {
		return nil
	}
	return e
}

func (x *extractor) rebase(addr uint64) (uint64, bool) {
	if addr < x.base {
		return 0, false
	}
	return addr - x.base, true
}
