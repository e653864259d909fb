package symcache

import (
	"bytes"
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/stabletrace/errors"
)

var (
	// ErrFatArchive matches Build errors for Mach-O archives holding more
	// than one architecture.
	ErrFatArchive = &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindFatArchive, Offset: -1}

	// ErrNoDebugInfo matches Build errors for object files without DWARF.
	ErrNoDebugInfo = &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindMissingDebugInfo, Offset: -1}
)

// object is a parsed debug information file reduced to what Build needs.
type object struct {
	format string
	// base is subtracted from every DWARF address to land in the
	// stabilized address space.
	base     uint64
	hasDWARF bool
	dwarf    func() (*dwarf.Data, error)
}

// Build creates a serialized symcache from the contents of a debug
// information file.
func Build(debugInfo []byte) ([]byte, error) {
	obj, err := openObject(bytes.NewReader(debugInfo))
	if err != nil {
		return nil, err
	}
	if !obj.hasDWARF {
		return nil, errors.New(errors.PhaseBuild, errors.KindMissingDebugInfo).
			Format(obj.format).
			Detail("object file has no DWARF sections").
			Build()
	}
	d, err := obj.dwarf()
	if err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidData).
			Format(obj.format).
			Cause(err).
			Detail("load DWARF").
			Build()
	}

	data, err := extract(d, obj.base)
	if err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidData).
			Format(obj.format).
			Cause(err).
			Detail("read DWARF").
			Build()
	}

	out, err := data.marshal()
	if err != nil {
		return nil, err
	}
	Logger().Info("built symcache",
		zap.String("format", obj.format),
		zap.Int("functions", len(data.Functions)),
		zap.Int("inlines", len(data.Inlines)),
		zap.Int("lines", len(data.Lines)),
		zap.Int("files", len(data.Files)),
		zap.Int("bytes", len(out)))
	return out, nil
}

// BuildFile reads a debug information file and builds its symcache.
func BuildFile(path string) ([]byte, error) {
	debugInfo, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBuild, errors.KindIO, err, "read "+path)
	}
	return Build(debugInfo)
}

func openObject(r io.ReaderAt) (*object, error) {
	if f, err := elf.NewFile(r); err == nil {
		return &object{
			format:   "elf",
			hasDWARF: hasSection(elfSectionNames(f), ".debug_info", ".zdebug_info"),
			dwarf:    f.DWARF,
		}, nil
	}

	if ff, err := macho.NewFatFile(r); err == nil {
		if len(ff.Arches) != 1 {
			return nil, errors.New(errors.PhaseBuild, errors.KindFatArchive).
				Format("macho-fat").
				Value(len(ff.Arches)).
				Detail("archive holds %d architectures, exactly one is supported", len(ff.Arches)).
				Build()
		}
		return machoObject(ff.Arches[0].File), nil
	}

	if f, err := macho.NewFile(r); err == nil {
		return machoObject(f), nil
	}

	if f, err := pe.NewFile(r); err == nil {
		var base uint64
		switch oh := f.OptionalHeader.(type) {
		case *pe.OptionalHeader64:
			base = oh.ImageBase
		case *pe.OptionalHeader32:
			base = uint64(oh.ImageBase)
		}
		return &object{
			format:   "pe",
			base:     base,
			hasDWARF: hasSection(peSectionNames(f), ".debug_info", ".zdebug_info"),
			dwarf:    f.DWARF,
		}, nil
	}

	return nil, errors.Unsupported(errors.PhaseBuild, "not an ELF, Mach-O or PE file")
}

func machoObject(f *macho.File) *object {
	var base uint64
	if text := f.Segment("__TEXT"); text != nil {
		base = text.Addr
	}
	return &object{
		format:   "macho",
		base:     base,
		hasDWARF: hasSection(machoSectionNames(f), "__debug_info", "__zdebug_info"),
		dwarf:    f.DWARF,
	}
}

func elfSectionNames(f *elf.File) []string {
	names := make([]string, len(f.Sections))
	for i, s := range f.Sections {
		names[i] = s.Name
	}
	return names
}

func machoSectionNames(f *macho.File) []string {
	names := make([]string, len(f.Sections))
	for i, s := range f.Sections {
		names[i] = s.Name
	}
	return names
}

func peSectionNames(f *pe.File) []string {
	names := make([]string, len(f.Sections))
	for i, s := range f.Sections {
		names[i] = s.Name
	}
	return names
}

func hasSection(names []string, want ...string) bool {
	for _, n := range names {
		for _, w := range want {
			if n == w {
				return true
			}
		}
	}
	return false
}
