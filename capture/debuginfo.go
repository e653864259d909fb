package capture

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"io"
	"os"

	"github.com/wippyai/stabletrace/errors"
)

var dwarfSections = map[string]bool{
	".debug_info":   true,
	".zdebug_info":  true,
	"__debug_info":  true,
	"__zdebug_info": true,
}

// HasDebugInfo reports whether the object file at path contains DWARF.
// ELF, Mach-O and PE files are recognized.
func HasDebugInfo(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrap(errors.PhaseCapture, errors.KindIO, err, "open "+path)
	}
	defer f.Close()
	return hasDebugInfo(f)
}

func hasDebugInfo(r io.ReaderAt) (bool, error) {
	if f, err := elf.NewFile(r); err == nil {
		for _, s := range f.Sections {
			if dwarfSections[s.Name] {
				return true, nil
			}
		}
		return false, nil
	}
	if f, err := macho.NewFile(r); err == nil {
		for _, s := range f.Sections {
			if dwarfSections[s.Name] {
				return true, nil
			}
		}
		return false, nil
	}
	if f, err := pe.NewFile(r); err == nil {
		for _, s := range f.Sections {
			if dwarfSections[s.Name] {
				return true, nil
			}
		}
		return false, nil
	}
	return false, errors.Unsupported(errors.PhaseCapture, "unrecognized object file format")
}
