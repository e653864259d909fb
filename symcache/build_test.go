package symcache

import (
	"debug/macho"
	"encoding/binary"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sterrors "github.com/wippyai/stabletrace/errors"
	"github.com/wippyai/stabletrace/stabilize"
)

// thinMachO is a 64-bit Mach-O header with no load commands.
func thinMachO(cpu macho.Cpu) []byte {
	b := make([]byte, 32)
	bo := binary.LittleEndian
	bo.PutUint32(b[0:], macho.Magic64)
	bo.PutUint32(b[4:], uint32(cpu))
	bo.PutUint32(b[12:], uint32(macho.TypeExec))
	return b
}

func fatMachO(cpus ...macho.Cpu) []byte {
	const archHeaderSize = 20
	bo := binary.BigEndian

	hdr := make([]byte, 8+archHeaderSize*len(cpus))
	bo.PutUint32(hdr[0:], macho.MagicFat)
	bo.PutUint32(hdr[4:], uint32(len(cpus)))

	out := hdr
	for i, cpu := range cpus {
		thin := thinMachO(cpu)
		a := hdr[8+i*archHeaderSize:]
		bo.PutUint32(a[0:], uint32(cpu))
		bo.PutUint32(a[8:], uint32(len(out)))
		bo.PutUint32(a[12:], uint32(len(thin)))
		out = append(out, thin...)
	}
	return out
}

func TestBuildRejectsFatArchive(t *testing.T) {
	_, err := Build(fatMachO(macho.CpuAmd64, macho.CpuArm64))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFatArchive)

	var e *sterrors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 2, e.Value)
}

func TestBuildSingleArchFatArchive(t *testing.T) {
	_, err := Build(fatMachO(macho.CpuArm64))
	assert.ErrorIs(t, err, ErrNoDebugInfo)
}

func TestBuildWithoutDWARF(t *testing.T) {
	_, err := Build(thinMachO(macho.CpuAmd64))
	assert.ErrorIs(t, err, ErrNoDebugInfo)
}

func TestBuildRejectsUnknownFormat(t *testing.T) {
	_, err := Build([]byte(strings.Repeat("x", 256)))
	assert.ErrorIs(t, err, &sterrors.Error{Phase: sterrors.PhaseBuild, Kind: sterrors.KindUnsupported})
}

func TestBuildFileMissing(t *testing.T) {
	_, err := BuildFile(t.TempDir() + "/missing.debug")
	assert.ErrorIs(t, err, &sterrors.Error{Phase: sterrors.PhaseBuild, Kind: sterrors.KindIO})
}

//go:noinline
func lookupTarget() int {
	return 42
}

func TestBuildOwnExecutable(t *testing.T) {
	if testing.Short() {
		t.Skip("reads the DWARF of the test binary")
	}
	exe, err := os.Executable()
	require.NoError(t, err)

	raw, err := BuildFile(exe)
	if errors.Is(err, ErrNoDebugInfo) {
		t.Skip("test binary was linked without DWARF")
	}
	require.NoError(t, err)

	c, err := Open(raw)
	require.NoError(t, err)
	require.Positive(t, c.Functions())

	pc := uint64(reflect.ValueOf(lookupTarget).Pointer())
	off, ok := stabilize.Host().StableAddr(pc + 1)
	if !ok {
		t.Skipf("%s binding cannot stabilize addresses here", stabilize.Binding)
	}

	locs := c.Lookup(off)
	require.NotEmpty(t, locs)
	fn := locs[len(locs)-1]
	assert.Equal(t, "github.com/wippyai/stabletrace/symcache.lookupTarget", fn.DemangledName)
	assert.Equal(t, "go", fn.Language)
	assert.True(t, strings.HasSuffix(fn.FullPath, "build_test.go"), fn.FullPath)
	assert.Positive(t, fn.Line)
}
