package symcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	// records out of order on purpose
	helper := b.AddFunction("helper", "", "c", [2]uint64{0x2000, 0x2040})
	mainFn := b.AddFunction("main", "_main", "c", [2]uint64{0x1000, 0x1100})
	b.AddInline(mainFn, 2, "inner", "", "/src/b.c", 20, [2]uint64{0x1020, 0x1030})
	b.AddInline(mainFn, 1, "outer", "", "/src/a.c", 10, [2]uint64{0x1010, 0x1050})
	b.AddLine(0x2000, "/src/h.c", 3)
	b.EndSequence(0x2040)
	b.AddLine(0x1000, "/src/a.c", 5)
	b.AddLine(0x1020, "/src/b.c", 30)
	b.EndSequence(0x1100)
	assert.Equal(t, 0, helper)

	raw, err := b.Bytes()
	require.NoError(t, err)
	c, err := Open(raw)
	require.NoError(t, err)

	got := c.Lookup(0x1028)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"inner", "outer", "main"}, []string{got[0].DemangledName, got[1].DemangledName, got[2].DemangledName})
	assert.Equal(t, "/src/b.c", got[0].FullPath)
	assert.Equal(t, uint32(30), got[0].Line)
	assert.Equal(t, "/src/b.c", got[1].FullPath)
	assert.Equal(t, uint32(20), got[1].Line)
	assert.Equal(t, "/src/a.c", got[2].FullPath)
	assert.Equal(t, uint32(10), got[2].Line)
	assert.Equal(t, "_main", got[2].Name)

	got = c.Lookup(0x2001)
	require.Len(t, got, 1)
	assert.Equal(t, FrameLocation{DemangledName: "helper", Name: "helper", Language: "c", FullPath: "/src/h.c", Line: 3}, got[0])
}

func TestBuilderFoldedCode(t *testing.T) {
	b := NewBuilder()
	b.AddFunction("first", "", "c", [2]uint64{0x100, 0x200})
	b.AddFunction("folded", "", "c", [2]uint64{0x100, 0x200})
	b.AddFunction("empty", "", "c", [2]uint64{0x300, 0x300})

	raw, err := b.Bytes()
	require.NoError(t, err)
	c, err := Open(raw)
	require.NoError(t, err)

	got := c.Lookup(0x150)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].DemangledName)
	assert.Equal(t, UnknownFile, got[0].FullPath)
	assert.Empty(t, c.Lookup(0x300))
}

func TestBuilderSequenceBoundary(t *testing.T) {
	b := NewBuilder()
	b.AddFunction("f", "", "go", [2]uint64{0x0, 0x100})
	b.AddLine(0x10, "/a.go", 1)
	b.AddLine(0x20, "/b.go", 2)
	b.EndSequence(0x20)

	raw, err := b.Bytes()
	require.NoError(t, err)
	c, err := Open(raw)
	require.NoError(t, err)

	got := c.Lookup(0x20)
	require.Len(t, got, 1)
	assert.Equal(t, "/b.go", got[0].FullPath, "a sequence starting where another ends wins")

	got = c.Lookup(0x5)
	require.Len(t, got, 1)
	assert.Equal(t, UnknownFile, got[0].FullPath)
	assert.Equal(t, uint32(0), got[0].Line)
}

func TestBuilderRejectsBadDepth(t *testing.T) {
	b := NewBuilder()
	fn := b.AddFunction("f", "", "c", [2]uint64{0, 0x10})
	b.AddInline(fn, 0, "g", "", "", 0, [2]uint64{0, 4})
	_, err := b.Bytes()
	assert.ErrorIs(t, err, ErrCorrupt)
}
