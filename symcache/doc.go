// Package symcache builds and queries symbol databases for stabilized
// addresses.
//
// A symcache is derived from a debug information file (ELF, Mach-O or PE
// with DWARF) and holds everything symbolication needs: function address
// ranges, inlined call sites and the line table. Addresses are stored in the
// same space the stabilize package produces, so a decoded trace can be
// looked up without knowing where the process was loaded.
//
// Serialized form:
//
//	magic    "STSC"
//	format   1 byte, currently 1
//	payload  zstd compressed CBOR
//
// Build produces the serialized bytes and Open turns them back into a
// read-only *SymCache. Multi-architecture Mach-O archives are rejected.
package symcache
