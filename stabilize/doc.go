// Package stabilize turns raw return addresses into offsets that stay valid
// across restarts, address space randomization and relinking of the loader.
//
// The offset is relative to the main executable's code: the load bias is
// removed on ELF systems, the __TEXT segment start on Mach-O and the module
// base on Windows. Addresses that do not belong to the main executable are
// not stabilized.
//
// Resolution is split in two. The resolvers in elf.go, macho.go and pe.go
// are pure functions over image metadata and build on every platform. Exactly
// one binding per target collects that metadata from the running process:
//
//	elf_cgo.go     linux, freebsd with cgo   dl_iterate_phdr
//	elf_auxv.go    linux without cgo         auxiliary vector (main executable only)
//	macho_darwin.go darwin with cgo          dyld image 0
//	pe_windows.go  windows                   GetModuleHandleEx
//	none.go        everything else           never resolves
//
// Nothing here logs or allocates on the heap per call beyond what the OS
// binding needs, so Host is safe to call from a thread that is handling a
// fault.
package stabilize
