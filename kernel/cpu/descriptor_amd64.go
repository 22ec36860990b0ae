package cpu

import "unsafe"

// DescriptorTablePointer is the pseudo descriptor consumed by LGDT and LIDT:
// a 16-bit limit immediately followed by a 64-bit base address. The leading
// padding keeps the base naturally aligned while limit and base stay adjacent
// in memory.
type DescriptorTablePointer struct {
	_     [3]uint16
	limit uint16
	base  uintptr
}

// Set points the descriptor at a table with the given base address and size
// in bytes.
func (p *DescriptorTablePointer) Set(base, size uintptr) {
	p.base = base
	p.limit = uint16(size - 1)
}

// Limit returns the table size minus one.
func (p *DescriptorTablePointer) Limit() uint16 {
	return p.limit
}

// Base returns the table base address.
func (p *DescriptorTablePointer) Base() uintptr {
	return p.base
}

// Addr returns the address that must be passed to LoadGDT or LoadIDT.
func (p *DescriptorTablePointer) Addr() uintptr {
	return uintptr(unsafe.Pointer(&p.limit))
}
