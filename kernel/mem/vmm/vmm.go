// Package vmm navigates and edits the active 4-level page table hierarchy.
// The boot loader maps all of physical memory at a fixed virtual offset so
// every page table can be reached by adding that offset to its physical
// address.
package vmm

import (
	"unsafe"

	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/cpu"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
)

var (
	// activePDTFn is used by tests to override calls to cpu.ActivePDT
	// which will cause a fault if called in user-mode.
	activePDTFn = cpu.ActivePDT

	// flushTLBEntryFn is used by tests to override calls to
	// cpu.FlushTLBEntry which will cause a fault if called in user-mode.
	flushTLBEntryFn = cpu.FlushTLBEntry
)

// FrameAllocatorFn is a function that can allocate physical frames.
type FrameAllocatorFn func() (pmm.Frame, *kernel.Error)

// OffsetPageTable provides access to the page table hierarchy rooted at a
// level 4 table when all physical memory is mapped at physOffset.
type OffsetPageTable struct {
	level4     *PageTable
	physOffset uintptr
}

// ActiveLevel4Table returns a pointer to the level 4 table that the CPU is
// currently using. The physical address is read from CR3 and converted to a
// virtual one by adding physOffset.
//
// The caller must guarantee that all of physical memory is mapped at
// physOffset. Holding more than one mutable reference to the returned table
// is not safe; Init should only be called once.
func ActiveLevel4Table(physOffset uintptr) *PageTable {
	level4Frame := pmm.FrameFromAddress(activePDTFn() & ptePhysPageMask)
	return (*PageTable)(unsafe.Pointer(physOffset + level4Frame.Address()))
}

// Init returns an OffsetPageTable for the active page table hierarchy.
func Init(physOffset uintptr) *OffsetPageTable {
	return &OffsetPageTable{
		level4:     ActiveLevel4Table(physOffset),
		physOffset: physOffset,
	}
}

// Level4 returns the root table of this hierarchy.
func (pt *OffsetPageTable) Level4() *PageTable {
	return pt.level4
}

// tableAt returns the page table stored at the given physical address. This
// is the only place where physical addresses are converted to pointers.
func (pt *OffsetPageTable) tableAt(physAddr uintptr) *PageTable {
	return (*PageTable)(unsafe.Pointer(pt.physOffset + physAddr))
}
