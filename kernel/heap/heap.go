// Package heap reserves the virtual address range that backs the kernel heap
// and maps it to physical frames.
package heap

import (
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
	"github.com/MaciejSzybiak/first-os/kernel/mem"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
	"github.com/MaciejSzybiak/first-os/kernel/mem/vmm"
)

const (
	// HeapStart is the virtual address where the heap begins. It lies
	// well outside the identity and physical memory mappings set up by
	// the bootloader.
	HeapStart = uintptr(0x4444_4444_0000)

	// HeapSize is the size of the heap region.
	HeapSize = 100 * mem.Kb
)

// Mapper establishes page mappings in the active address space.
type Mapper interface {
	Map(page vmm.Page, frame pmm.Frame, flags vmm.PageTableEntryFlag, allocFn vmm.FrameAllocatorFn) *kernel.Error
}

// Init maps every page of [HeapStart, HeapStart+HeapSize) to a frame
// obtained from allocFn. Intermediate page tables are also allocated from
// allocFn. Init stops at the first allocation or mapping error and returns
// it; pages mapped up to that point are left in place.
func Init(mapper Mapper, allocFn vmm.FrameAllocatorFn) *kernel.Error {
	var (
		firstPage = vmm.PageFromAddress(HeapStart)
		lastPage  = vmm.PageFromAddress(HeapStart + uintptr(HeapSize) - 1)
	)

	for page := firstPage; page <= lastPage; page++ {
		frame, err := allocFn()
		if err != nil {
			return err
		}

		if err = mapper.Map(page, frame, vmm.FlagPresent|vmm.FlagRW, allocFn); err != nil {
			return err
		}
	}

	kfmt.Printf("[heap] mapped %dKb at 0x%x\n", uint64(HeapSize/mem.Kb), HeapStart)
	return nil
}
