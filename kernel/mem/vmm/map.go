package vmm

import (
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/mem"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
)

var (
	errNoHugePageSupport = &kernel.Error{Module: "vmm", Message: "huge pages are not supported"}
	errPageAlreadyMapped = &kernel.Error{Module: "vmm", Message: "page is already mapped"}
)

// Map establishes a mapping between a virtual page and a physical memory
// frame. Missing intermediate tables are allocated with allocFn, zeroed and
// linked in as present and writable (and user accessible when flags include
// FlagUserAccessible). The TLB entry for the page is flushed once the mapping
// is in place.
//
// Map fails if the page is already mapped or if the walk runs into a huge
// page. The caller is responsible for ensuring that the frame is not in use
// by another mapping.
func (pt *OffsetPageTable) Map(page Page, frame pmm.Frame, flags PageTableEntryFlag, allocFn FrameAllocatorFn) *kernel.Error {
	var (
		err         *kernel.Error
		parentFlags = FlagPresent | FlagRW | (flags & FlagUserAccessible)
	)

	pt.walk(page.Address(), func(pteLevel uint8, pte *pageTableEntry) bool {
		// If we reached the last level all we need to do is to map the
		// frame in place and flush its TLB entry
		if pteLevel == pageLevels-1 {
			if pte.HasFlags(FlagPresent) {
				err = errPageAlreadyMapped
				return false
			}

			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(flags)
			flushTLBEntryFn(page.Address())
			return true
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			return false
		}

		if pte.HasFlags(FlagPresent) {
			pte.SetFlags(parentFlags)
			return true
		}

		// Next table does not yet exist; we need to allocate a
		// physical frame for it and clear its contents.
		var newTableFrame pmm.Frame
		if newTableFrame, err = allocFn(); err != nil {
			return false
		}

		mem.Memset(pt.physOffset+newTableFrame.Address(), 0, mem.PageSize)
		*pte = 0
		pte.SetFrame(newTableFrame)
		pte.SetFlags(parentFlags)
		return true
	})

	return err
}

// Unmap removes a mapping previously installed via a call to Map and returns
// the frame that backed it.
func (pt *OffsetPageTable) Unmap(page Page) (pmm.Frame, *kernel.Error) {
	var (
		err   *kernel.Error
		frame = pmm.InvalidFrame
	)

	pt.walk(page.Address(), func(pteLevel uint8, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}

		// If we reached the last level all we need to do is to clear
		// the entry and flush its TLB entry
		if pteLevel == pageLevels-1 {
			frame = pte.Frame()
			*pte = 0
			flushTLBEntryFn(page.Address())
			return true
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			return false
		}

		return true
	})

	if err != nil {
		return pmm.InvalidFrame, err
	}

	return frame, nil
}
