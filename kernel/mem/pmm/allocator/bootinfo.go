// Package allocator provides the physical frame allocators used by the kernel.
package allocator

import (
	"io"

	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/hal/bootinfo"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
	"github.com/MaciejSzybiak/first-os/kernel/mem"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
)

var (
	// bootAllocator is the allocator instance used for page allocations
	// while the kernel is booting.
	bootAllocator BootInfoAllocator

	errBootAllocOutOfMemory = &kernel.Error{Module: "boot_mem_alloc", Message: "out of memory"}
)

// BootInfoAllocator implements a rudimentary physical frame allocator that
// hands out the usable frames of the boot memory map in ascending order.
//
// The usable frames form a sequence obtained by keeping the Usable regions of
// the memory map and splitting each of them into PageSize steps starting at
// the region start. The allocator tracks the index of the next frame to
// return in that sequence; frames are never returned to the allocator.
//
// Each allocation rescans the memory map so AllocFrame runs in O(regions).
type BootInfoAllocator struct {
	memMap bootinfo.MemoryMap

	// next is the index of the next usable frame to hand out.
	next uint64
}

// NewBootInfoAllocator returns an allocator for the supplied memory map. The
// caller must guarantee that every region marked as Usable is really unused.
func NewBootInfoAllocator(memMap bootinfo.MemoryMap) BootInfoAllocator {
	return BootInfoAllocator{memMap: memMap}
}

// AllocFrame reserves the next usable frame. Once all usable frames have been
// handed out AllocFrame returns pmm.InvalidFrame and an out of memory error.
func (alloc *BootInfoAllocator) AllocFrame() (pmm.Frame, *kernel.Error) {
	index := alloc.next
	alloc.next++

	for _, region := range alloc.memMap {
		if region.Type != bootinfo.Usable || region.End <= region.Start {
			continue
		}

		frameCount := (region.Size() + uint64(mem.PageSize-1)) >> mem.PageShift
		if index < frameCount {
			return pmm.FrameFromAddress(uintptr(region.Start + index<<mem.PageShift)), nil
		}
		index -= frameCount
	}

	return pmm.InvalidFrame, errBootAllocOutOfMemory
}

// AllocCount returns the number of frames handed out so far.
func (alloc *BootInfoAllocator) AllocCount() uint64 {
	if free := alloc.usableFrames(); alloc.next > free {
		return free
	}
	return alloc.next
}

func (alloc *BootInfoAllocator) usableFrames() uint64 {
	var count uint64
	for _, region := range alloc.memMap {
		if region.Type == bootinfo.Usable && region.End > region.Start {
			count += (region.Size() + uint64(mem.PageSize-1)) >> mem.PageShift
		}
	}
	return count
}

// PrintMemoryMap writes the memory map used by the allocator and the amount
// of usable memory to w.
func (alloc *BootInfoAllocator) PrintMemoryMap(w io.Writer) {
	kfmt.Fprintf(w, "system memory map:\n")
	var totalFree mem.Size
	for _, region := range alloc.memMap {
		kfmt.Fprintf(w, "\t[0x%10x - 0x%10x], size: %10d, type: %s\n", region.Start, region.End, region.Size(), region.Type.String())

		if region.Type == bootinfo.Usable {
			totalFree += mem.Size(region.Size())
		}
	}
	kfmt.Fprintf(w, "available memory: %dKb (%d frames)\n", uint64(totalFree/mem.Kb), alloc.usableFrames())
}

// Init sets up the boot allocator for the supplied memory map and prints the
// map to the console.
func Init(memMap bootinfo.MemoryMap) {
	bootAllocator = NewBootInfoAllocator(memMap)
	bootAllocator.PrintMemoryMap(&kfmt.PrefixWriter{Sink: kfmt.GetOutputSink(), Prefix: []byte("[boot_mem_alloc] ")})
}

// AllocFrame reserves a frame using the boot allocator set up by Init. Its
// signature matches the frame allocator callbacks used by the vmm package.
func AllocFrame() (pmm.Frame, *kernel.Error) {
	return bootAllocator.AllocFrame()
}
