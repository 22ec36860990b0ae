// Package pmm contains code that manages physical memory frame allocations.
package pmm

import (
	"math"

	"github.com/MaciejSzybiak/first-os/kernel/mem"
)

// Frame describes a physical memory page index. Frame n covers the physical
// address range [n*PageSize, (n+1)*PageSize).
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical start address of this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f << mem.PageShift)
}

// FrameFromAddress returns the Frame that contains the given physical
// address.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> mem.PageShift)
}
