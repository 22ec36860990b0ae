// Package bootinfo describes the boot record consumed by the memory
// subsystem: the firmware memory map and the offset at which the boot loader
// mapped all of physical memory into the virtual address space.
package bootinfo

import (
	"github.com/MaciejSzybiak/first-os/kernel/hal/multiboot"
	"github.com/MaciejSzybiak/first-os/kernel/mem"
)

// RegionType classifies a physical memory region.
type RegionType uint8

const (
	// Usable memory is free for the kernel to hand out.
	Usable RegionType = iota

	// Reserved memory must never be allocated.
	Reserved

	// AcpiReclaimable memory holds ACPI tables that may be reused once parsed.
	AcpiReclaimable

	// AcpiNvs memory must be preserved across sleep states.
	AcpiNvs
)

// String implements fmt.Stringer for RegionType.
func (t RegionType) String() string {
	switch t {
	case Usable:
		return "usable"
	case AcpiReclaimable:
		return "ACPI (reclaimable)"
	case AcpiNvs:
		return "ACPI NVS"
	default:
		return "reserved"
	}
}

// MemoryRegion is a half-open physical address range [Start, End).
type MemoryRegion struct {
	Start uint64
	End   uint64
	Type  RegionType
}

// Size returns the region length in bytes.
func (r MemoryRegion) Size() uint64 {
	return r.End - r.Start
}

// MemoryMap is the ordered list of regions reported by the firmware.
type MemoryMap []MemoryRegion

// BootInfo bundles the boot record fields used by the kernel.
type BootInfo struct {
	// PhysicalMemoryOffset is the virtual address at which physical address
	// zero is mapped.
	PhysicalMemoryOffset uintptr

	MemoryMap MemoryMap
}

// MaxRegions is the number of memory map entries retained from the boot
// loader. Additional entries are dropped.
const MaxRegions = 64

var (
	regionStorage [MaxRegions]MemoryRegion
)

// FromMultiboot builds a BootInfo from the multiboot info block registered
// via multiboot.SetInfoPtr. The memory map is stored in a package-level array
// so no heap allocations take place; calling FromMultiboot again overwrites the
// map returned by the previous call.
//
// Boot loaders report the memory occupied by the loaded kernel image and the
// multiboot info block as available. Both ranges, given as physical
// addresses and widened to page boundaries, are split out of the usable
// regions that contain them and marked as Reserved.
func FromMultiboot(physOffset, kernelStart, kernelEnd uintptr) BootInfo {
	count := 0
	multiboot.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) bool {
		if count == MaxRegions {
			return false
		}

		regionStorage[count] = MemoryRegion{
			Start: entry.PhysAddress,
			End:   entry.PhysAddress + entry.Length,
			Type:  regionTypeFor(entry.Type),
		}
		count++
		return true
	})

	count = reserveRange(&regionStorage, count, uint64(kernelStart), uint64(kernelEnd))

	infoStart, infoSize := multiboot.InfoBlockRange()
	if physOffset != 0 && infoStart >= physOffset {
		infoStart -= physOffset
	}
	count = reserveRange(&regionStorage, count, uint64(infoStart), uint64(infoStart)+uint64(infoSize))

	return BootInfo{
		PhysicalMemoryOffset: physOffset,
		MemoryMap:            MemoryMap(regionStorage[:count]),
	}
}

// reserveRange marks the page-aligned span covering [start, end) as Reserved
// in every usable region it overlaps, splitting the region if needed. It
// returns the updated region count. Splits that do not fit in the table drop
// the trailing entries, which only hides memory from the allocator.
func reserveRange(regions *[MaxRegions]MemoryRegion, count int, start, end uint64) int {
	if start >= end {
		return count
	}

	pageMask := uint64(mem.PageSize - 1)
	start &^= pageMask
	end = (end + pageMask) &^ pageMask

	for i := 0; i < count; i++ {
		region := regions[i]
		if region.Type != Usable || region.End <= start || region.Start >= end {
			continue
		}

		var (
			parts     [3]MemoryRegion
			partCount int
		)
		if region.Start < start {
			parts[partCount] = MemoryRegion{Start: region.Start, End: start, Type: Usable}
			partCount++
		}
		parts[partCount] = MemoryRegion{Start: max(region.Start, start), End: min(region.End, end), Type: Reserved}
		partCount++
		if region.End > end {
			parts[partCount] = MemoryRegion{Start: end, End: region.End, Type: Usable}
			partCount++
		}

		if i+partCount > MaxRegions {
			partCount = MaxRegions - i
		}
		newCount := min(count+partCount-1, MaxRegions)

		copy(regions[i+partCount:newCount], regions[i+1:count])
		copy(regions[i:i+partCount], parts[:partCount])

		i += partCount - 1
		count = newCount
	}

	return count
}

func regionTypeFor(t multiboot.MemoryEntryType) RegionType {
	switch t {
	case multiboot.MemAvailable:
		return Usable
	case multiboot.MemAcpiReclaimable:
		return AcpiReclaimable
	case multiboot.MemNvs:
		return AcpiNvs
	default:
		return Reserved
	}
}
