package bootinfo

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/MaciejSzybiak/first-os/kernel/hal/multiboot"
)

func TestFromMultiboot(t *testing.T) {
	data := multibootBlock([][3]uint64{
		{0, 0x9fc00, uint64(multiboot.MemAvailable)},
		{0x9fc00, 0x400, uint64(multiboot.MemReserved)},
		{0x100000, 0x7ee0000, uint64(multiboot.MemAvailable)},
		{0x7fe0000, 0x20000, uint64(multiboot.MemAcpiReclaimable)},
		{0xfffc0000, 0x40000, uint64(multiboot.MemNvs)},
	})
	multiboot.SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	info := FromMultiboot(0x10000000000, 0, 0)
	if exp := uintptr(0x10000000000); info.PhysicalMemoryOffset != exp {
		t.Errorf("expected physical memory offset to be %x; got %x", exp, info.PhysicalMemoryOffset)
	}

	exp := MemoryMap{
		{0, 0x9fc00, Usable},
		{0x9fc00, 0xa0000, Reserved},
		{0x100000, 0x7fe0000, Usable},
		{0x7fe0000, 0x8000000, AcpiReclaimable},
		{0xfffc0000, 0x100000000, AcpiNvs},
	}

	if len(info.MemoryMap) != len(exp) {
		t.Fatalf("expected %d regions; got %d", len(exp), len(info.MemoryMap))
	}

	for i, region := range info.MemoryMap {
		if region != exp[i] {
			t.Errorf("[region %d] expected %+v; got %+v", i, exp[i], region)
		}
	}

	if got := info.MemoryMap[0].Size(); got != 0x9fc00 {
		t.Errorf("expected region 0 size to be 0x9fc00; got %x", got)
	}
}

func TestFromMultibootTruncatesLongMaps(t *testing.T) {
	entries := make([][3]uint64, MaxRegions+3)
	for i := range entries {
		entries[i] = [3]uint64{uint64(i) << 12, 4096, uint64(multiboot.MemAvailable)}
	}

	data := multibootBlock(entries)
	multiboot.SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if got := len(FromMultiboot(0, 0, 0).MemoryMap); got != MaxRegions {
		t.Fatalf("expected memory map to be truncated to %d entries; got %d", MaxRegions, got)
	}
}

func TestFromMultibootReservesKernelImage(t *testing.T) {
	data := multibootBlock([][3]uint64{
		{0, 0x9fc00, uint64(multiboot.MemAvailable)},
		{0x9fc00, 0x400, uint64(multiboot.MemReserved)},
		{0x100000, 0x7ee0000, uint64(multiboot.MemAvailable)},
	})
	multiboot.SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))
	defer multiboot.SetInfoPtr(0)

	// The image end is not page aligned; the partial page stays reserved.
	info := FromMultiboot(0, 0x100000, 0x1a3f10)

	exp := MemoryMap{
		{0, 0x9fc00, Usable},
		{0x9fc00, 0xa0000, Reserved},
		{0x100000, 0x1a4000, Reserved},
		{0x1a4000, 0x7fe0000, Usable},
	}

	if len(info.MemoryMap) != len(exp) {
		t.Fatalf("expected %d regions; got %d: %+v", len(exp), len(info.MemoryMap), info.MemoryMap)
	}

	for i, region := range info.MemoryMap {
		if region != exp[i] {
			t.Errorf("[region %d] expected %+v; got %+v", i, exp[i], region)
		}
	}
}

func TestFromMultibootReservesInfoBlock(t *testing.T) {
	data := multibootBlock([][3]uint64{{0, 0, uint64(multiboot.MemAvailable)}})
	infoPtr := uint64(uintptr(unsafe.Pointer(&data[0])))
	infoEnd := infoPtr + uint64(len(data))
	multiboot.SetInfoPtr(uintptr(infoPtr))
	defer multiboot.SetInfoPtr(0)

	// Report the pages around the block itself as available memory
	regionStart := infoPtr&^0xfff - 0x1000
	binary.LittleEndian.PutUint64(data[24:], regionStart)
	binary.LittleEndian.PutUint64(data[32:], 0x4000)

	info := FromMultiboot(0, 0, 0)

	var reserved bool
	for _, region := range info.MemoryMap {
		overlaps := region.Start < infoEnd && infoPtr < region.End
		switch {
		case overlaps && region.Type == Usable:
			t.Fatalf("expected the info block [0x%x, 0x%x) to be excluded from usable region %+v", infoPtr, infoEnd, region)
		case overlaps && region.Type == Reserved:
			reserved = true
		}
	}

	if !reserved {
		t.Fatalf("expected a reserved region covering the info block; got %+v", info.MemoryMap)
	}

	if first := info.MemoryMap[0]; first.Start != regionStart || first.End != regionStart+0x1000 || first.Type != Usable {
		t.Fatalf("expected the page below the info block to remain usable; got %+v", first)
	}
}

func TestReserveRange(t *testing.T) {
	specs := []struct {
		regions    MemoryMap
		start, end uint64
		exp        MemoryMap
	}{
		// empty range
		{
			MemoryMap{{0, 0x4000, Usable}},
			0x2000, 0x2000,
			MemoryMap{{0, 0x4000, Usable}},
		},
		// middle of a usable region
		{
			MemoryMap{{0, 0x4000, Usable}},
			0x1000, 0x2000,
			MemoryMap{{0, 0x1000, Usable}, {0x1000, 0x2000, Reserved}, {0x2000, 0x4000, Usable}},
		},
		// unaligned bounds are widened to pages
		{
			MemoryMap{{0, 0x4000, Usable}},
			0x1800, 0x2001,
			MemoryMap{{0, 0x1000, Usable}, {0x1000, 0x3000, Reserved}, {0x3000, 0x4000, Usable}},
		},
		// spans two usable regions and a reserved one
		{
			MemoryMap{{0, 0x2000, Usable}, {0x2000, 0x3000, Reserved}, {0x3000, 0x6000, Usable}},
			0x1000, 0x4000,
			MemoryMap{{0, 0x1000, Usable}, {0x1000, 0x2000, Reserved}, {0x2000, 0x3000, Reserved}, {0x3000, 0x4000, Reserved}, {0x4000, 0x6000, Usable}},
		},
		// covers a whole region
		{
			MemoryMap{{0x1000, 0x2000, Usable}, {0x5000, 0x6000, Usable}},
			0, 0x3000,
			MemoryMap{{0x1000, 0x2000, Reserved}, {0x5000, 0x6000, Usable}},
		},
		// no overlap
		{
			MemoryMap{{0x1000, 0x2000, Usable}},
			0x8000, 0x9000,
			MemoryMap{{0x1000, 0x2000, Usable}},
		},
	}

	for specIndex, spec := range specs {
		var regions [MaxRegions]MemoryRegion
		copy(regions[:], spec.regions)

		count := reserveRange(&regions, len(spec.regions), spec.start, spec.end)
		if count != len(spec.exp) {
			t.Errorf("[spec %d] expected %d regions; got %d: %+v", specIndex, len(spec.exp), count, regions[:count])
			continue
		}

		for i := range spec.exp {
			if regions[i] != spec.exp[i] {
				t.Errorf("[spec %d] region %d: expected %+v; got %+v", specIndex, i, spec.exp[i], regions[i])
			}
		}
	}
}

func TestReserveRangeFullTable(t *testing.T) {
	var regions [MaxRegions]MemoryRegion
	for i := range regions {
		regions[i] = MemoryRegion{Start: uint64(i) * 0x4000, End: uint64(i+1) * 0x4000, Type: Usable}
	}

	last := regions[MaxRegions-1]
	count := reserveRange(&regions, MaxRegions, last.Start+0x1000, last.Start+0x2000)
	if count != MaxRegions {
		t.Fatalf("expected the region count to stay at %d; got %d", MaxRegions, count)
	}

	// Only the part below the reserved span fits in the table.
	if exp := (MemoryRegion{Start: last.Start, End: last.Start + 0x1000, Type: Usable}); regions[MaxRegions-1] != exp {
		t.Fatalf("expected last region to be %+v; got %+v", exp, regions[MaxRegions-1])
	}
}

func TestRegionTypeString(t *testing.T) {
	specs := []struct {
		in  RegionType
		exp string
	}{
		{Usable, "usable"},
		{Reserved, "reserved"},
		{AcpiReclaimable, "ACPI (reclaimable)"},
		{AcpiNvs, "ACPI NVS"},
		{RegionType(42), "reserved"},
	}

	for specIndex, spec := range specs {
		if got := spec.in.String(); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}

// multibootBlock encodes a multiboot info block that only contains a memory
// map tag with the supplied {address, length, type} entries.
func multibootBlock(entries [][3]uint64) []byte {
	tagLen := 16 + 24*len(entries)
	words := make([]uint64, (8+tagLen+8+7)/8)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)

	binary.LittleEndian.PutUint32(buf[0:], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[8:], 6) // memory map tag
	binary.LittleEndian.PutUint32(buf[12:], uint32(tagLen))
	binary.LittleEndian.PutUint32(buf[16:], 24)
	for i, entry := range entries {
		off := 24 + 24*i
		binary.LittleEndian.PutUint64(buf[off:], entry[0])
		binary.LittleEndian.PutUint64(buf[off+8:], entry[1])
		binary.LittleEndian.PutUint32(buf[off+16:], uint32(entry[2]))
	}

	// the trailing end tag is already zeroed
	return buf
}
