package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MaciejSzybiak/first-os/kernel/hal/bootinfo"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
)

const sampleLog = `[hal] vga_text_console(0.1.0): initialized
[boot_mem_alloc] system memory map:
[boot_mem_alloc] 	[0x0000000000 - 0x000009f000], size:     651264, type: usable
[boot_mem_alloc] 	[0x000009f000 - 0x0000100000], size:       4096, type: reserved
[boot_mem_alloc] 	[0x0000100000 - 0x0000200000], size:    1048576, type: usable
[boot_mem_alloc] available memory: 1660Kb (415 frames)
`

func TestParseMemoryMap(t *testing.T) {
	memMap, err := parseMemoryMap(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatal(err)
	}

	exp := bootinfo.MemoryMap{
		{Start: 0, End: 0x9f000, Type: bootinfo.Usable},
		{Start: 0x9f000, End: 0x100000, Type: bootinfo.Reserved},
		{Start: 0x100000, End: 0x200000, Type: bootinfo.Usable},
	}

	if len(memMap) != len(exp) {
		t.Fatalf("expected %d regions; got %d", len(exp), len(memMap))
	}
	for i := range exp {
		if memMap[i] != exp[i] {
			t.Errorf("[region %d] expected %+v; got %+v", i, exp[i], memMap[i])
		}
	}
}

func TestParseMemoryMapErrors(t *testing.T) {
	specs := []struct {
		input  string
		expErr string
	}{
		{"nothing to see here\n", "no memory map entries"},
		{"\t[0x2000 - 0x1000], size: 0, type: usable\n", "precedes start"},
		{"\t[0x1000 - 0x2000], size: 4096, type: bogus\n", "unknown region type"},
		{"\t[0xffffffffffffffffff - 0x2000], size: 4096, type: usable\n", "invalid region start"},
	}

	for specIndex, spec := range specs {
		_, err := parseMemoryMap(strings.NewReader(spec.input))
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Errorf("[spec %d] expected error containing %q; got %v", specIndex, spec.expErr, err)
		}
	}
}

func TestRegionTypeFromString(t *testing.T) {
	for _, exp := range []bootinfo.RegionType{bootinfo.Usable, bootinfo.Reserved, bootinfo.AcpiReclaimable, bootinfo.AcpiNvs} {
		got, err := regionTypeFromString(exp.String())
		if err != nil {
			t.Errorf("unexpected error for %s: %v", exp.String(), err)
			continue
		}
		if got != exp {
			t.Errorf("expected %s; got %s", exp.String(), got.String())
		}
	}
}

func TestAllocateFrames(t *testing.T) {
	memMap := bootinfo.MemoryMap{
		{Start: 0, End: 0x2000, Type: bootinfo.Usable},
		{Start: 0x2000, End: 0x3000, Type: bootinfo.Reserved},
		{Start: 0x3000, End: 0x4000, Type: bootinfo.Usable},
	}

	frames := allocateFrames(memMap, 10)
	exp := []pmm.Frame{0, 1, 3}
	if len(frames) != len(exp) {
		t.Fatalf("expected %d frames; got %d", len(exp), len(frames))
	}
	for i := range exp {
		if frames[i] != exp[i] {
			t.Errorf("[frame %d] expected %d; got %d", i, exp[i], frames[i])
		}
	}
}

func TestRender(t *testing.T) {
	memMap, err := parseMemoryMap(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatal(err)
	}

	// 512 pixels for 2Mb: one pixel per frame
	ctx, err := render(memMap, allocateFrames(memMap, 4), 512, 64)
	if err != nil {
		t.Fatal(err)
	}

	img, ok := ctx.Image().(*image.RGBA)
	if !ok {
		t.Fatalf("expected an RGBA image; got %T", ctx.Image())
	}

	specs := []struct {
		x, y     int
		expColor color.RGBA
	}{
		{1, 10, allocatedColor},
		{3, 10, allocatedColor},
		{20, 10, regionColors[bootinfo.Usable]},
		{200, 10, regionColors[bootinfo.Reserved]},
		{400, 10, regionColors[bootinfo.Usable]},
	}

	for specIndex, spec := range specs {
		if got := img.RGBAAt(spec.x, spec.y); got != spec.expColor {
			t.Errorf("[spec %d] expected pixel (%d, %d) to be %v; got %v", specIndex, spec.x, spec.y, spec.expColor, got)
		}
	}

	out := filepath.Join(t.TempDir(), "memmap.png")
	if err := ctx.SavePNG(out); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty PNG at %s; err: %v", out, err)
	}
}

func TestRenderErrors(t *testing.T) {
	memMap := bootinfo.MemoryMap{{Start: 0x1000, End: 0x1000, Type: bootinfo.Usable}}

	specs := []struct {
		width, height int
	}{
		{0, 100},
		{100, legendHeight},
		{100, 100},
	}

	for specIndex, spec := range specs {
		if _, err := render(memMap, nil, spec.width, spec.height); err == nil {
			t.Errorf("[spec %d] expected an error", specIndex)
		}
	}
}
