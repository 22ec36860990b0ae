package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/MaciejSzybiak/first-os/kernel/hal/bootinfo"
	"github.com/MaciejSzybiak/first-os/kernel/mem"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm/allocator"
	"github.com/fogleman/gg"
)

// legendHeight is the number of pixels reserved below the region strip for
// the legend.
const legendHeight = 20

// regionLine matches a memory map entry as printed by the boot allocator.
var regionLine = regexp.MustCompile(`\[0x([0-9a-fA-F]+) - 0x([0-9a-fA-F]+)\], size:\s*\d+, type: (.+)$`)

var (
	regionColors = map[bootinfo.RegionType]color.RGBA{
		bootinfo.Usable:          {0x3c, 0xb3, 0x71, 0xff},
		bootinfo.Reserved:        {0x70, 0x70, 0x70, 0xff},
		bootinfo.AcpiReclaimable: {0x46, 0x82, 0xb4, 0xff},
		bootinfo.AcpiNvs:         {0x8b, 0x45, 0x13, 0xff},
	}
	allocatedColor = color.RGBA{0xff, 0x8c, 0x00, 0xff}
	backgroundCol  = color.RGBA{0x10, 0x10, 0x10, 0xff}
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[memviz] error: %s\n", err.Error())
	os.Exit(1)
}

func regionTypeFromString(s string) (bootinfo.RegionType, error) {
	for _, t := range []bootinfo.RegionType{bootinfo.Usable, bootinfo.Reserved, bootinfo.AcpiReclaimable, bootinfo.AcpiNvs} {
		if t.String() == s {
			return t, nil
		}
	}
	return bootinfo.Reserved, fmt.Errorf("unknown region type %q", s)
}

// parseMemoryMap extracts the memory map entries from a kernel boot log.
// Lines that do not describe a region are ignored.
func parseMemoryMap(r io.Reader) (bootinfo.MemoryMap, error) {
	var (
		memMap  bootinfo.MemoryMap
		scanner = bufio.NewScanner(r)
		lineNum int
	)

	for scanner.Scan() {
		lineNum++
		match := regionLine.FindStringSubmatch(strings.TrimRight(scanner.Text(), "\r"))
		if match == nil {
			continue
		}

		start, err := strconv.ParseUint(match[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid region start: %w", lineNum, err)
		}
		end, err := strconv.ParseUint(match[2], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid region end: %w", lineNum, err)
		}
		if end < start {
			return nil, fmt.Errorf("line %d: region end 0x%x precedes start 0x%x", lineNum, end, start)
		}
		regionType, err := regionTypeFromString(strings.TrimSpace(match[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		memMap = append(memMap, bootinfo.MemoryRegion{Start: start, End: end, Type: regionType})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(memMap) == 0 {
		return nil, errors.New("no memory map entries found in input")
	}

	return memMap, nil
}

// allocateFrames runs the boot allocator over memMap and returns the frames it
// handed out. Allocation stops early when the allocator runs out of memory.
func allocateFrames(memMap bootinfo.MemoryMap, count int) []pmm.Frame {
	alloc := allocator.NewBootInfoAllocator(memMap)

	frames := make([]pmm.Frame, 0, count)
	for i := 0; i < count; i++ {
		frame, err := alloc.AllocFrame()
		if err != nil {
			break
		}
		frames = append(frames, frame)
	}
	return frames
}

// addressRange returns the lowest and highest address covered by memMap.
func addressRange(memMap bootinfo.MemoryMap) (uint64, uint64) {
	low, high := memMap[0].Start, memMap[0].End
	for _, region := range memMap[1:] {
		if region.Start < low {
			low = region.Start
		}
		if region.End > high {
			high = region.End
		}
	}
	return low, high
}

// render draws the memory map as a horizontal strip. Each region occupies a
// width proportional to its size and allocated frames are painted on top of
// the usable regions that contain them.
func render(memMap bootinfo.MemoryMap, frames []pmm.Frame, width, height int) (*gg.Context, error) {
	if width <= 0 || height <= legendHeight {
		return nil, fmt.Errorf("image must be at least 1x%d pixels; got %dx%d", legendHeight+1, width, height)
	}

	low, high := addressRange(memMap)
	if high == low {
		return nil, errors.New("memory map covers an empty address range")
	}

	stripHeight := float64(height - legendHeight)
	scale := float64(width) / float64(high-low)
	xFor := func(addr uint64) float64 { return float64(addr-low) * scale }

	ctx := gg.NewContext(width, height)
	ctx.SetColor(backgroundCol)
	ctx.Clear()

	for _, region := range memMap {
		ctx.SetColor(regionColors[region.Type])
		ctx.DrawRectangle(xFor(region.Start), 0, xFor(region.End)-xFor(region.Start), stripHeight)
		ctx.Fill()
	}

	ctx.SetColor(allocatedColor)
	for _, frame := range frames {
		start := uint64(frame.Address())
		frameWidth := float64(mem.PageSize) * scale
		if frameWidth < 1 {
			frameWidth = 1
		}
		ctx.DrawRectangle(xFor(start), 0, frameWidth, stripHeight)
		ctx.Fill()
	}

	ctx.SetColor(color.White)
	ctx.DrawString(
		fmt.Sprintf("0x%x - 0x%x, %d frames allocated", low, high, len(frames)),
		4, float64(height)-6,
	)

	return ctx, nil
}

func runTool() error {
	input := flag.String("in", "-", "a kernel boot log containing the memory map or - to read from STDIN")
	output := flag.String("out", "memmap.png", "the PNG file to write")
	frameCount := flag.Int("frames", 16, "the number of frames to allocate before rendering")
	width := flag.Int("width", 1024, "the image width in pixels")
	height := flag.Int("height", 120, "the image height in pixels")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "memviz: render the boot memory map and the frames handed out by the boot allocator\n\n")
		fmt.Fprint(os.Stderr, "Usage: memviz [options]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		exit(errors.New("unexpected arguments"))
	}
	if *frameCount < 0 {
		return fmt.Errorf("frame count must not be negative; got %d", *frameCount)
	}

	var in io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	memMap, err := parseMemoryMap(in)
	if err != nil {
		return err
	}

	ctx, err := render(memMap, allocateFrames(memMap, *frameCount), *width, *height)
	if err != nil {
		return err
	}

	return ctx.SavePNG(*output)
}

func main() {
	if err := runTool(); err != nil {
		exit(err)
	}
}
