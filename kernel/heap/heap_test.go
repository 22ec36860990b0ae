package heap

import (
	"bytes"
	"testing"

	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm"
	"github.com/MaciejSzybiak/first-os/kernel/mem/vmm"
)

type mapping struct {
	page  vmm.Page
	frame pmm.Frame
	flags vmm.PageTableEntryFlag
}

type recordingMapper struct {
	mappings []mapping
	failAt   int
	err      *kernel.Error
}

func (m *recordingMapper) Map(page vmm.Page, frame pmm.Frame, flags vmm.PageTableEntryFlag, _ vmm.FrameAllocatorFn) *kernel.Error {
	if m.err != nil && len(m.mappings) == m.failAt {
		return m.err
	}

	m.mappings = append(m.mappings, mapping{page, frame, flags})
	return nil
}

func frameCounter(limit int) vmm.FrameAllocatorFn {
	var next int
	return func() (pmm.Frame, *kernel.Error) {
		if next == limit {
			return pmm.InvalidFrame, errOutOfFrames
		}
		next++
		return pmm.Frame(next + 100), nil
	}
}

var errOutOfFrames = &kernel.Error{Module: "test", Message: "out of frames"}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)
	defer kfmt.SetOutputSink(nil)

	mapper := &recordingMapper{}
	if err := Init(mapper, frameCounter(-1)); err != nil {
		t.Fatal(err)
	}

	if exp := 25; len(mapper.mappings) != exp {
		t.Fatalf("expected %d pages to be mapped; got %d", exp, len(mapper.mappings))
	}

	for i, m := range mapper.mappings {
		if exp := vmm.PageFromAddress(HeapStart) + vmm.Page(i); m.page != exp {
			t.Errorf("expected mapping %d to target page 0x%x; got 0x%x", i, exp.Address(), m.page.Address())
		}

		if exp := pmm.Frame(i + 101); m.frame != exp {
			t.Errorf("expected mapping %d to use frame %d; got %d", i, exp, m.frame)
		}

		if m.flags != vmm.FlagPresent|vmm.FlagRW {
			t.Errorf("expected mapping %d to be present and writable", i)
		}
	}

	if last := mapper.mappings[len(mapper.mappings)-1].page.Address(); last != HeapStart+uintptr(HeapSize)-4096 {
		t.Fatalf("expected last mapped page to end at the heap end; got 0x%x", last)
	}

	if exp := "[heap] mapped 100Kb at 0x444444440000\n"; buf.String() != exp {
		t.Fatalf("expected output %q; got %q", exp, buf.String())
	}
}

func TestInitErrors(t *testing.T) {
	mapErr := &kernel.Error{Module: "test", Message: "already mapped"}

	specs := []struct {
		mapper      *recordingMapper
		frames      int
		expErr      *kernel.Error
		expMappings int
	}{
		// allocator exhausted after 10 frames
		{&recordingMapper{}, 10, errOutOfFrames, 10},
		// allocator empty
		{&recordingMapper{}, 0, errOutOfFrames, 0},
		// mapping error on the 5th page
		{&recordingMapper{failAt: 4, err: mapErr}, -1, mapErr, 4},
	}

	for specIndex, spec := range specs {
		if err := Init(spec.mapper, frameCounter(spec.frames)); err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}

		if got := len(spec.mapper.mappings); got != spec.expMappings {
			t.Errorf("[spec %d] expected %d mappings before the error; got %d", specIndex, spec.expMappings, got)
		}
	}
}
