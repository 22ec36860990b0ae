// Package kmain contains the kernel entry point invoked by the boot code.
package kmain

import (
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/cpu"
	"github.com/MaciejSzybiak/first-os/kernel/gdt"
	"github.com/MaciejSzybiak/first-os/kernel/hal"
	"github.com/MaciejSzybiak/first-os/kernel/hal/bootinfo"
	"github.com/MaciejSzybiak/first-os/kernel/hal/multiboot"
	"github.com/MaciejSzybiak/first-os/kernel/heap"
	"github.com/MaciejSzybiak/first-os/kernel/irq"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
	"github.com/MaciejSzybiak/first-os/kernel/mem/pmm/allocator"
	"github.com/MaciejSzybiak/first-os/kernel/mem/vmm"
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	detectConsoleFn    = hal.DetectConsole
	gdtInitFn          = gdt.Init
	irqInitFn          = irq.Init
	initPICFn          = irq.InitPIC
	allocatorInitFn    = allocator.Init
	vmmInitFn          = vmm.Init
	heapInitFn         = initHeap
	setLineMaskFn      = irq.SetLineMask
	enableInterruptsFn = cpu.EnableInterrupts
	breakpointFn       = cpu.Breakpoint
	idleFn             = cpu.Idle
	panicFn            = kfmt.Panic

	// idleIterations bounds the final idle loop in tests; 0 loops forever.
	idleIterations = 0
)

// initHeap backs the kernel heap with frames from the boot allocator.
func initHeap(pageTable *vmm.OffsetPageTable) *kernel.Error {
	return heap.Init(pageTable, allocator.AllocFrame)
}

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. The rt0 code passes the address of the multiboot info
// payload provided by the bootloader, the virtual address at which the
// bootloader mapped all of physical memory and the physical start and end
// addresses of the loaded kernel image.
//
// Kmain is not expected to return.
//
//go:noinline
func Kmain(multibootInfoPtr, physOffset, kernelStart, kernelEnd uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	// Without a console, output keeps accumulating in the early buffer.
	if err := detectConsoleFn(physOffset); err != nil {
		kfmt.Printf("[kmain] %s\n", err.Message)
	}

	cfg := parseBootConfig()

	gdtInitFn()
	irqInitFn()
	if err := initPICFn(); err != nil {
		panicFn(err)
	}

	info := bootinfo.FromMultiboot(physOffset, kernelStart, kernelEnd)
	allocatorInitFn(info.MemoryMap)
	pageTable := vmmInitFn(info.PhysicalMemoryOffset)
	if err := heapInitFn(pageTable); err != nil {
		panicFn(err)
	}

	irq.SetSpuriousPolicy(cfg.spuriousPolicy)
	if cfg.hasLineMask {
		setLineMaskFn(cfg.lineMask)
	}

	enableInterruptsFn()

	if cfg.selfTest {
		breakpointFn()
		kfmt.Printf("[kmain] resumed after breakpoint\n")
	}

	for i := 0; idleIterations == 0 || i < idleIterations; i++ {
		idleFn()
	}
}
