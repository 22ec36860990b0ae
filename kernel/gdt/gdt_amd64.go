// Package gdt installs the global descriptor table and the task state segment
// whose interrupt stack table provides known-good stacks for fatal
// exceptions.
package gdt

import (
	"unsafe"

	"github.com/MaciejSzybiak/first-os/kernel/cpu"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
	"github.com/MaciejSzybiak/first-os/kernel/mem"
)

const (
	// DoubleFaultISTIndex is the interrupt stack table slot used by the
	// double fault handler.
	DoubleFaultISTIndex = 0

	// istStackSize is the size of each interrupt stack table stack.
	istStackSize = 5 * mem.PageSize

	// Segment selectors for the entries in the table below.
	KernelCodeSelector = uint16(1 << 3)
	TSSSelector        = uint16(2 << 3)

	// gdtEntries holds the null descriptor, the kernel code segment and the
	// two slots used by the 16-byte TSS descriptor.
	gdtEntries = 4

	accessPresent    = uint8(1 << 7)
	accessCodeOrData = uint8(1 << 4)
	accessExecutable = uint8(1 << 3)
	accessReadable   = uint8(1 << 1)
	accessTSS64      = uint8(0x9)

	flagGranularity = uint8(1 << 7)
	flagLongMode    = uint8(1 << 5)
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	loadGDTFn          = cpu.LoadGDT
	loadTaskRegisterFn = cpu.LoadTaskRegister

	doubleFaultStack [istStackSize]byte

	tss     TaskStateSegment
	table   [gdtEntries]uint64
	pointer cpu.DescriptorTablePointer
)

// TaskStateSegment is the 104-byte 64-bit TSS. The 64-bit fields are split
// into 32-bit halves because the hardware layout only guarantees 4-byte
// alignment.
type TaskStateSegment struct {
	_                   uint32
	privilegeStackTable [3 * 2]uint32
	_                   [2]uint32
	interruptStackTable [7 * 2]uint32
	_                   [2]uint32
	_                   uint16
	ioMapBase           uint16
}

// SetInterruptStack stores the stack top address for the given IST index.
func (t *TaskStateSegment) SetInterruptStack(index int, stackTop uintptr) {
	t.interruptStackTable[index*2] = uint32(stackTop)
	t.interruptStackTable[index*2+1] = uint32(stackTop >> 32)
}

// InterruptStack returns the stack top address for the given IST index.
func (t *TaskStateSegment) InterruptStack(index int) uintptr {
	return uintptr(t.interruptStackTable[index*2]) | uintptr(t.interruptStackTable[index*2+1])<<32
}

// segmentDescriptor encodes an 8-byte code/data or system segment descriptor.
func segmentDescriptor(base, limit uint32, access, flags uint8) uint64 {
	return uint64(limit&0xffff) |
		uint64(base&0xffffff)<<16 |
		uint64(access)<<40 |
		uint64((limit>>16)&0xf)<<48 |
		uint64(flags&0xf0)<<48 |
		uint64(base>>24)<<56
}

// tssDescriptor encodes the 16-byte TSS descriptor as two table entries.
func tssDescriptor(tssAddr uintptr) (uint64, uint64) {
	low := segmentDescriptor(uint32(tssAddr), uint32(unsafe.Sizeof(TaskStateSegment{})-1), accessPresent|accessTSS64, 0)
	return low, uint64(tssAddr >> 32)
}

// Init sets up the TSS interrupt stacks, loads the GDT, reloads CS and loads
// the task register.
func Init() {
	// Stacks grow down; the CPU expects a 16-byte aligned top
	stackTop := (uintptr(unsafe.Pointer(&doubleFaultStack[0])) + uintptr(istStackSize)) &^ 15
	tss.SetInterruptStack(DoubleFaultISTIndex, stackTop)
	tss.ioMapBase = uint16(unsafe.Sizeof(tss))

	table[0] = 0
	table[1] = segmentDescriptor(0, 0xfffff, accessPresent|accessCodeOrData|accessExecutable|accessReadable, flagGranularity|flagLongMode)
	table[2], table[3] = tssDescriptor(uintptr(unsafe.Pointer(&tss)))

	pointer.Set(uintptr(unsafe.Pointer(&table[0])), unsafe.Sizeof(table))
	loadGDTFn(pointer.Addr(), KernelCodeSelector)
	loadTaskRegisterFn(TSSSelector)

	kfmt.Printf("[gdt] loaded; double fault stack at 0x%x\n", tss.InterruptStack(DoubleFaultISTIndex))
}
