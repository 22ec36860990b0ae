package gate

import (
	"unsafe"

	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/cpu"
)

const (
	// idtEntries is the number of slots in the interrupt descriptor table.
	idtEntries = 256

	// gateEntryCount is the number of vectors with a generated entry stub.
	// It covers the CPU exceptions and the two legacy 8259 controllers.
	gateEntryCount = 48

	// MaxISTIndex is the number of interrupt stack table slots in the TSS.
	MaxISTIndex = 7

	// gateTypeInterrupt is a 64-bit interrupt gate; IF is cleared on entry.
	gateTypeInterrupt = uint8(0xe)

	gateFlagPresent = uint8(1 << 7)
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	gateEntryAddrFn = gateEntryAddr
	codeSegmentFn   = cpu.CodeSegment
	loadIDTFn       = cpu.LoadIDT

	// activeTable is the table used by dispatchInterrupt.
	activeTable *Table

	errNoGateEntry     = &kernel.Error{Module: "gate", Message: "no entry stub exists for interrupt number"}
	errTableLoaded     = &kernel.Error{Module: "gate", Message: "table cannot be modified after it has been loaded"}
	errInvalidISTIndex = &kernel.Error{Module: "gate", Message: "interrupt stack table index out of range"}
)

// descriptor is a 16-byte 64-bit IDT gate descriptor.
type descriptor struct {
	offsetLow  uint16
	selector   uint16
	ist        uint8
	typeAttr   uint8
	offsetMid  uint16
	offsetHigh uint32
	_          uint32
}

// Table is an interrupt descriptor table under construction. Handlers are
// bound with SetHandler and SetHandlerWithStack; Load encodes a present gate
// for each bound vector and installs the table. Unbound vectors are encoded
// as non-present so the CPU raises a fault if they ever fire.
type Table struct {
	handlers [gateEntryCount]Handler

	// istSlots holds the IST field of each descriptor: 0 selects the
	// current stack and n selects IST entry n-1.
	istSlots [gateEntryCount]uint8

	descriptors [idtEntries]descriptor
	pointer     cpu.DescriptorTablePointer
	loaded      bool
}

// SetHandler binds handler to the given interrupt number.
func (t *Table) SetHandler(num InterruptNumber, handler Handler) *kernel.Error {
	return t.set(num, 0, handler)
}

// SetHandlerWithStack binds handler to the given interrupt number and
// instructs the CPU to switch to the stack stored in the TSS interrupt stack
// table slot istIndex before invoking it.
func (t *Table) SetHandlerWithStack(num InterruptNumber, istIndex uint8, handler Handler) *kernel.Error {
	if istIndex >= MaxISTIndex {
		return errInvalidISTIndex
	}

	return t.set(num, istIndex+1, handler)
}

func (t *Table) set(num InterruptNumber, istSlot uint8, handler Handler) *kernel.Error {
	if t.loaded {
		return errTableLoaded
	}

	if num >= gateEntryCount {
		return errNoGateEntry
	}

	t.handlers[num] = handler
	t.istSlots[num] = istSlot
	return nil
}

// Handler returns the handler bound to num or nil if the slot is empty.
func (t *Table) Handler(num InterruptNumber) Handler {
	if num >= gateEntryCount {
		return nil
	}

	return t.handlers[num]
}

// StackIndex returns the interrupt stack table index used by num and true,
// or false if the handler for num runs on the interrupted stack.
func (t *Table) StackIndex(num InterruptNumber) (uint8, bool) {
	if num >= gateEntryCount || t.istSlots[num] == 0 {
		return 0, false
	}

	return t.istSlots[num] - 1, true
}

// Load encodes the gate descriptors, makes the table the dispatch target for
// incoming interrupts and loads it into the IDTR. Once loaded, the table can
// no longer be modified. The table must remain valid for as long as it is
// active.
func (t *Table) Load() {
	if !t.loaded {
		selector := codeSegmentFn()
		for vector := 0; vector < gateEntryCount; vector++ {
			if t.handlers[vector] == nil {
				continue
			}

			entryAddr := gateEntryAddrFn(uint8(vector))
			t.descriptors[vector] = descriptor{
				offsetLow:  uint16(entryAddr),
				selector:   selector,
				ist:        t.istSlots[vector],
				typeAttr:   gateFlagPresent | gateTypeInterrupt,
				offsetMid:  uint16(entryAddr >> 16),
				offsetHigh: uint32(entryAddr >> 32),
			}
		}

		t.pointer.Set(uintptr(unsafe.Pointer(&t.descriptors[0])), unsafe.Sizeof(t.descriptors))
		t.loaded = true
	}

	activeTable = t
	loadIDTFn(t.pointer.Addr())
}

// dispatchInterrupt is invoked by the gate entry stubs to route an incoming
// interrupt to its handler.
//
//go:nosplit
func dispatchInterrupt(regs *Registers) {
	table := activeTable
	if table == nil || regs.Vector >= gateEntryCount {
		return
	}

	if handler := table.handlers[regs.Vector]; handler != nil {
		handler(regs)
	}
}

// gateEntryAddr returns the address of the entry stub for the given vector.
// Vectors must be less than gateEntryCount.
func gateEntryAddr(vector uint8) uintptr
