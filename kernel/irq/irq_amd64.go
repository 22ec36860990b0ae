// Package irq builds the interrupt descriptor table and implements the
// handlers for CPU exceptions and the legacy hardware interrupt lines routed
// through the 8259 controller pair.
package irq

import (
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/gate"
	"github.com/MaciejSzybiak/first-os/kernel/gdt"
)

const (
	// PIC1Offset is the vector that master controller line 0 is remapped
	// to. It is the first vector after the 32 reserved CPU exceptions.
	PIC1Offset = 32

	// PIC2Offset is the vector that slave controller line 0 is remapped to.
	PIC2Offset = PIC1Offset + 8
)

// InterruptIndex identifies a hardware interrupt line by the vector it is
// delivered at.
type InterruptIndex uint8

// The legacy ISA interrupt lines in controller order.
const (
	Timer InterruptIndex = PIC1Offset + iota
	Keyboard
	Cascade
	Com2
	Com1
	Lpt2
	Floppy
	Lpt1
	Clock
	Peripheral1
	Peripheral2
	Peripheral3
	Mouse
	Fpu
	PrimaryAta
	SecondaryAta
)

// Vector returns the interrupt number for the line.
func (i InterruptIndex) Vector() gate.InterruptNumber {
	return gate.InterruptNumber(i)
}

// Line returns the controller input for the line, counting slave inputs
// from 8.
func (i InterruptIndex) Line() uint8 {
	return uint8(i) - PIC1Offset
}

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	loadTableFn = (*gate.Table).Load

	idt      gate.Table
	idtBuilt bool
)

// defaultHandledLines are the lines that report themselves through the
// default device handler.
var defaultHandledLines = [...]InterruptIndex{
	Com2, Com1, Lpt2, Floppy, Clock,
	Peripheral1, Peripheral2, Peripheral3,
	Mouse, Fpu, PrimaryAta, SecondaryAta,
}

// BuildIDT populates the interrupt descriptor table on its first invocation
// and returns it. Subsequent calls return the same table unchanged. The
// cascade line never fires and stays unbound.
func BuildIDT() *gate.Table {
	if idtBuilt {
		return &idt
	}

	mustBind(idt.SetHandler(gate.Breakpoint, breakpointHandler))
	mustBind(idt.SetHandler(gate.PageFaultException, pageFaultHandler))
	mustBind(idt.SetHandlerWithStack(gate.DoubleFault, gdt.DoubleFaultISTIndex, doubleFaultHandler))

	mustBind(idt.SetHandler(Timer.Vector(), timerHandler))
	mustBind(idt.SetHandler(Keyboard.Vector(), keyboardHandler))
	mustBind(idt.SetHandler(Lpt1.Vector(), lpt1Handler))
	for _, line := range defaultHandledLines {
		mustBind(idt.SetHandler(line.Vector(), defaultDeviceHandler))
	}

	idtBuilt = true
	return &idt
}

func mustBind(err *kernel.Error) {
	if err != nil {
		panicFn(err)
	}
}

// Init builds the interrupt descriptor table and loads it into the CPU.
func Init() {
	loadTableFn(BuildIDT())
}
