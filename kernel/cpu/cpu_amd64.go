// Package cpu exposes the privileged amd64 instructions used by the kernel:
// interrupt flag control, control register access and port I/O.
package cpu

const (
	// ioWaitPort is an unused port (POST diagnostics) whose write completes
	// after roughly one microsecond on PC-compatible hardware.
	ioWaitPort = uint16(0x80)
)

var (
	// portWriteByteFn is mocked by tests and is automatically inlined by
	// the compiler.
	portWriteByteFn = PortWriteByte
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// InterruptsEnabled reports whether the interrupt flag in RFLAGS is set.
func InterruptsEnabled() bool

// Halt disables interrupts and stops instruction execution.
func Halt()

// Idle stops instruction execution until the next interrupt arrives. Unlike
// Halt, the interrupt flag is left untouched.
func Idle()

// Breakpoint raises a breakpoint exception (INT3).
func Breakpoint()

// FlushTLBEntry flushes a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// ActivePDT returns the contents of CR3: the physical address of the active
// top-level page table plus the PCID/flag bits in its low 12 bits.
func ActivePDT() uintptr

// ReadCR2 returns the value stored in the CR2 register.
func ReadCR2() uint64

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// LoadIDT loads the interrupt descriptor table whose 10-byte pseudo
// descriptor (limit followed by base) starts at idtr.
func LoadIDT(idtr uintptr)

// LoadGDT loads the global descriptor table whose 10-byte pseudo descriptor
// starts at gdtr and reloads CS with codeSelector.
func LoadGDT(gdtr uintptr, codeSelector uint16)

// LoadTaskRegister loads the task register with the supplied TSS selector.
func LoadTaskRegister(selector uint16)

// CodeSegment returns the active code segment selector.
func CodeSegment() uint16

// IOWait gives slow devices (e.g. the 8259 controllers) time to latch the
// previous port write by issuing a dummy write to an unused port.
func IOWait() {
	portWriteByteFn(ioWaitPort, 0)
}
