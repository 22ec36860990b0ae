package irq

import (
	"sync/atomic"

	"github.com/MaciejSzybiak/first-os/device/keyboard"
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/cpu"
	"github.com/MaciejSzybiak/first-os/kernel/gate"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
	"github.com/MaciejSzybiak/first-os/kernel/sync"
)

const (
	// keyboardDataPort is the PS/2 controller data port.
	keyboardDataPort = uint16(0x60)

	// lpt1InServiceBit is set in the master in-service register while a
	// genuine Lpt1 interrupt is being serviced.
	lpt1InServiceBit = uint8(1 << 7)
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	readCR2Fn      = cpu.ReadCR2
	portReadByteFn = cpu.PortReadByte
	haltLoopFn     = haltLoop
	panicFn        = kfmt.Panic

	ticks uint64

	kbd      keyboard.Keyboard
	kbdReady bool
	kbdLock  sync.Spinlock

	errDoubleFault = &kernel.Error{Module: "irq", Message: "double fault"}
)

// Ticks returns the number of timer interrupts serviced so far.
func Ticks() uint64 {
	return atomic.LoadUint64(&ticks)
}

// haltLoop enables interrupts and idles the CPU forever so that device
// interrupts keep being serviced.
func haltLoop() {
	cpu.EnableInterrupts()
	for {
		cpu.Idle()
	}
}

func breakpointHandler(regs *gate.Registers) {
	kfmt.Printf("EXCEPTION: breakpoint\n")
	regs.DumpFrameTo(kfmt.GetOutputSink())
}

func pageFaultHandler(regs *gate.Registers) {
	kfmt.Printf("EXCEPTION: page fault\n")
	kfmt.Printf("Accessed Address: 0x%x\n", readCR2Fn())
	kfmt.Printf("Error code: ")
	PageFaultErrorCode(regs.Info).printTo()
	kfmt.Printf("\n")
	regs.DumpTo(kfmt.GetOutputSink())
	haltLoopFn()
}

func doubleFaultHandler(regs *gate.Registers) {
	kfmt.Printf("EXCEPTION: double fault\n")
	regs.DumpTo(kfmt.GetOutputSink())
	panicFn(errDoubleFault)
}

func timerHandler(_ *gate.Registers) {
	atomic.AddUint64(&ticks, 1)
	endOfInterrupt(uint8(Timer))
}

func keyboardHandler(_ *gate.Registers) {
	scancode := portReadByteFn(keyboardDataPort)

	kbdLock.Acquire()
	if !kbdReady {
		kbd = keyboard.New(keyboard.Us104Key{}, keyboard.ScancodeSet1{}, keyboard.HandleControlIgnore)
		kbdReady = true
	}

	if ev, ok, err := kbd.AddByte(scancode); err == nil && ok {
		if key, ok := kbd.ProcessKeyEvent(ev); ok {
			if key.Unicode {
				kfmt.Printf("%c", key.Char)
			} else {
				kfmt.Printf("%s", key.RawKey.String())
			}
		}
	}
	kbdLock.Release()

	endOfInterrupt(uint8(Keyboard))
}

// lpt1Handler services the line that the master controller also reports
// spurious interrupts on. A spurious interrupt leaves the in-service bit
// clear and must not be acknowledged.
func lpt1Handler(regs *gate.Registers) {
	if readISR()&lpt1InServiceBit == 0 {
		return
	}

	kfmt.Printf("LPT1 interrupt (RIP: 0x%x)\n", regs.RIP)
	endOfInterrupt(uint8(Lpt1))
}

// defaultDeviceHandler reports and acknowledges an interrupt on one of the
// lines without a dedicated driver. The line is derived from the master
// in-service register.
func defaultDeviceHandler(_ *gate.Registers) {
	isrVal := readISR()
	if isrVal == 0 && spuriousPolicy == SpuriousCheckAll {
		return
	}

	id := isrVal - 1
	kfmt.Printf("Interrupt detected (ID: %d)\n", id)
	endOfInterrupt(PIC1Offset + id)
}
