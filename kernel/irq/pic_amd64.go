package irq

import (
	"github.com/MaciejSzybiak/first-os/device"
	"github.com/MaciejSzybiak/first-os/device/pic"
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/cpu"
	"github.com/MaciejSzybiak/first-os/kernel/hal"
	"github.com/MaciejSzybiak/first-os/kernel/sync"
)

// SpuriousPolicy selects which handlers consult the in-service register
// before acting on an interrupt.
type SpuriousPolicy uint8

const (
	// SpuriousCheckLpt1 only filters spurious interrupts on the Lpt1 line
	// where the 8259 reports them.
	SpuriousCheckLpt1 SpuriousPolicy = iota

	// SpuriousCheckAll additionally drops interrupts on the default
	// handled lines when no line is in service.
	SpuriousCheckAll
)

// controllerPair is the subset of the 8259 pair driver used by the handlers.
type controllerPair interface {
	device.Driver
	NotifyEndOfInterrupt(vector uint8)
	SetMasks(master, slave uint8)
	Masks() (master, slave uint8)
}

// isrReader reads the master controller in-service register.
type isrReader interface {
	Read() uint8
}

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	newControllerPairFn = newChainedPics
	newISRReaderFn      = newMasterISR
	interruptsEnabledFn = cpu.InterruptsEnabled
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts

	chainedPics pic.ChainedPics

	pics     controllerPair
	picsLock sync.Spinlock

	isr     isrReader
	isrLock sync.Spinlock

	spuriousPolicy SpuriousPolicy

	errPICAlreadyInitialized = &kernel.Error{Module: "irq", Message: "interrupt controllers already initialized"}
)

func newChainedPics() controllerPair {
	chainedPics = pic.NewChainedPics(PIC1Offset, PIC2Offset)
	return &chainedPics
}

func newMasterISR() isrReader {
	return pic.NewInServiceRegister(pic.MasterCommandPort)
}

// InitPIC remaps the controller pair to PIC1Offset and PIC2Offset. It must be
// invoked after the IDT is loaded and before interrupts are enabled. Calling
// InitPIC more than once returns an error.
func InitPIC() *kernel.Error {
	picsLock.Acquire()
	defer picsLock.Release()

	if pics != nil {
		return errPICAlreadyInitialized
	}

	isrLock.Acquire()
	isr = newISRReaderFn()
	isrLock.Release()

	pics = newControllerPairFn()
	return hal.InitDriver(pics)
}

// SetLineMask masks the controller lines whose bits are set in mask. The low
// byte holds the master lines and the high byte the slave lines.
func SetLineMask(mask uint16) {
	wasEnabled := acquirePicsFromTask()
	if pics != nil {
		pics.SetMasks(uint8(mask), uint8(mask>>8))
	}
	releasePicsFromTask(wasEnabled)
}

// LineMask returns the currently masked controller lines in the format
// accepted by SetLineMask.
func LineMask() uint16 {
	wasEnabled := acquirePicsFromTask()
	defer releasePicsFromTask(wasEnabled)

	if pics == nil {
		return 0
	}

	master, slave := pics.Masks()
	return uint16(slave)<<8 | uint16(master)
}

// acquirePicsFromTask acquires picsLock outside of interrupt context. The
// interrupt flag is cleared while the lock is held; otherwise a handler that
// interrupts the holder spins forever in endOfInterrupt. It returns whether
// interrupts were enabled on entry.
func acquirePicsFromTask() bool {
	wasEnabled := interruptsEnabledFn()
	if wasEnabled {
		disableInterruptsFn()
	}
	picsLock.Acquire()
	return wasEnabled
}

// releasePicsFromTask releases picsLock and restores the interrupt flag saved
// by acquirePicsFromTask.
func releasePicsFromTask(wasEnabled bool) {
	picsLock.Release()
	if wasEnabled {
		enableInterruptsFn()
	}
}

// SetSpuriousPolicy selects the spurious interrupt policy.
func SetSpuriousPolicy(policy SpuriousPolicy) {
	spuriousPolicy = policy
}

// endOfInterrupt acknowledges vector at the controller pair.
func endOfInterrupt(vector uint8) {
	picsLock.Acquire()
	if pics != nil {
		pics.NotifyEndOfInterrupt(vector)
	}
	picsLock.Release()
}

// readISR returns the master in-service register or 0 if the controllers
// have not been initialized.
func readISR() uint8 {
	var val uint8

	isrLock.Acquire()
	if isr != nil {
		val = isr.Read()
	}
	isrLock.Release()

	return val
}
