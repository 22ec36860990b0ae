// Package pic drives the pair of cascaded 8259 programmable interrupt
// controllers found on PC-compatible machines.
package pic

import (
	"io"

	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/cpu"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
)

const (
	// Default I/O ports of the master and slave controllers.
	MasterCommandPort = uint16(0x20)
	MasterDataPort    = uint16(0x21)
	SlaveCommandPort  = uint16(0xa0)
	SlaveDataPort     = uint16(0xa1)

	// cascadeLine is the master input the slave is wired to.
	cascadeLine = 2

	// linesPerPic is the number of interrupt lines of a single controller.
	linesPerPic = 8

	// ICW1: start initialization; ICW4 will follow.
	cmdInit = uint8(0x11)

	// OCW2: non-specific end of interrupt.
	cmdEndOfInterrupt = uint8(0x20)

	// OCW3: the next read from the command port returns the in-service
	// register.
	cmdReadISR = uint8(0x0b)

	// ICW4: 8086/88 mode.
	mode8086 = uint8(0x01)
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
	ioWaitFn        = cpu.IOWait
)

// Pic describes a single 8259 controller.
type Pic struct {
	// offset is the vector that line 0 of this controller is delivered at.
	offset uint8

	command uint16
	data    uint16
}

// handlesInterrupt returns true if vector is one of the 8 vectors starting at
// the controller offset.
func (p *Pic) handlesInterrupt(vector uint8) bool {
	return p.offset <= vector && uint16(vector) < uint16(p.offset)+linesPerPic
}

func (p *Pic) endOfInterrupt() {
	portWriteByteFn(p.command, cmdEndOfInterrupt)
}

func (p *Pic) readMask() uint8 {
	return portReadByteFn(p.data)
}

func (p *Pic) writeMask(mask uint8) {
	portWriteByteFn(p.data, mask)
}

// ChainedPics describes the master/slave controller pair. The slave is wired
// to line 2 of the master.
type ChainedPics struct {
	master, slave Pic
}

// NewChainedPics describes a controller pair that will deliver its lines at
// the supplied vector offsets once initialized. Offsets should be at least
// 32 to avoid clashing with CPU exceptions.
func NewChainedPics(masterOffset, slaveOffset uint8) ChainedPics {
	return ChainedPics{
		master: Pic{offset: masterOffset, command: MasterCommandPort, data: MasterDataPort},
		slave:  Pic{offset: slaveOffset, command: SlaveCommandPort, data: SlaveDataPort},
	}
}

// Initialize remaps both controllers to their offsets. The interrupt masks in
// effect before the call are restored afterwards. Each write is followed by an
// I/O wait so that older controllers can keep up.
//
// Initializing the pair more than once while interrupts are enabled is a
// caller error.
func (c *ChainedPics) Initialize() {
	savedMasterMask, savedSlaveMask := c.master.readMask(), c.slave.readMask()

	for _, step := range [...]struct {
		port uint16
		val  uint8
	}{
		// ICW1: start the initialization sequence
		{c.master.command, cmdInit},
		{c.slave.command, cmdInit},
		// ICW2: vector offsets
		{c.master.data, c.master.offset},
		{c.slave.data, c.slave.offset},
		// ICW3: master has a slave on line 2; slave cascade identity is 2
		{c.master.data, 1 << cascadeLine},
		{c.slave.data, cascadeLine},
		// ICW4: 8086 mode
		{c.master.data, mode8086},
		{c.slave.data, mode8086},
	} {
		portWriteByteFn(step.port, step.val)
		ioWaitFn()
	}

	c.SetMasks(savedMasterMask, savedSlaveMask)
}

// HandlesInterrupt returns true if vector belongs to either controller.
func (c *ChainedPics) HandlesInterrupt(vector uint8) bool {
	return c.master.handlesInterrupt(vector) || c.slave.handlesInterrupt(vector)
}

// NotifyEndOfInterrupt acknowledges the interrupt delivered at vector so that
// the controller can deliver further interrupts of equal or lower priority.
// Slave vectors are acknowledged on the slave and then on the master; vectors
// not owned by either controller are ignored.
func (c *ChainedPics) NotifyEndOfInterrupt(vector uint8) {
	if !c.HandlesInterrupt(vector) {
		return
	}

	if c.slave.handlesInterrupt(vector) {
		c.slave.endOfInterrupt()
	}
	c.master.endOfInterrupt()
}

// Masks returns the interrupt masks of the master and slave. A set bit
// disables the corresponding line.
func (c *ChainedPics) Masks() (master, slave uint8) {
	return c.master.readMask(), c.slave.readMask()
}

// SetMasks replaces the interrupt masks of both controllers.
func (c *ChainedPics) SetMasks(master, slave uint8) {
	c.master.writeMask(master)
	c.slave.writeMask(slave)
}

// MaskLine disables the given line (0-15).
func (c *ChainedPics) MaskLine(line uint8) {
	pic, bit := c.picForLine(line)
	if pic != nil {
		pic.writeMask(pic.readMask() | bit)
	}
}

// UnmaskLine enables the given line (0-15).
func (c *ChainedPics) UnmaskLine(line uint8) {
	pic, bit := c.picForLine(line)
	if pic != nil {
		pic.writeMask(pic.readMask() &^ bit)
	}
}

func (c *ChainedPics) picForLine(line uint8) (*Pic, uint8) {
	switch {
	case line < linesPerPic:
		return &c.master, 1 << line
	case line < 2*linesPerPic:
		return &c.slave, 1 << (line - linesPerPic)
	default:
		return nil, 0
	}
}

// DriverName implements device.Driver.
func (c *ChainedPics) DriverName() string {
	return "8259_pic"
}

// DriverVersion implements device.Driver.
func (c *ChainedPics) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit implements device.Driver.
func (c *ChainedPics) DriverInit(w io.Writer) *kernel.Error {
	c.Initialize()

	masterMask, slaveMask := c.Masks()
	kfmt.Fprintf(w, "remapped lines to vectors %d-%d and %d-%d (masks: 0x%2x 0x%2x)\n",
		c.master.offset, c.master.offset+linesPerPic-1,
		c.slave.offset, c.slave.offset+linesPerPic-1,
		masterMask, slaveMask,
	)
	return nil
}

// InServiceRegister reads the in-service register of a controller. Bit n is
// set while line n is being serviced.
type InServiceRegister struct {
	command uint16
}

// NewInServiceRegister returns a reader for the controller whose command port
// is supplied. Use MasterCommandPort for the master controller.
func NewInServiceRegister(commandPort uint16) InServiceRegister {
	return InServiceRegister{command: commandPort}
}

// Read selects the in-service register with OCW3 and reads it back.
func (r InServiceRegister) Read() uint8 {
	portWriteByteFn(r.command, cmdReadISR)
	return portReadByteFn(r.command)
}
