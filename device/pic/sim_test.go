package pic

import "testing"

// simController models the registers of a single 8259 that matter to the
// driver: the request, in-service and mask registers plus the ICW sequence.
type simController struct {
	offset  uint8
	imr     uint8
	irr     uint8
	isr     uint8
	icwStep int // 0: operational, 1-3: expecting ICW2-ICW4
	readISR bool
	cascade uint8
	mode    uint8
}

func (c *simController) writeCommand(val uint8) {
	switch {
	case val&0x10 != 0: // ICW1
		c.icwStep = 1
		c.imr, c.irr, c.isr = 0, 0, 0
		c.readISR = false
	case val&0x18 == 0x08: // OCW3
		if val&0x02 != 0 {
			c.readISR = val&0x01 != 0
		}
	case val&0xe0 == 0x20: // OCW2 non-specific EOI
		for line := uint8(0); line < 8; line++ {
			if c.isr&(1<<line) != 0 {
				c.isr &^= 1 << line
				break
			}
		}
	}
}

func (c *simController) writeData(val uint8) {
	switch c.icwStep {
	case 0:
		c.imr = val
	case 1:
		c.offset, c.icwStep = val, 2
	case 2:
		c.cascade, c.icwStep = val, 3
	case 3:
		c.mode, c.icwStep = val, 0
	}
}

func (c *simController) readCommand() uint8 {
	if c.readISR {
		return c.isr
	}
	return c.irr
}

// nextLine returns the highest priority line that can be delivered: it must
// be requested, unmasked and have a higher priority than any line that is
// currently in service.
func (c *simController) nextLine() (uint8, bool) {
	for line := uint8(0); line < 8; line++ {
		if c.isr&(1<<line) != 0 {
			return 0, false
		}

		if c.irr&^c.imr&(1<<line) != 0 {
			return line, true
		}
	}

	return 0, false
}

// simPair wires two simulated controllers to the driver port functions.
type simPair struct {
	master, slave simController
	portLog       []portWrite
	ioWaits       int
}

type portWrite struct {
	port uint16
	val  uint8
}

func installSimPair(t *testing.T) *simPair {
	origWrite, origRead, origWait := portWriteByteFn, portReadByteFn, ioWaitFn
	t.Cleanup(func() {
		portWriteByteFn, portReadByteFn, ioWaitFn = origWrite, origRead, origWait
	})

	sim := &simPair{}
	portWriteByteFn = sim.write
	portReadByteFn = sim.read
	ioWaitFn = func() { sim.ioWaits++ }
	return sim
}

func (s *simPair) write(port uint16, val uint8) {
	s.portLog = append(s.portLog, portWrite{port, val})
	switch port {
	case MasterCommandPort:
		s.master.writeCommand(val)
	case MasterDataPort:
		s.master.writeData(val)
	case SlaveCommandPort:
		s.slave.writeCommand(val)
	case SlaveDataPort:
		s.slave.writeData(val)
	}
}

func (s *simPair) read(port uint16) uint8 {
	switch port {
	case MasterCommandPort:
		return s.master.readCommand()
	case MasterDataPort:
		return s.master.imr
	case SlaveCommandPort:
		return s.slave.readCommand()
	case SlaveDataPort:
		return s.slave.imr
	}
	return 0xff
}

// raise asserts an interrupt line (0-15). Slave lines are cascaded through
// master line 2.
func (s *simPair) raise(line uint8) {
	if line < 8 {
		s.master.irr |= 1 << line
		return
	}

	s.slave.irr |= 1 << (line - 8)
}

// deliver returns the vector the CPU would receive next, moving the request
// into service, or false if nothing can be delivered.
func (s *simPair) deliver() (uint8, bool) {
	if slaveLine, ok := s.slave.nextLine(); ok {
		s.master.irr |= 1 << cascadeLine
		if masterLine, ok := s.master.nextLine(); ok && masterLine == cascadeLine {
			s.master.irr &^= 1 << cascadeLine
			s.master.isr |= 1 << cascadeLine
			s.slave.irr &^= 1 << slaveLine
			s.slave.isr |= 1 << slaveLine
			return s.slave.offset + slaveLine, true
		}
		s.master.irr &^= 1 << cascadeLine
	}

	masterLine, ok := s.master.nextLine()
	if !ok {
		return 0, false
	}

	s.master.irr &^= 1 << masterLine
	s.master.isr |= 1 << masterLine
	return s.master.offset + masterLine, true
}
