package console

import (
	"io"
	"unsafe"

	"github.com/MaciejSzybiak/first-os/device"
	"github.com/MaciejSzybiak/first-os/kernel"
	"github.com/MaciejSzybiak/first-os/kernel/hal/multiboot"
	"github.com/MaciejSzybiak/first-os/kernel/kfmt"
)

const (
	// The legacy VGA text buffer used when the bootloader does not report
	// a framebuffer.
	legacyTextBufferAddr = 0xb8000
	legacyTextColumns    = 80
	legacyTextRows       = 25
)

var (
	getFramebufferInfoFn = multiboot.GetFramebufferInfo

	// probed holds the console returned by Probe.
	probed VgaTextConsole

	errNoFramebuffer = &kernel.Error{Module: "vga_text_console", Message: "framebuffer address not set"}
)

// VgaTextConsole implements an 80x25 text console on top of a VGA mode 0x3
// framebuffer. Each cell of the framebuffer is a 16-bit value holding the
// character code in the low byte and its Attr in the high byte.
//
// The framebuffer is accessed through the bootloader's mapping of all
// physical memory at a fixed offset so no page mapping is required.
type VgaTextConsole struct {
	columns uint32
	rows    uint32

	fbPhysAddr uintptr
	physOffset uintptr
	fb         []uint16

	defaultAttr Attr
	clearChar   byte
}

// NewVgaTextConsole returns a console for the text framebuffer at physical
// address fbPhysAddr. The framebuffer becomes accessible once DriverInit is
// called.
func NewVgaTextConsole(columns, rows uint32, fbPhysAddr, physOffset uintptr) *VgaTextConsole {
	cons := new(VgaTextConsole)
	cons.init(columns, rows, fbPhysAddr, physOffset)
	return cons
}

func (cons *VgaTextConsole) init(columns, rows uint32, fbPhysAddr, physOffset uintptr) {
	*cons = VgaTextConsole{
		columns:     columns,
		rows:        rows,
		fbPhysAddr:  fbPhysAddr,
		physOffset:  physOffset,
		defaultAttr: MakeAttr(LightGray, Black),
		clearChar:   ' ',
	}
}

// Dimensions implements Device.
func (cons *VgaTextConsole) Dimensions() (uint32, uint32) {
	return cons.columns, cons.rows
}

// DefaultAttr implements Device.
func (cons *VgaTextConsole) DefaultAttr() Attr {
	return cons.defaultAttr
}

func (cons *VgaTextConsole) cell(ch byte, attr Attr) uint16 {
	return uint16(attr)<<8 | uint16(ch)
}

// Fill implements Device. The rectangle is clipped to the console bounds.
func (cons *VgaTextConsole) Fill(x, y, width, height uint32, attr Attr) {
	if x == 0 {
		x = 1
	} else if x > cons.columns {
		x = cons.columns
	}

	if y == 0 {
		y = 1
	} else if y > cons.rows {
		y = cons.rows
	}

	if x+width-1 > cons.columns {
		width = cons.columns - x + 1
	}

	if y+height-1 > cons.rows {
		height = cons.rows - y + 1
	}

	clr := cons.cell(cons.clearChar, attr)
	for row := y - 1; row < y-1+height; row++ {
		start := row*cons.columns + x - 1
		for i := start; i < start+width; i++ {
			cons.fb[i] = clr
		}
	}
}

// Scroll implements Device.
func (cons *VgaTextConsole) Scroll(lines uint32) {
	if lines == 0 || lines > cons.rows {
		return
	}

	copy(cons.fb, cons.fb[lines*cons.columns:cons.rows*cons.columns])
}

// Write implements Device. Writes outside the console bounds are ignored.
func (cons *VgaTextConsole) Write(ch byte, attr Attr, x, y uint32) {
	if x < 1 || x > cons.columns || y < 1 || y > cons.rows {
		return
	}

	cons.fb[(y-1)*cons.columns+(x-1)] = cons.cell(ch, attr)
}

// DriverName returns the name of this driver.
func (cons *VgaTextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaTextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit locates the framebuffer inside the physical memory mapping and
// clears it.
func (cons *VgaTextConsole) DriverInit(w io.Writer) *kernel.Error {
	if cons.fbPhysAddr == 0 {
		return errNoFramebuffer
	}

	fbAddr := cons.physOffset + cons.fbPhysAddr
	cons.fb = unsafe.Slice((*uint16)(unsafe.Pointer(fbAddr)), cons.columns*cons.rows)
	cons.Fill(1, 1, cons.columns, cons.rows, cons.defaultAttr)

	kfmt.Fprintf(w, "framebuffer at 0x%x (%dx%d)\n", fbAddr, cons.columns, cons.rows)
	return nil
}

// Probe returns a text console for the EGA framebuffer reported by the
// bootloader. If the bootloader reports no framebuffer, the legacy VGA text
// buffer is assumed. Probe returns nil if the bootloader set up a graphics
// mode. The returned console is statically allocated.
func Probe(physOffset uintptr) device.Driver {
	fbInfo := getFramebufferInfoFn()
	switch {
	case fbInfo == nil:
		probed.init(legacyTextColumns, legacyTextRows, legacyTextBufferAddr, physOffset)
	case fbInfo.Type == multiboot.FramebufferTypeEGA:
		probed.init(fbInfo.Width, fbInfo.Height, uintptr(fbInfo.PhysAddr), physOffset)
	default:
		return nil
	}

	return &probed
}
