// Package tty implements the terminal that kernel output is written to.
package tty

import (
	"io"

	"github.com/MaciejSzybiak/first-os/device/video/console"
	"github.com/MaciejSzybiak/first-os/kernel"
)

const (
	// DefaultScrollback defines the terminal scrollback in lines.
	DefaultScrollback = 25

	// DefaultTabWidth defines the number of spaces that tabs expand to.
	DefaultTabWidth = 4

	// The terminal contents live in a fixed buffer as the terminal is
	// attached before any memory allocator is available.
	maxColumns = 80
	maxLines   = 25 + DefaultScrollback
)

// State defines the supported terminal state values.
type State uint8

const (
	// StateInactive marks the terminal as inactive. Writes are buffered
	// but not synced to the attached console.
	StateInactive State = iota

	// StateActive marks the terminal as active. Writes are buffered and
	// synced to the attached console.
	StateActive
)

type cell struct {
	ch   byte
	attr console.Attr
}

// VT implements a terminal supporting scrollback. The terminal interprets the
// following special characters:
//   - \r (carriage-return)
//   - \n (line-feed)
//   - \b (backspace)
//   - \t (tab; expanded to tabWidth spaces)
type VT struct {
	cons console.Device

	// viewport dimensions, clipped to the buffer size
	columns, rows uint32

	// total buffered lines (rows + scrollback)
	lines      uint32
	scrollback uint32

	buf [maxColumns * maxLines]cell

	tabWidth    uint8
	defaultAttr console.Attr
	curAttr     console.Attr

	// cursor position inside the viewport; 1-based
	cursorX, cursorY uint32

	// index of the buffer line shown at the top of the viewport
	viewportY uint32
	state     State
}

// NewVT creates a new virtual terminal. Up to scrollback lines that scroll
// off the viewport are kept in the terminal buffer.
func NewVT(tabWidth uint8, scrollback uint32) *VT {
	t := new(VT)
	t.Init(tabWidth, scrollback)
	return t
}

// Init resets t to a detached, inactive terminal. It is used for terminals
// that are not heap allocated.
func (t *VT) Init(tabWidth uint8, scrollback uint32) {
	*t = VT{
		tabWidth:   tabWidth,
		scrollback: scrollback,
		cursorX:    1,
		cursorY:    1,
	}
}

// AttachTo connects the terminal to a console and clears its contents.
func (t *VT) AttachTo(cons console.Device) {
	if cons == nil {
		return
	}

	t.cons = cons
	t.columns, t.rows = cons.Dimensions()
	if t.columns > maxColumns {
		t.columns = maxColumns
	}
	if t.rows > maxLines {
		t.rows = maxLines
	}

	t.lines = t.rows + t.scrollback
	if t.lines > maxLines {
		t.lines = maxLines
	}

	t.defaultAttr = cons.DefaultAttr()
	t.curAttr = t.defaultAttr
	t.cursorX, t.cursorY = 1, 1
	t.viewportY = 0

	for i := uint32(0); i < t.columns*t.lines; i++ {
		t.buf[i] = cell{' ', t.defaultAttr}
	}
}

// State returns the terminal state.
func (t *VT) State() State {
	return t.state
}

// SetState updates the terminal state. Activating the terminal redraws the
// viewport on the attached console.
func (t *VT) SetState(newState State) {
	if t.state == newState {
		return
	}

	t.state = newState
	if t.state != StateActive || t.cons == nil {
		return
	}

	for y := uint32(1); y <= t.rows; y++ {
		line := t.line(t.viewportY + y - 1)
		for x := uint32(1); x <= t.columns; x++ {
			t.cons.Write(line[x-1].ch, line[x-1].attr, x, y)
		}
	}
}

// SetAttr sets the attribute used for subsequent writes.
func (t *VT) SetAttr(attr console.Attr) {
	t.curAttr = attr
}

// CursorPosition returns the current cursor position.
func (t *VT) CursorPosition() (uint32, uint32) {
	return t.cursorX, t.cursorY
}

// SetCursorPosition moves the cursor to (x, y), clipped to the viewport.
func (t *VT) SetCursorPosition(x, y uint32) {
	if t.cons == nil {
		return
	}

	t.cursorX = clip(x, t.columns)
	t.cursorY = clip(y, t.rows)
}

func clip(v, limit uint32) uint32 {
	switch {
	case v < 1:
		return 1
	case v > limit:
		return limit
	default:
		return v
	}
}

// Write implements io.Writer.
func (t *VT) Write(data []byte) (int, error) {
	for count, b := range data {
		if err := t.WriteByte(b); err != nil {
			return count, err
		}
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *VT) WriteByte(b byte) error {
	if t.cons == nil {
		return io.ErrClosedPipe
	}

	switch b {
	case '\r':
		t.cursorX = 1
	case '\n':
		t.lineFeed()
	case '\b':
		if t.cursorX > 1 {
			t.cursorX--
			t.put(' ')
		}
	case '\t':
		for i := uint8(0); i < t.tabWidth; i++ {
			t.putAndAdvance(' ')
		}
	default:
		t.putAndAdvance(b)
	}

	return nil
}

// line returns the buffer contents for buffer line n.
func (t *VT) line(n uint32) []cell {
	return t.buf[n*t.columns : (n+1)*t.columns]
}

// put stores b with the current attribute under the cursor.
func (t *VT) put(b byte) {
	if t.state == StateActive {
		t.cons.Write(b, t.curAttr, t.cursorX, t.cursorY)
	}

	t.line(t.viewportY + t.cursorY - 1)[t.cursorX-1] = cell{b, t.curAttr}
}

func (t *VT) putAndAdvance(b byte) {
	t.put(b)
	if t.cursorX++; t.cursorX > t.columns {
		t.lineFeed()
	}
}

// lineFeed moves the cursor to the start of the next line. Once the cursor
// reaches the bottom of the viewport, the viewport moves down the buffer
// until the scrollback is exhausted; after that the buffer contents scroll.
func (t *VT) lineFeed() {
	t.cursorX = 1
	if t.cursorY < t.rows {
		t.cursorY++
		return
	}

	if t.viewportY+t.rows < t.lines {
		t.viewportY++
	} else {
		copy(t.buf[:], t.buf[t.columns:t.columns*t.lines])
	}

	last := t.line(t.viewportY + t.rows - 1)
	for i := range last {
		last[i] = cell{' ', t.defaultAttr}
	}

	if t.state == StateActive {
		t.cons.Scroll(1)
		t.cons.Fill(1, t.cursorY, t.columns, 1, t.defaultAttr)
	}
}

// DriverName returns the name of this driver.
func (t *VT) DriverName() string {
	return "vt"
}

// DriverVersion returns the version of this driver.
func (t *VT) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver.
func (t *VT) DriverInit(_ io.Writer) *kernel.Error { return nil }
