// Package console provides the text consoles that kernel output is rendered
// to.
package console

// Color is one of the 16 colors supported by a text mode console.
type Color uint8

// The standard EGA text mode colors.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

// Attr packs a foreground and a background color into the attribute byte
// stored next to each character in a text mode framebuffer.
type Attr uint8

// MakeAttr returns the attribute for the given color pair.
func MakeAttr(fg, bg Color) Attr {
	return Attr((bg&0xf)<<4 | fg&0xf)
}

// Foreground returns the foreground color.
func (a Attr) Foreground() Color {
	return Color(a & 0xf)
}

// Background returns the background color.
func (a Attr) Background() Color {
	return Color(a >> 4)
}

// The Device interface is implemented by objects that can function as system
// consoles. All coordinates are 1-based (top-left corner is 1,1).
type Device interface {
	// Dimensions returns the console width and height in characters.
	Dimensions() (columns, rows uint32)

	// DefaultAttr returns the attribute used for cleared cells.
	DefaultAttr() Attr

	// Fill clears the specified rectangular region using attr.
	Fill(x, y, width, height uint32, attr Attr)

	// Scroll moves the console contents up by the specified number of
	// lines. The caller is responsible for clearing the rows at the
	// bottom.
	Scroll(lines uint32)

	// Write places a char at the specified location.
	Write(ch byte, attr Attr, x, y uint32)
}
