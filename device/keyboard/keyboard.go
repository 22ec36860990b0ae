// Package keyboard decodes the byte stream produced by a PS/2 keyboard
// controller into key events and characters.
//
// Decoding happens in two stages. AddByte feeds raw scancode bytes through a
// ScancodeSet and yields a KeyEvent once a complete make or break code has
// been received. ProcessKeyEvent tracks the modifier state and maps key
// presses to a DecodedKey using a Layout.
//
// None of the functions in this package allocate memory so they can be
// invoked from interrupt handlers.
package keyboard

import "github.com/MaciejSzybiak/first-os/kernel"

var (
	errUnknownKeyCode = &kernel.Error{Module: "keyboard", Message: "unknown scancode"}
)

// KeyState describes whether a key was pressed or released.
type KeyState uint8

const (
	// KeyUp is reported when a key is released (break code).
	KeyUp KeyState = iota

	// KeyDown is reported when a key is pressed or auto-repeats (make code).
	KeyDown
)

// KeyEvent is a key press or release.
type KeyEvent struct {
	Code  KeyCode
	State KeyState
}

// DecodedKey is the outcome of a key press. Keys that produce a character
// under the active layout are reported with Unicode set and the character
// in Char. All other keys are reported via RawKey.
type DecodedKey struct {
	Unicode bool
	Char    rune
	RawKey  KeyCode
}

func unicodeKey(ch rune) DecodedKey {
	return DecodedKey{Unicode: true, Char: ch}
}

func rawKey(code KeyCode) DecodedKey {
	return DecodedKey{RawKey: code}
}

// HandleControl selects how letter keys are mapped while Ctrl is held down.
type HandleControl uint8

const (
	// HandleControlIgnore maps letters exactly as if Ctrl was not pressed.
	HandleControlIgnore HandleControl = iota

	// HandleControlMapLettersToUnicode maps Ctrl+A..Ctrl+Z to U+0001..U+001A.
	HandleControlMapLettersToUnicode
)

// Modifiers tracks the state of the modifier and lock keys.
type Modifiers struct {
	LShift, RShift bool
	LCtrl, RCtrl   bool
	NumLock        bool
	CapsLock       bool
}

// IsShifted returns true if either shift key is held down.
func (m Modifiers) IsShifted() bool {
	return m.LShift || m.RShift
}

// IsCtrl returns true if either control key is held down.
func (m Modifiers) IsCtrl() bool {
	return m.LCtrl || m.RCtrl
}

// IsCaps returns true if letters should be upper case: shift and caps lock
// cancel each other out.
func (m Modifiers) IsCaps() bool {
	return m.IsShifted() != m.CapsLock
}

// DecodeState holds the scancode set decoder state between bytes.
type DecodeState uint8

const (
	// DecodeStart expects the first byte of a scancode.
	DecodeStart DecodeState = iota

	// DecodeExtended follows an 0xE0 prefix.
	DecodeExtended
)

// ScancodeSet turns raw scancode bytes into key events.
type ScancodeSet interface {
	// AdvanceState consumes b and returns a key event and true once a
	// complete code has been received.
	AdvanceState(state *DecodeState, b byte) (KeyEvent, bool, *kernel.Error)
}

// Layout maps key codes to characters.
type Layout interface {
	// MapKeycode maps a pressed key to a DecodedKey.
	MapKeycode(code KeyCode, modifiers Modifiers, handleCtrl HandleControl) DecodedKey
}

// Keyboard decodes scancodes for a particular layout and scancode set.
type Keyboard struct {
	layout     Layout
	set        ScancodeSet
	handleCtrl HandleControl
	state      DecodeState
	modifiers  Modifiers
}

// New returns a Keyboard with num lock enabled and all other modifiers
// released.
func New(layout Layout, set ScancodeSet, handleCtrl HandleControl) Keyboard {
	return Keyboard{
		layout:     layout,
		set:        set,
		handleCtrl: handleCtrl,
		modifiers:  Modifiers{NumLock: true},
	}
}

// Modifiers returns the current modifier state.
func (k *Keyboard) Modifiers() Modifiers {
	return k.modifiers
}

// AddByte feeds a scancode byte to the decoder. It returns a key event and
// true once a complete make or break code has been received. Unknown codes
// are reported as an error and reset the decoder.
func (k *Keyboard) AddByte(b byte) (KeyEvent, bool, *kernel.Error) {
	return k.set.AdvanceState(&k.state, b)
}

// ProcessKeyEvent updates the modifier state and returns the decoded key for
// key presses. Modifier and lock keys and all key releases yield false.
func (k *Keyboard) ProcessKeyEvent(ev KeyEvent) (DecodedKey, bool) {
	switch ev.Code {
	case KeyShiftLeft:
		k.modifiers.LShift = ev.State == KeyDown
		return DecodedKey{}, false
	case KeyShiftRight:
		k.modifiers.RShift = ev.State == KeyDown
		return DecodedKey{}, false
	case KeyControlLeft:
		k.modifiers.LCtrl = ev.State == KeyDown
		return DecodedKey{}, false
	case KeyControlRight:
		k.modifiers.RCtrl = ev.State == KeyDown
		return DecodedKey{}, false
	case KeyCapsLock:
		if ev.State == KeyDown {
			k.modifiers.CapsLock = !k.modifiers.CapsLock
		}
		return DecodedKey{}, false
	case KeyNumpadLock:
		if ev.State == KeyDown {
			k.modifiers.NumLock = !k.modifiers.NumLock
		}
		return DecodedKey{}, false
	}

	if ev.State != KeyDown {
		return DecodedKey{}, false
	}

	return k.layout.MapKeycode(ev.Code, k.modifiers, k.handleCtrl), true
}
