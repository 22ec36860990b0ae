package keyboard

import "github.com/MaciejSzybiak/first-os/kernel"

const (
	set1ExtendedPrefix = 0xe0
	set1BreakBit       = 0x80
)

// set1Codes maps single byte set 1 make codes to key codes.
var set1Codes = [...]KeyCode{
	0x01: KeyEscape,
	0x02: Key1, 0x03: Key2, 0x04: Key3, 0x05: Key4, 0x06: Key5,
	0x07: Key6, 0x08: Key7, 0x09: Key8, 0x0a: Key9, 0x0b: Key0,
	0x0c: KeyMinus,
	0x0d: KeyEquals,
	0x0e: KeyBackspace,
	0x0f: KeyTab,
	0x10: KeyQ, 0x11: KeyW, 0x12: KeyE, 0x13: KeyR, 0x14: KeyT,
	0x15: KeyY, 0x16: KeyU, 0x17: KeyI, 0x18: KeyO, 0x19: KeyP,
	0x1a: KeyBracketSquareLeft,
	0x1b: KeyBracketSquareRight,
	0x1c: KeyEnter,
	0x1d: KeyControlLeft,
	0x1e: KeyA, 0x1f: KeyS, 0x20: KeyD, 0x21: KeyF, 0x22: KeyG,
	0x23: KeyH, 0x24: KeyJ, 0x25: KeyK, 0x26: KeyL,
	0x27: KeySemiColon,
	0x28: KeyQuote,
	0x29: KeyBackTick,
	0x2a: KeyShiftLeft,
	0x2b: KeyBackSlash,
	0x2c: KeyZ, 0x2d: KeyX, 0x2e: KeyC, 0x2f: KeyV, 0x30: KeyB,
	0x31: KeyN, 0x32: KeyM,
	0x33: KeyComma,
	0x34: KeyFullstop,
	0x35: KeySlash,
	0x36: KeyShiftRight,
	0x37: KeyNumpadStar,
	0x38: KeyAltLeft,
	0x39: KeySpacebar,
	0x3a: KeyCapsLock,
	0x3b: KeyF1, 0x3c: KeyF2, 0x3d: KeyF3, 0x3e: KeyF4, 0x3f: KeyF5,
	0x40: KeyF6, 0x41: KeyF7, 0x42: KeyF8, 0x43: KeyF9, 0x44: KeyF10,
	0x45: KeyNumpadLock,
	0x46: KeyScrollLock,
	0x47: KeyNumpad7, 0x48: KeyNumpad8, 0x49: KeyNumpad9,
	0x4a: KeyNumpadMinus,
	0x4b: KeyNumpad4, 0x4c: KeyNumpad5, 0x4d: KeyNumpad6,
	0x4e: KeyNumpadPlus,
	0x4f: KeyNumpad1, 0x50: KeyNumpad2, 0x51: KeyNumpad3,
	0x52: KeyNumpad0,
	0x53: KeyNumpadPeriod,
	0x57: KeyF11,
	0x58: KeyF12,
}

// set1ExtendedCodes maps the byte following an 0xE0 prefix to key codes.
var set1ExtendedCodes = [...]KeyCode{
	0x1c: KeyNumpadEnter,
	0x1d: KeyControlRight,
	0x35: KeyNumpadSlash,
	0x37: KeyPrintScreen,
	0x38: KeyAltRight,
	0x47: KeyHome,
	0x48: KeyArrowUp,
	0x49: KeyPageUp,
	0x4b: KeyArrowLeft,
	0x4d: KeyArrowRight,
	0x4f: KeyEnd,
	0x50: KeyArrowDown,
	0x51: KeyPageDown,
	0x52: KeyInsert,
	0x53: KeyDelete,
	0x5b: KeyWindowsLeft,
	0x5c: KeyWindowsRight,
	0x5d: KeyMenus,
}

// ScancodeSet1 decodes IBM XT scancodes, the set that the PS/2 controller
// translates keyboard output to by default. Bit 7 distinguishes break codes
// from make codes and 0xE0 prefixes the keys added by the 101-key layout.
type ScancodeSet1 struct{}

// AdvanceState implements ScancodeSet.
func (ScancodeSet1) AdvanceState(state *DecodeState, b byte) (KeyEvent, bool, *kernel.Error) {
	table := set1Codes[:]
	switch {
	case *state == DecodeExtended:
		table = set1ExtendedCodes[:]
		*state = DecodeStart

		// Fake shifts (E0 2A, E0 AA) wrapped around some extended keys
		// carry no information.
		if b&^set1BreakBit == 0x2a {
			return KeyEvent{}, false, nil
		}
	case b == set1ExtendedPrefix:
		*state = DecodeExtended
		return KeyEvent{}, false, nil
	}

	ev := KeyEvent{State: KeyDown}
	if b&set1BreakBit != 0 {
		ev.State = KeyUp
		b &^= set1BreakBit
	}

	if int(b) < len(table) {
		ev.Code = table[b]
	}

	if ev.Code == KeyNone {
		return KeyEvent{}, false, errUnknownKeyCode
	}

	return ev, true, nil
}
