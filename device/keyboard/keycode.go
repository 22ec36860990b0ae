package keyboard

// KeyCode identifies a physical key independently of the active layout.
type KeyCode uint8

// The key codes of a 104-key keyboard. KeyNone is never produced by a
// scancode set; it marks unused scancode table slots.
const (
	KeyNone KeyCode = iota
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyPrintScreen
	KeyScrollLock
	KeyPauseBreak
	KeyBackTick
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyMinus
	KeyEquals
	KeyBackspace
	KeyInsert
	KeyHome
	KeyPageUp
	KeyNumpadLock
	KeyNumpadSlash
	KeyNumpadStar
	KeyNumpadMinus
	KeyTab
	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyBracketSquareLeft
	KeyBracketSquareRight
	KeyBackSlash
	KeyDelete
	KeyEnd
	KeyPageDown
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadPlus
	KeyCapsLock
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeySemiColon
	KeyQuote
	KeyEnter
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyShiftLeft
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyComma
	KeyFullstop
	KeySlash
	KeyShiftRight
	KeyArrowUp
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpadEnter
	KeyControlLeft
	KeyWindowsLeft
	KeyAltLeft
	KeySpacebar
	KeyAltRight
	KeyWindowsRight
	KeyMenus
	KeyControlRight
	KeyArrowLeft
	KeyArrowDown
	KeyArrowRight
	KeyNumpad0
	KeyNumpadPeriod

	// keyCodeCount must always be the last entry.
	keyCodeCount
)

var keyCodeNames = [keyCodeCount]string{
	KeyNone:               "None",
	KeyEscape:             "Escape",
	KeyF1:                 "F1",
	KeyF2:                 "F2",
	KeyF3:                 "F3",
	KeyF4:                 "F4",
	KeyF5:                 "F5",
	KeyF6:                 "F6",
	KeyF7:                 "F7",
	KeyF8:                 "F8",
	KeyF9:                 "F9",
	KeyF10:                "F10",
	KeyF11:                "F11",
	KeyF12:                "F12",
	KeyPrintScreen:        "PrintScreen",
	KeyScrollLock:         "ScrollLock",
	KeyPauseBreak:         "PauseBreak",
	KeyBackTick:           "BackTick",
	Key1:                  "Key1",
	Key2:                  "Key2",
	Key3:                  "Key3",
	Key4:                  "Key4",
	Key5:                  "Key5",
	Key6:                  "Key6",
	Key7:                  "Key7",
	Key8:                  "Key8",
	Key9:                  "Key9",
	Key0:                  "Key0",
	KeyMinus:              "Minus",
	KeyEquals:             "Equals",
	KeyBackspace:          "Backspace",
	KeyInsert:             "Insert",
	KeyHome:               "Home",
	KeyPageUp:             "PageUp",
	KeyNumpadLock:         "NumpadLock",
	KeyNumpadSlash:        "NumpadSlash",
	KeyNumpadStar:         "NumpadStar",
	KeyNumpadMinus:        "NumpadMinus",
	KeyTab:                "Tab",
	KeyQ:                  "Q",
	KeyW:                  "W",
	KeyE:                  "E",
	KeyR:                  "R",
	KeyT:                  "T",
	KeyY:                  "Y",
	KeyU:                  "U",
	KeyI:                  "I",
	KeyO:                  "O",
	KeyP:                  "P",
	KeyBracketSquareLeft:  "BracketSquareLeft",
	KeyBracketSquareRight: "BracketSquareRight",
	KeyBackSlash:          "BackSlash",
	KeyDelete:             "Delete",
	KeyEnd:                "End",
	KeyPageDown:           "PageDown",
	KeyNumpad7:            "Numpad7",
	KeyNumpad8:            "Numpad8",
	KeyNumpad9:            "Numpad9",
	KeyNumpadPlus:         "NumpadPlus",
	KeyCapsLock:           "CapsLock",
	KeyA:                  "A",
	KeyS:                  "S",
	KeyD:                  "D",
	KeyF:                  "F",
	KeyG:                  "G",
	KeyH:                  "H",
	KeyJ:                  "J",
	KeyK:                  "K",
	KeyL:                  "L",
	KeySemiColon:          "SemiColon",
	KeyQuote:              "Quote",
	KeyEnter:              "Enter",
	KeyNumpad4:            "Numpad4",
	KeyNumpad5:            "Numpad5",
	KeyNumpad6:            "Numpad6",
	KeyShiftLeft:          "ShiftLeft",
	KeyZ:                  "Z",
	KeyX:                  "X",
	KeyC:                  "C",
	KeyV:                  "V",
	KeyB:                  "B",
	KeyN:                  "N",
	KeyM:                  "M",
	KeyComma:              "Comma",
	KeyFullstop:           "Fullstop",
	KeySlash:              "Slash",
	KeyShiftRight:         "ShiftRight",
	KeyArrowUp:            "ArrowUp",
	KeyNumpad1:            "Numpad1",
	KeyNumpad2:            "Numpad2",
	KeyNumpad3:            "Numpad3",
	KeyNumpadEnter:        "NumpadEnter",
	KeyControlLeft:        "ControlLeft",
	KeyWindowsLeft:        "WindowsLeft",
	KeyAltLeft:            "AltLeft",
	KeySpacebar:           "Spacebar",
	KeyAltRight:           "AltRight",
	KeyWindowsRight:       "WindowsRight",
	KeyMenus:              "Menus",
	KeyControlRight:       "ControlRight",
	KeyArrowLeft:          "ArrowLeft",
	KeyArrowDown:          "ArrowDown",
	KeyArrowRight:         "ArrowRight",
	KeyNumpad0:            "Numpad0",
	KeyNumpadPeriod:       "NumpadPeriod",
}

// String returns the name of the key code.
func (k KeyCode) String() string {
	if k >= keyCodeCount {
		return "Unknown"
	}
	return keyCodeNames[k]
}
