package keyboard

// keyPair holds the characters produced by a key without and with shift.
type keyPair struct {
	plain, shifted rune
}

var us104Symbols = [keyCodeCount]keyPair{
	KeyBackTick:           {'`', '~'},
	Key1:                  {'1', '!'},
	Key2:                  {'2', '@'},
	Key3:                  {'3', '#'},
	Key4:                  {'4', '$'},
	Key5:                  {'5', '%'},
	Key6:                  {'6', '^'},
	Key7:                  {'7', '&'},
	Key8:                  {'8', '*'},
	Key9:                  {'9', '('},
	Key0:                  {'0', ')'},
	KeyMinus:              {'-', '_'},
	KeyEquals:             {'=', '+'},
	KeyBracketSquareLeft:  {'[', '{'},
	KeyBracketSquareRight: {']', '}'},
	KeyBackSlash:          {'\\', '|'},
	KeySemiColon:          {';', ':'},
	KeyQuote:              {'\'', '"'},
	KeyComma:              {',', '<'},
	KeyFullstop:           {'.', '>'},
	KeySlash:              {'/', '?'},
}

// us104Letters maps letter keys to their lower case character.
var us104Letters = [keyCodeCount]rune{
	KeyA: 'a', KeyB: 'b', KeyC: 'c', KeyD: 'd', KeyE: 'e', KeyF: 'f',
	KeyG: 'g', KeyH: 'h', KeyI: 'i', KeyJ: 'j', KeyK: 'k', KeyL: 'l',
	KeyM: 'm', KeyN: 'n', KeyO: 'o', KeyP: 'p', KeyQ: 'q', KeyR: 'r',
	KeyS: 's', KeyT: 't', KeyU: 'u', KeyV: 'v', KeyW: 'w', KeyX: 'x',
	KeyY: 'y', KeyZ: 'z',
}

// us104Control maps keys that produce the same control character regardless
// of the modifier state.
var us104Control = [keyCodeCount]rune{
	KeyEscape:      0x1b,
	KeyBackspace:   0x08,
	KeyTab:         '\t',
	KeyEnter:       '\n',
	KeyNumpadEnter: '\n',
	KeySpacebar:    ' ',
	KeyDelete:      0x7f,
	KeyNumpadSlash: '/',
	KeyNumpadStar:  '*',
	KeyNumpadMinus: '-',
	KeyNumpadPlus:  '+',
}

// numpadKey describes a numeric keypad key: the digit it produces while num
// lock is on and the key it acts as otherwise.
type numpadKey struct {
	digit rune
	nav   KeyCode
}

var us104Numpad = [keyCodeCount]numpadKey{
	KeyNumpad0: {'0', KeyInsert},
	KeyNumpad1: {'1', KeyEnd},
	KeyNumpad2: {'2', KeyArrowDown},
	KeyNumpad3: {'3', KeyPageDown},
	KeyNumpad4: {'4', KeyArrowLeft},
	KeyNumpad5: {'5', KeyNumpad5},
	KeyNumpad6: {'6', KeyArrowRight},
	KeyNumpad7: {'7', KeyHome},
	KeyNumpad8: {'8', KeyArrowUp},
	KeyNumpad9: {'9', KeyPageUp},
}

// Us104Key is the standard United States 104-key keyboard layout.
type Us104Key struct{}

// MapKeycode implements Layout.
func (Us104Key) MapKeycode(code KeyCode, modifiers Modifiers, handleCtrl HandleControl) DecodedKey {
	if code >= keyCodeCount {
		return rawKey(code)
	}

	if ch := us104Letters[code]; ch != 0 {
		switch {
		case handleCtrl == HandleControlMapLettersToUnicode && modifiers.IsCtrl():
			return unicodeKey(ch - 'a' + 1)
		case modifiers.IsCaps():
			return unicodeKey(ch - 'a' + 'A')
		default:
			return unicodeKey(ch)
		}
	}

	if pair := us104Symbols[code]; pair.plain != 0 {
		if modifiers.IsShifted() {
			return unicodeKey(pair.shifted)
		}
		return unicodeKey(pair.plain)
	}

	if ch := us104Control[code]; ch != 0 {
		return unicodeKey(ch)
	}

	if np := us104Numpad[code]; np.digit != 0 {
		if modifiers.NumLock {
			return unicodeKey(np.digit)
		}
		return rawKey(np.nav)
	}

	if code == KeyNumpadPeriod {
		if modifiers.NumLock {
			return unicodeKey('.')
		}
		return unicodeKey(0x7f)
	}

	return rawKey(code)
}
