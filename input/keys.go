package input

import (
	"strings"
	"unicode"
)

// Keyboard controls. The names follow the key labels of a full size keyboard; keypad keys are
// distinct from the digit row.
const (
	KeyUp       Control = "KeyUp"
	KeyDown     Control = "KeyDown"
	KeyLeft     Control = "KeyLeft"
	KeyRight    Control = "KeyRight"
	KeyPageUp   Control = "KeyPageUp"
	KeyPageDown Control = "KeyPageDown"
	KeyEscape   Control = "KeyEscape"
	KeyEnter    Control = "KeyEnter"
	KeySpace    Control = "KeySpace"

	KeyKP0     Control = "KeyKP0"
	KeyKP1     Control = "KeyKP1"
	KeyKP2     Control = "KeyKP2"
	KeyKP3     Control = "KeyKP3"
	KeyKP4     Control = "KeyKP4"
	KeyKP5     Control = "KeyKP5"
	KeyKP6     Control = "KeyKP6"
	KeyKP7     Control = "KeyKP7"
	KeyKP8     Control = "KeyKP8"
	KeyKP9     Control = "KeyKP9"
	KeyKPPlus  Control = "KeyKPPlus"
	KeyKPMinus Control = "KeyKPMinus"

	Key1 Control = "Key1"
	KeyG Control = "KeyG"
	KeyO Control = "KeyO"
	KeyP Control = "KeyP"
	KeyR Control = "KeyR"
	KeyS Control = "KeyS"
	KeyY Control = "KeyY"
)

var keyboardControls = func() []Control {
	controls := []Control{
		KeyUp, KeyDown, KeyLeft, KeyRight, KeyPageUp, KeyPageDown, KeyEscape, KeyEnter, KeySpace,
		KeyKP0, KeyKP1, KeyKP2, KeyKP3, KeyKP4, KeyKP5, KeyKP6, KeyKP7, KeyKP8, KeyKP9,
		KeyKPPlus, KeyKPMinus,
	}
	for r := '0'; r <= '9'; r++ {
		controls = append(controls, Control("Key"+string(r)))
	}
	for r := 'A'; r <= 'Z'; r++ {
		controls = append(controls, Control("Key"+string(r)))
	}
	return controls
}()

// KeyboardControls lists every key control a keyboard controller may emit.
func KeyboardControls() []Control {
	return append([]Control(nil), keyboardControls...)
}

// ControlForRune returns the control a typed character stands for. Letters are case-insensitive
// and digits map to the digit row. A terminal cannot tell the keypad apart, so '+' and '-' map
// to the keypad keys.
func ControlForRune(r rune) (Control, bool) {
	switch {
	case r >= '0' && r <= '9':
		return Control("Key" + string(r)), true
	case r < unicode.MaxASCII && unicode.IsLetter(r):
		return Control("Key" + strings.ToUpper(string(r))), true
	case r == '+':
		return KeyKPPlus, true
	case r == '-':
		return KeyKPMinus, true
	case r == ' ':
		return KeySpace, true
	}
	return "", false
}

// RuneForControl is the inverse of ControlForRune for single character keys. Letters come back
// lower case.
func RuneForControl(control Control) (rune, bool) {
	name := strings.TrimPrefix(string(control), "Key")
	if name == string(control) {
		return 0, false
	}
	switch control {
	case KeyKPPlus:
		return '+', true
	case KeyKPMinus:
		return '-', true
	case KeySpace:
		return ' ', true
	}
	if len(name) != 1 {
		return 0, false
	}
	r := rune(name[0])
	switch {
	case r >= '0' && r <= '9':
		return r, true
	case r >= 'A' && r <= 'Z':
		return unicode.ToLower(r), true
	}
	return 0, false
}
