// Package evdev implements an input controller reading a Linux input event device, such as
// /dev/input/event0, for keyboards attached to the machine rather than the terminal.
package evdev

import (
	"sort"

	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.viam.com/usercommand/input"
)

// Model is the model name of the event device keyboard.
const Model = "evdev"

// Key event values.
const (
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// Keycodes from linux/input-event-codes.h.
var keyCodes = map[uint16]input.Control{
	1:   input.KeyEscape,
	2:   "Key1",
	3:   "Key2",
	4:   "Key3",
	5:   "Key4",
	6:   "Key5",
	7:   "Key6",
	8:   "Key7",
	9:   "Key8",
	10:  "Key9",
	11:  "Key0",
	16:  "KeyQ",
	17:  "KeyW",
	18:  "KeyE",
	19:  "KeyR",
	20:  "KeyT",
	21:  "KeyY",
	22:  "KeyU",
	23:  "KeyI",
	24:  "KeyO",
	25:  "KeyP",
	28:  input.KeyEnter,
	30:  "KeyA",
	31:  "KeyS",
	32:  "KeyD",
	33:  "KeyF",
	34:  "KeyG",
	35:  "KeyH",
	36:  "KeyJ",
	37:  "KeyK",
	38:  "KeyL",
	44:  "KeyZ",
	45:  "KeyX",
	46:  "KeyC",
	47:  "KeyV",
	48:  "KeyB",
	49:  "KeyN",
	50:  "KeyM",
	57:  input.KeySpace,
	71:  input.KeyKP7,
	72:  input.KeyKP8,
	73:  input.KeyKP9,
	74:  input.KeyKPMinus,
	75:  input.KeyKP4,
	76:  input.KeyKP5,
	77:  input.KeyKP6,
	78:  input.KeyKPPlus,
	79:  input.KeyKP1,
	80:  input.KeyKP2,
	81:  input.KeyKP3,
	82:  input.KeyKP0,
	96:  input.KeyEnter, // KEY_KPENTER
	103: input.KeyUp,
	104: input.KeyPageUp,
	105: input.KeyLeft,
	106: input.KeyRight,
	108: input.KeyDown,
	109: input.KeyPageDown,
}

// codeForControl is used to report what the device can emit. KEY_KPENTER is dropped in favor
// of KEY_ENTER.
var codeForControl = lo.Invert(lo.OmitByKeys(keyCodes, []uint16{96}))

// ControlForCode returns the control of a Linux keycode.
func ControlForCode(code uint16) (input.Control, bool) {
	control, ok := keyCodes[code]
	return control, ok
}

// eventTypeForValue maps a key event value to an input event type. Autorepeats count as presses
// only when asked for.
func eventTypeForValue(value int32, repeat bool) (input.EventType, bool) {
	switch value {
	case valuePress:
		return input.ButtonPress, true
	case valueRelease:
		return input.ButtonRelease, true
	case valueRepeat:
		if repeat {
			return input.ButtonPress, true
		}
	}
	return "", false
}

// Config configures an event device keyboard.
type Config struct {
	Device string `json:"device"`
	// Repeat turns held keys into repeated presses.
	Repeat bool `json:"repeat,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Device == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "device")
	}
	return nil
}

// Controls lists every control the keycode table knows, sorted.
func Controls() []input.Control {
	controls := lo.Keys(codeForControl)
	sort.Slice(controls, func(i, j int) bool { return controls[i] < controls[j] })
	return controls
}

func init() {
	input.RegisterController(Model, input.Registration{
		Constructor:           newController,
		AttributeMapConverter: input.AttributeConverter[Config](),
	})
}
