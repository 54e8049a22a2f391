// Package input provides human input, such as keyboards and keypads, as streams of control events.
package input

import (
	"context"
	"time"
)

// Controller is a logical "container" more than an actual device.
// Could be a terminal keyboard, a raw keyboard device, or events injected from elsewhere.
type Controller interface {
	// Controls returns a list of Controls provided by the Controller
	Controls(ctx context.Context) ([]Control, error)

	// Events returns most recent Event for each input (which should be the current state)
	Events(ctx context.Context) (map[Control]Event, error)

	// RegisterControlCallback registers a callback that will fire on given EventTypes for a given Control.
	// A nil ctrlFunc removes the callback for those triggers.
	RegisterControlCallback(ctx context.Context, control Control, triggers []EventType, ctrlFunc ControlFunction) error

	// Close stops event delivery and releases the underlying device.
	Close(ctx context.Context) error
}

// ControlFunction is a callback passed to RegisterControlCallback.
type ControlFunction func(ctx context.Context, ev Event)

// EventType represents the type of input event, and is returned by Events() or passed to ControlFunction callbacks.
type EventType string

// EventType list, to be expanded as new input devices are developed.
const (
	// Callbacks registered for this event will be called in ADDITION to other registered event callbacks.
	AllEvents EventType = "AllEvents"
	// Sent at controller initialization, and on reconnects.
	Connect EventType = "Connect"
	// If unplugged, or the terminal goes away.
	Disconnect EventType = "Disconnect"
	// Typical key press.
	ButtonPress EventType = "ButtonPress"
	// Key release.
	ButtonRelease EventType = "ButtonRelease"
	// Both up and down for convenience during registration, not typically emitted.
	ButtonChange EventType = "ButtonChange"
)

// Control identifies the input (a specific key) of a controller.
type Control string

// Event is passed to the registered ControlFunction or returned by Events().
type Event struct {
	Time    time.Time
	Event   EventType
	Control Control // Key
	Value   float64 // 0 or 1 for keys
}

// Triggerable is used to inject events from external code.
type Triggerable interface {
	// TriggerEvent allows directly sending an Event (such as a button press) from external code
	TriggerEvent(ctx context.Context, event Event) error
}
