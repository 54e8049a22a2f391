package input

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Callbacks tracks registered ControlFunctions and the last event seen for each control. It is
// meant to be embedded by Controller implementations.
type Callbacks struct {
	mu         sync.RWMutex
	controls   map[Control]bool
	lastEvents map[Control]Event
	callbacks  map[Control]map[EventType]ControlFunction
}

// NewCallbacks returns Callbacks that accept registrations for the given controls.
func NewCallbacks(controls []Control) *Callbacks {
	cb := &Callbacks{
		controls:   make(map[Control]bool, len(controls)),
		lastEvents: make(map[Control]Event, len(controls)),
		callbacks:  make(map[Control]map[EventType]ControlFunction),
	}
	for _, control := range controls {
		cb.controls[control] = true
		cb.lastEvents[control] = Event{Event: Connect, Control: control}
	}
	return cb
}

// Known reports whether the control is one of the controller's controls.
func (cb *Callbacks) Known(control Control) bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.controls[control]
}

// Events returns a copy of the most recent event of every control.
func (cb *Callbacks) Events(ctx context.Context) (map[Control]Event, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	out := make(map[Control]Event, len(cb.lastEvents))
	for k, v := range cb.lastEvents {
		out[k] = v
	}
	return out, nil
}

// RegisterControlCallback registers ctrlFunc for the triggers of a control. ButtonChange expands
// to both ButtonPress and ButtonRelease. A nil ctrlFunc unregisters.
func (cb *Callbacks) RegisterControlCallback(
	ctx context.Context,
	control Control,
	triggers []EventType,
	ctrlFunc ControlFunction,
) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.controls[control] {
		return errors.Errorf("unknown control %q", control)
	}
	if cb.callbacks[control] == nil {
		cb.callbacks[control] = make(map[EventType]ControlFunction)
	}
	for _, trigger := range triggers {
		if trigger == ButtonChange {
			cb.set(control, ButtonPress, ctrlFunc)
			cb.set(control, ButtonRelease, ctrlFunc)
			continue
		}
		cb.set(control, trigger, ctrlFunc)
	}
	return nil
}

func (cb *Callbacks) set(control Control, trigger EventType, ctrlFunc ControlFunction) {
	if ctrlFunc == nil {
		delete(cb.callbacks[control], trigger)
		return
	}
	cb.callbacks[control][trigger] = ctrlFunc
}

// Dispatch records the event and calls the callbacks registered for its type and for AllEvents.
// Callbacks run on the caller's goroutine, outside of any lock.
func (cb *Callbacks) Dispatch(ctx context.Context, event Event) {
	cb.mu.Lock()
	cb.lastEvents[event.Control] = event
	var toCall []ControlFunction
	if ctrlFunc, ok := cb.callbacks[event.Control][event.Event]; ok {
		toCall = append(toCall, ctrlFunc)
	}
	if ctrlFunc, ok := cb.callbacks[event.Control][AllEvents]; ok {
		toCall = append(toCall, ctrlFunc)
	}
	cb.mu.Unlock()

	for _, ctrlFunc := range toCall {
		ctrlFunc(ctx, event)
	}
}
