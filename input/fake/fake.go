// Package fake implements a fake input controller whose events are injected with TriggerEvent.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
)

// Model is the model name of the fake controller.
const Model = "fake"

func init() {
	input.RegisterController(Model, input.Registration{
		Constructor: func(ctx context.Context, attrs interface{}, logger logging.Logger) (input.Controller, error) {
			conf, ok := attrs.(*Config)
			if !ok {
				return nil, errors.Errorf("expected %T but got %T", conf, attrs)
			}
			return NewController(ctx, *conf, logger)
		},
		AttributeMapConverter: input.AttributeConverter[Config](),
	})
}

// Config can list the controls of the fake controller. It defaults to every keyboard control.
type Config struct {
	Controls []input.Control `json:"controls,omitempty"`
}

// Controller is a fake input controller.
type Controller struct {
	*input.Callbacks
	controls []input.Control
	logger   logging.Logger

	mu     sync.Mutex
	closed bool
}

var (
	_ = input.Controller(&Controller{})
	_ = input.Triggerable(&Controller{})
)

// NewController returns a fake controller.
func NewController(ctx context.Context, conf Config, logger logging.Logger) (*Controller, error) {
	controls := conf.Controls
	if len(controls) == 0 {
		controls = input.KeyboardControls()
	}
	return &Controller{
		Callbacks: input.NewCallbacks(controls),
		controls:  controls,
		logger:    logger,
	}, nil
}

// Controls lists the inputs.
func (c *Controller) Controls(ctx context.Context) ([]input.Control, error) {
	return append([]input.Control(nil), c.controls...), nil
}

// TriggerEvent delivers the event to the registered callbacks before returning.
func (c *Controller) TriggerEvent(ctx context.Context, event input.Event) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errors.New("controller is closed")
	}
	if !c.Known(event.Control) {
		return errors.Errorf("unknown control %q", event.Control)
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	c.Dispatch(ctx, event)
	return nil
}

// Press is a shorthand for triggering a ButtonPress of a control.
func (c *Controller) Press(ctx context.Context, control input.Control) error {
	return c.TriggerEvent(ctx, input.Event{Event: input.ButtonPress, Control: control, Value: 1})
}

// Close stops accepting events.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
