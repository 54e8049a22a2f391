//go:build linux

package evdev

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/viamrobotics/evdev"
	"go.viam.com/utils"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
)

// Controller is a keyboard read from an input event device.
type Controller struct {
	*input.Callbacks

	dev    *evdev.Evdev
	conf   Config
	logger logging.Logger

	cancel  context.CancelFunc
	workers sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

var (
	_ = input.Controller(&Controller{})
	_ = input.Triggerable(&Controller{})
)

func newController(ctx context.Context, attrs interface{}, logger logging.Logger) (input.Controller, error) {
	conf, ok := attrs.(*Config)
	if !ok {
		return nil, errors.Errorf("expected %T but got %T", conf, attrs)
	}
	return NewController(ctx, *conf, logger)
}

// NewController opens the device and starts reading key events.
func NewController(ctx context.Context, conf Config, logger logging.Logger) (*Controller, error) {
	if err := conf.Validate(Model); err != nil {
		return nil, err
	}
	dev, err := evdev.OpenFile(conf.Device)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open input device %q", conf.Device)
	}
	logger.Infow("reading keys from input device", "device", conf.Device, "name", dev.Name())

	cancelCtx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		Callbacks: input.NewCallbacks(Controls()),
		dev:       dev,
		conf:      conf,
		logger:    logger,
		cancel:    cancel,
	}
	c.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer c.workers.Done()
		c.eventLoop(cancelCtx)
	})
	return c, nil
}

func (c *Controller) eventLoop(ctx context.Context) {
	evChan := c.dev.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case eventIn, ok := <-evChan:
			if !ok {
				c.logger.Warn("input device stopped delivering events")
				c.disconnect(ctx)
				return
			}
			if eventIn == nil || eventIn.Event.Type != evdev.EventKey {
				continue
			}
			c.handleKey(ctx, eventTime(eventIn.Event.Time), eventIn.Event.Code, eventIn.Event.Value)
		}
	}
}

// eventTime converts the kernel timestamp of an input event.
func eventTime(tv syscall.Timeval) time.Time {
	return time.Unix(tv.Unix())
}

func (c *Controller) handleKey(ctx context.Context, when time.Time, code uint16, value int32) {
	control, ok := ControlForCode(code)
	if !ok {
		c.logger.Debugw("ignoring unmapped keycode", "code", code)
		return
	}
	eventType, ok := eventTypeForValue(value, c.conf.Repeat)
	if !ok {
		return
	}
	var eventValue float64
	if eventType == input.ButtonPress {
		eventValue = 1
	}
	c.Dispatch(ctx, input.Event{Time: when, Event: eventType, Control: control, Value: eventValue})
}

func (c *Controller) disconnect(ctx context.Context) {
	for _, control := range Controls() {
		c.Dispatch(ctx, input.Event{Time: time.Now(), Event: input.Disconnect, Control: control})
	}
}

// Controls lists the inputs.
func (c *Controller) Controls(ctx context.Context) ([]input.Control, error) {
	return Controls(), nil
}

// TriggerEvent dispatches an event as if the device had sent it.
func (c *Controller) TriggerEvent(ctx context.Context, event input.Event) error {
	if !c.Known(event.Control) {
		return errors.Errorf("unknown control %q", event.Control)
	}
	c.Dispatch(ctx, event)
	return nil
}

// Close stops reading and closes the device.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.workers.Wait()
	return c.dev.Close()
}
