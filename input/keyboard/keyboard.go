// Package keyboard implements an input controller reading keys from the terminal. It draws a
// status view of the last published command and answers confirmation prompts from the next
// typed key.
package keyboard

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/usercommand"
)

// Model is the model name of the terminal keyboard.
const Model = "keyboard"

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

// Config configures the terminal keyboard.
type Config struct {
	// DisableAliases turns off the letter bindings of the keypad keys.
	DisableAliases bool `json:"disable_aliases,omitempty"`
}

// DefaultAliases lets a keyboard without a keypad reach the orientation keys.
func DefaultAliases() map[input.Control]input.Control {
	return map[input.Control]input.Control{
		"KeyJ": input.KeyKP4,
		"KeyL": input.KeyKP6,
		"KeyI": input.KeyKP8,
		"KeyK": input.KeyKP2,
		"KeyM": input.KeyKP1,
		"KeyU": input.KeyKP9,
	}
}

var specialKeys = map[tcell.Key]input.Control{
	tcell.KeyUp:    input.KeyUp,
	tcell.KeyDown:  input.KeyDown,
	tcell.KeyLeft:  input.KeyLeft,
	tcell.KeyRight: input.KeyRight,
	tcell.KeyPgUp:  input.KeyPageUp,
	tcell.KeyPgDn:  input.KeyPageDown,
	tcell.KeyEnter: input.KeyEnter,
}

// prompt is an outstanding confirmation. A prompt opened by a capture key has no text until
// Confirm claims it.
type prompt struct {
	text    string
	claimed bool
	answer  chan rune
}

func newPrompt() *prompt {
	return &prompt{answer: make(chan rune, 1)}
}

// Controller is a terminal keyboard.
type Controller struct {
	*input.Callbacks

	screen  tcell.Screen
	conf    Config
	logger  logging.Logger
	workers sync.WaitGroup

	mu           sync.Mutex
	prompt       *prompt
	captureAfter map[input.Control]bool
	last         *usercommand.UserCommand
	published int
	closed    bool

	done      chan struct{}
	closeOnce sync.Once
	finiOnce  sync.Once
}

var (
	_ = input.Controller(&Controller{})
	_ = input.Triggerable(&Controller{})
)

// NewController takes over the terminal.
func NewController(ctx context.Context, conf Config, logger logging.Logger) (*Controller, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "cannot open terminal")
	}
	return NewControllerWithScreen(ctx, screen, conf, logger)
}

// NewControllerWithScreen returns a controller reading keys from, and drawing to, screen.
func NewControllerWithScreen(ctx context.Context, screen tcell.Screen, conf Config, logger logging.Logger) (*Controller, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "cannot initialize terminal")
	}
	c := &Controller{
		Callbacks: input.NewCallbacks(input.KeyboardControls()),
		screen:    screen,
		conf:      conf,
		logger:    logger,
		done:      make(chan struct{}),
	}
	c.draw()

	c.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer c.workers.Done()
		c.eventLoop()
	})
	return c, nil
}

// Controls lists the inputs.
func (c *Controller) Controls(ctx context.Context) ([]input.Control, error) {
	return input.KeyboardControls(), nil
}

// Aliases returns the key remapping the keyboard wants applied to its controls.
func (c *Controller) Aliases() map[input.Control]input.Control {
	if c.conf.DisableAliases {
		return nil
	}
	return DefaultAliases()
}

// CaptureAfter makes the next key typed after any of controls answer a confirmation instead of
// being dispatched, even when it arrives before Confirm is called.
func (c *Controller) CaptureAfter(controls []input.Control) {
	capture := make(map[input.Control]bool, len(controls))
	for _, control := range controls {
		capture[control] = true
	}
	c.mu.Lock()
	c.captureAfter = capture
	c.mu.Unlock()
}

// Done is closed once the operator asks to quit (Ctrl-C) or the controller is closed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// TriggerEvent dispatches an event as if it had been typed.
func (c *Controller) TriggerEvent(ctx context.Context, event input.Event) error {
	if !c.Known(event.Control) {
		return errors.Errorf("unknown control %q", event.Control)
	}
	c.Dispatch(ctx, event)
	return nil
}

func (c *Controller) eventLoop() {
	for {
		// PollEvent returns nil once the screen is finalized.
		ev := c.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			c.handleKey(ev)
		case *tcell.EventResize:
			c.screen.Sync()
			c.draw()
		}
	}
}

func (c *Controller) handleKey(ev *tcell.EventKey) {
	if isInterrupt(ev) {
		c.logger.Info("quit requested")
		c.quit()
		return
	}

	c.mu.Lock()
	pending := c.prompt
	c.mu.Unlock()
	if pending != nil {
		// The key answers the prompt and is not dispatched. Enter or Escape without a
		// character declines.
		answer := rune(0)
		if ev.Key() == tcell.KeyRune {
			answer = ev.Rune()
		}
		if ev.Key() == tcell.KeyRune || ev.Key() == tcell.KeyEnter || ev.Key() == tcell.KeyEscape {
			select {
			case pending.answer <- answer:
			default:
			}
		}
		return
	}

	if ev.Key() == tcell.KeyEscape {
		c.logger.Info("quit requested")
		c.quit()
		return
	}

	control, ok := controlForKey(ev)
	if !ok {
		return
	}
	c.mu.Lock()
	if c.captureAfter[control] {
		c.prompt = newPrompt()
	}
	c.mu.Unlock()
	c.Dispatch(context.Background(), input.Event{
		Time:    ev.When(),
		Event:   input.ButtonPress,
		Control: control,
		Value:   1,
	})
}

func isInterrupt(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0)
}

func controlForKey(ev *tcell.EventKey) (input.Control, bool) {
	if ev.Key() == tcell.KeyRune {
		return input.ControlForRune(ev.Rune())
	}
	control, ok := specialKeys[ev.Key()]
	return control, ok
}

// Confirm shows text and waits for the next typed character. Enter alone declines with a zero
// rune. A later Confirm replaces the prompt on screen. A key already captured after a capture
// key answers at once.
func (c *Controller) Confirm(ctx context.Context, text string) (rune, error) {
	c.mu.Lock()
	p := c.prompt
	if p == nil || p.claimed {
		p = newPrompt()
		c.prompt = p
	}
	p.text = text
	p.claimed = true
	c.mu.Unlock()
	c.draw()

	defer func() {
		c.mu.Lock()
		if c.prompt == p {
			c.prompt = nil
		}
		c.mu.Unlock()
		c.draw()
	}()

	select {
	case answer := <-p.answer:
		return answer, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-c.done:
		return 0, errors.New("keyboard closed")
	}
}

// Publish shows the command on screen.
func (c *Controller) Publish(ctx context.Context, cmd usercommand.UserCommand) error {
	c.mu.Lock()
	c.last = &cmd
	c.published++
	c.mu.Unlock()
	c.draw()
	return nil
}

func (c *Controller) quit() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Close restores the terminal. It is safe to call more than once.
func (c *Controller) Close(ctx context.Context) error {
	c.quit()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.finiOnce.Do(c.screen.Fini)
	c.workers.Wait()
	return nil
}
