// Package node turns the key presses of an input controller into a stream of user commands.
//
// A single goroutine owns the translator. Controller callbacks and confirmation answers are
// queued to it, and every queued event results in exactly one published command.
package node

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/sink"
	"go.viam.com/usercommand/usercommand"
)

const defaultQueueSize = 64

// A Prompter asks the operator to confirm something and returns the typed answer. A zero rune
// is a decline without an answer.
type Prompter interface {
	Confirm(ctx context.Context, prompt string) (rune, error)
}

// A PromptCapturer is a Prompter reading its answers from the same keys it dispatches. It is
// told which controls open a confirmation so the key typed right after one is held for Confirm.
type PromptCapturer interface {
	Prompter
	CaptureAfter(controls []input.Control)
}

// Aliaser is implemented by controllers that want some of their controls remapped.
type Aliaser interface {
	Aliases() map[input.Control]input.Control
}

// Options configure a Node.
type Options struct {
	Controller input.Controller
	Translator *usercommand.Translator
	Sink       sink.Sink
	// Prompter answers confirmation requests. It defaults to the controller when the controller
	// can prompt.
	Prompter Prompter
	// Aliases remap controls before they reach the translator. They take precedence over the
	// controller's own aliases.
	Aliases map[input.Control]input.Control
	Logger  logging.Logger
}

// event is a key press or a confirmation answer.
type event struct {
	control input.Control
	answer  *answer
}

type answer struct {
	token uint64
	value rune
}

// Node runs the event loop.
type Node struct {
	controller input.Controller
	translator *usercommand.Translator
	sink       sink.Sink
	prompter   Prompter
	aliases    map[input.Control]input.Control
	logger     logging.Logger

	events    chan event
	published atomic.Int64

	// promptCancel is only touched by the loop goroutine.
	promptCancel context.CancelFunc

	startOnce               sync.Once
	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

// New returns a node that has not started yet.
func New(opts Options) (*Node, error) {
	if opts.Controller == nil {
		return nil, errors.New("node needs an input controller")
	}
	if opts.Translator == nil {
		return nil, errors.New("node needs a translator")
	}
	if opts.Sink == nil {
		return nil, errors.New("node needs a sink")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Global()
	}
	prompter := opts.Prompter
	if prompter == nil {
		if p, ok := opts.Controller.(Prompter); ok {
			prompter = p
		}
	}

	aliases := map[input.Control]input.Control{}
	if aliaser, ok := opts.Controller.(Aliaser); ok {
		for from, to := range aliaser.Aliases() {
			aliases[from] = to
		}
	}
	for from, to := range opts.Aliases {
		aliases[from] = to
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	return &Node{
		controller: opts.Controller,
		translator: opts.Translator,
		sink:       opts.Sink,
		prompter:   prompter,
		aliases:    aliases,
		logger:     logger,
		events:     make(chan event, defaultQueueSize),
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// Start subscribes to key presses of every control and starts the event loop. Nothing is
// published until the first event.
func (n *Node) Start(ctx context.Context) error {
	var err error
	n.startOnce.Do(func() {
		err = n.start(ctx)
	})
	return err
}

func (n *Node) start(ctx context.Context) error {
	controls, err := n.controller.Controls(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot list controls")
	}

	onPress := func(ctx context.Context, ev input.Event) {
		n.enqueue(event{control: ev.Control})
	}
	for _, control := range controls {
		if err := n.controller.RegisterControlCallback(ctx, control, []input.EventType{input.ButtonPress}, onPress); err != nil {
			return errors.Wrapf(err, "cannot subscribe to %q", control)
		}
	}
	n.logger.Debugw("subscribed to controls", "count", len(controls), "aliases", len(n.aliases))

	if capturer, ok := n.prompter.(PromptCapturer); ok && any(capturer) == any(n.controller) {
		capturer.CaptureAfter(n.confirmationSources(controls))
	}

	n.activeBackgroundWorkers.Add(1)
	utils.PanicCapturingGo(func() {
		defer n.activeBackgroundWorkers.Done()
		n.loop(n.cancelCtx)
	})
	return nil
}

// confirmationSources lists the controls that reach a confirmation key once aliased.
func (n *Node) confirmationSources(controls []input.Control) []input.Control {
	confirming := map[input.Control]bool{}
	for _, control := range usercommand.ConfirmationControls() {
		confirming[control] = true
	}
	var sources []input.Control
	for _, control := range controls {
		if confirming[n.resolve(control)] {
			sources = append(sources, control)
		}
	}
	return sources
}

func (n *Node) resolve(control input.Control) input.Control {
	if alias, ok := n.aliases[control]; ok {
		return alias
	}
	return control
}

// enqueue blocks until the loop has room or the node is closed.
func (n *Node) enqueue(ev event) {
	select {
	case n.events <- ev:
	case <-n.cancelCtx.Done():
	}
}

func (n *Node) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.events:
			n.handle(ctx, ev)
		}
	}
}

func (n *Node) handle(ctx context.Context, ev event) {
	if ev.answer != nil {
		n.publish(ctx, n.translator.Answer(ev.answer.token, ev.answer.value))
		return
	}

	cmd, res := n.translator.Handle(n.resolve(ev.control))
	if res.Confirmation != nil {
		n.startConfirmation(ctx, *res.Confirmation)
	}
	n.publish(ctx, cmd)
}

// startConfirmation asks the prompter off the loop. A newer request cancels the older prompt.
func (n *Node) startConfirmation(ctx context.Context, req usercommand.ConfirmationRequest) {
	if n.promptCancel != nil {
		n.promptCancel()
	}
	if n.prompter == nil {
		n.logger.Warn("no prompter available, declining confirmation")
		n.enqueueAnswer(req.Token, 0)
		return
	}

	promptCtx, promptCancel := context.WithCancel(ctx)
	n.promptCancel = promptCancel
	n.activeBackgroundWorkers.Add(1)
	utils.PanicCapturingGo(func() {
		defer n.activeBackgroundWorkers.Done()
		defer promptCancel()
		value, err := n.prompter.Confirm(promptCtx, req.Prompt)
		if err != nil {
			if promptCtx.Err() != nil {
				return
			}
			n.logger.Errorw("confirmation failed, declining", "error", err)
			value = 0
		}
		n.enqueue(event{answer: &answer{token: req.Token, value: value}})
	})
}

// enqueueAnswer queues an answer from the loop goroutine without blocking it.
func (n *Node) enqueueAnswer(token uint64, value rune) {
	n.activeBackgroundWorkers.Add(1)
	utils.PanicCapturingGo(func() {
		defer n.activeBackgroundWorkers.Done()
		n.enqueue(event{answer: &answer{token: token, value: value}})
	})
}

func (n *Node) publish(ctx context.Context, cmd usercommand.UserCommand) {
	n.published.Add(1)
	if err := n.sink.Publish(ctx, cmd); err != nil {
		n.logger.Errorw("failed to publish user command", "error", err)
	}
}

// Published returns how many commands were handed to the sink.
func (n *Node) Published() int64 {
	return n.published.Load()
}

// Close stops the loop and any outstanding prompt. It does not close the controller or the
// sink.
func (n *Node) Close(ctx context.Context) error {
	n.cancelFunc()
	n.activeBackgroundWorkers.Wait()
	return nil
}
