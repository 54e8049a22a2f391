// Package main runs a node that turns key presses into user commands for a motion planner.
package main

import (
	"context"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"go.viam.com/usercommand/config"
	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/input/evdev"
	"go.viam.com/usercommand/input/keyboard"
	_ "go.viam.com/usercommand/input/register"
	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/node"
	"go.viam.com/usercommand/sink"
	"go.viam.com/usercommand/usercommand"
)

const defaultConfigFile = "usercommand.json"

var logger = logging.NewLogger("usercommand")

// errQuit ends the run group once the operator quits from the keyboard.
var errQuit = errors.New("quit")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=node config file"`
	Debug      bool   `flag:"debug,usage=enable debug logging"`
	Controller string `flag:"controller,usage=input controller model to use instead of the configured one"`
	Device     string `flag:"device,usage=input event device for the evdev controller"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) (err error) {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.ConfigFile == "" {
		argsParsed.ConfigFile = defaultConfigFile
	}

	cfg, err := config.Read(argsParsed.ConfigFile, logger)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, argsParsed); err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if cfg.Controller.Model == keyboard.Model {
		if !interactive {
			return errors.New("the keyboard controller needs a terminal on stdin")
		}
		for _, s := range cfg.Sinks {
			if s.Type == sink.TypeJSON && s.Attributes["path"] == sink.StdoutPath {
				return errors.New("stdout is taken by the keyboard view, write commands to a file or udp instead")
			}
		}
	}

	nodeLogger, closeLogs := newNodeLogger(cfg, argsParsed.Debug)
	defer func() {
		err = multierr.Combine(err, closeLogs())
	}()

	return runNode(ctx, cfg, interactive, nodeLogger)
}

func applyOverrides(cfg *config.Config, argsParsed Arguments) error {
	if argsParsed.Controller == "" && argsParsed.Device == "" {
		return nil
	}
	if argsParsed.Controller != "" && argsParsed.Controller != cfg.Controller.Model {
		cfg.Controller.Model = argsParsed.Controller
		cfg.Controller.Attributes = nil
	}
	if argsParsed.Device != "" {
		if argsParsed.Controller == "" && cfg.Controller.Model != evdev.Model {
			cfg.Controller.Model = evdev.Model
			cfg.Controller.Attributes = nil
		}
		if cfg.Controller.Attributes == nil {
			cfg.Controller.Attributes = input.AttributeMap{}
		}
		cfg.Controller.Attributes["device"] = argsParsed.Device
	}
	return cfg.Ensure()
}

// newNodeLogger logs to stdout, or only to the log file when the keyboard view owns the terminal.
func newNodeLogger(cfg *config.Config, debug bool) (logging.Logger, func() error) {
	nodeLogger := logging.NewBlankLogger("usercommand")
	level := cfg.Log.ParsedLevel()
	if debug {
		level = logging.DEBUG
	}
	nodeLogger.SetLevel(level)

	if cfg.Controller.Model != keyboard.Model {
		nodeLogger.AddAppender(logging.NewStdoutAppender())
	}
	if cfg.Log.File == nil {
		return nodeLogger, nodeLogger.Sync
	}
	file := logging.NewFileAppender(*cfg.Log.File)
	nodeLogger.AddAppender(file)
	return nodeLogger, func() error {
		return multierr.Combine(nodeLogger.Sync(), file.Close())
	}
}

func runNode(ctx context.Context, cfg *config.Config, interactive bool, logger logging.Logger) (err error) {
	controller, err := input.NewController(ctx, cfg.Controller.Model, cfg.Controller.ConvertedAttributes,
		logger.Sublogger(cfg.Controller.Model))
	if err != nil {
		return errors.Wrapf(err, "cannot create %q input controller", cfg.Controller.Model)
	}
	defer func() {
		err = multierr.Combine(err, controller.Close(context.Background()))
	}()

	configured, err := sink.FromConfig(ctx, cfg.Sinks, clock.New(), logger.Sublogger("sink"))
	if err != nil {
		return err
	}
	var out sink.Sink = configured
	if view, ok := controller.(sink.Sink); ok {
		out = sink.NewMulti(configured, view)
	}
	defer func() {
		err = multierr.Combine(err, out.Close(context.Background()))
	}()

	var prompter node.Prompter
	if _, ok := controller.(node.Prompter); !ok && interactive {
		prompter = node.NewLinePrompter(os.Stdin, os.Stderr, clock.New())
	}

	n, err := node.New(node.Options{
		Controller: controller,
		Translator: usercommand.NewTranslator(cfg.Command.TranslatorOptions(), logger),
		Sink:       out,
		Prompter:   prompter,
		Aliases:    cfg.KeyAliases,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := n.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, n.Close(context.Background()))
		logger.Infow("node stopped", "published", n.Published())
	}()
	logger.Infow("node started", "controller", cfg.Controller.Model, "sinks", len(cfg.Sinks))
	utils.ContextMainReadyFunc(ctx)()

	g, gctx := errgroup.WithContext(ctx)
	if quitter, ok := controller.(interface{ Done() <-chan struct{} }); ok {
		g.Go(func() error {
			select {
			case <-quitter.Done():
				return errQuit
			case <-gctx.Done():
				return nil
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
