package keyboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/usercommand"
)

func newTestController(t *testing.T) (*Controller, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(100, 30)
	c, err := NewControllerWithScreen(context.Background(), screen, Config{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() {
		test.That(t, c.Close(context.Background()), test.ShouldBeNil)
	})
	return c, screen
}

func screenText(screen tcell.SimulationScreen) string {
	width, height := screen.Size()
	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			//nolint:staticcheck
			r, _, _, _ := screen.GetContent(x, y)
			if r == 0 {
				r = ' '
			}
			sb.WriteRune(r)
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

func recordPresses(t *testing.T, c *Controller, controls ...input.Control) <-chan input.Control {
	t.Helper()
	pressed := make(chan input.Control, 16)
	for _, control := range controls {
		err := c.RegisterControlCallback(context.Background(), control, []input.EventType{input.ButtonPress},
			func(ctx context.Context, ev input.Event) {
				pressed <- ev.Control
			})
		test.That(t, err, test.ShouldBeNil)
	}
	return pressed
}

func nextPress(t *testing.T, pressed <-chan input.Control) input.Control {
	t.Helper()
	select {
	case control := <-pressed:
		return control
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for key press")
	}
	return ""
}

func TestKeysToControls(t *testing.T) {
	c, screen := newTestController(t)
	pressed := recordPresses(t, c, input.KeyLeft, input.KeyPageUp, input.KeyG, input.KeyKPPlus, input.KeyKPMinus, input.Key1)

	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyPgUp, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'G', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '1', tcell.ModNone)

	for _, expected := range []input.Control{
		input.KeyLeft, input.KeyPageUp, input.KeyG, input.KeyKPPlus, input.KeyKPMinus, input.Key1,
	} {
		test.That(t, nextPress(t, pressed), test.ShouldEqual, expected)
	}

	events, err := c.Events(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[input.KeyLeft].Event, test.ShouldEqual, input.ButtonPress)
	test.That(t, events[input.KeyLeft].Value, test.ShouldEqual, 1.0)
	test.That(t, events[input.KeyRight].Event, test.ShouldEqual, input.Connect)
}

func TestConfirm(t *testing.T) {
	c, screen := newTestController(t)
	pressed := recordPresses(t, c, input.KeyY, input.Control("KeyN"), input.KeyLeft)

	answers := make(chan rune, 1)
	go func() {
		answer, err := c.Confirm(context.Background(), "Press y and Enter to send")
		test.That(t, err, test.ShouldBeNil)
		answers <- answer
	}()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, screenText(screen), test.ShouldContainSubstring, "Press y and Enter to send")
	})

	screen.InjectKey(tcell.KeyRune, 'y', tcell.ModNone)
	test.That(t, <-answers, test.ShouldEqual, 'y')

	// The prompt is gone and keys dispatch again; the answer was not dispatched.
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, screenText(screen), test.ShouldNotContainSubstring, "Press y and Enter to send")
	})
	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	test.That(t, nextPress(t, pressed), test.ShouldEqual, input.KeyLeft)

	go func() {
		answer, err := c.Confirm(context.Background(), "again?")
		test.That(t, err, test.ShouldBeNil)
		answers <- answer
	}()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, screenText(screen), test.ShouldContainSubstring, "again?")
	})
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	test.That(t, <-answers, test.ShouldEqual, rune(0))
	test.That(t, len(pressed), test.ShouldEqual, 0)
}

func TestKeyTypedRightAfterCaptureKeyAnswers(t *testing.T) {
	c, screen := newTestController(t)
	c.CaptureAfter([]input.Control{input.KeyP})
	pressed := recordPresses(t, c, input.KeyY, input.KeyLeft)

	answers := make(chan rune, 1)
	err := c.RegisterControlCallback(context.Background(), input.KeyP, []input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) {
			go func() {
				// The prompt opens well after the answer was typed.
				time.Sleep(50 * time.Millisecond)
				answer, err := c.Confirm(context.Background(), "Press y and Enter to send")
				test.That(t, err, test.ShouldBeNil)
				answers <- answer
			}()
		})
	test.That(t, err, test.ShouldBeNil)

	screen.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'y', tcell.ModNone)

	select {
	case answer := <-answers:
		test.That(t, answer, test.ShouldEqual, 'y')
	case <-time.After(5 * time.Second):
		t.Fatal("confirmation was never answered")
	}
	test.That(t, len(pressed), test.ShouldEqual, 0)

	// Once answered, keys dispatch again.
	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	test.That(t, nextPress(t, pressed), test.ShouldEqual, input.KeyLeft)
}

func TestConfirmCanceled(t *testing.T) {
	c, _ := newTestController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Confirm(ctx, "never answered")
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestQuit(t *testing.T) {
	c, screen := newTestController(t)
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("ctrl-c did not quit")
	}
	_, err := c.Confirm(context.Background(), "too late")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPublishShowsStatus(t *testing.T) {
	c, screen := newTestController(t)
	test.That(t, screenText(screen), test.ShouldContainSubstring, "no command published yet")

	cmd := usercommand.UserCommand(usercommand.DefaultPendingCommand())
	cmd.TerrainID = 1
	test.That(t, c.Publish(context.Background(), cmd), test.ShouldBeNil)

	text := screenText(screen)
	test.That(t, text, test.ShouldContainSubstring, "x=1.300 y=0.000 z=0.460")
	test.That(t, text, test.ShouldContainSubstring, "1 (Stairs)")
	test.That(t, text, test.ShouldContainSubstring, "commands sent     1")
}

func TestAliases(t *testing.T) {
	c, _ := newTestController(t)
	test.That(t, c.Aliases(), test.ShouldResemble, DefaultAliases())
	test.That(t, c.Aliases()["KeyJ"], test.ShouldEqual, input.KeyKP4)

	disabled := &Controller{conf: Config{DisableAliases: true}}
	test.That(t, disabled.Aliases(), test.ShouldBeNil)
}

func TestAliasLine(t *testing.T) {
	test.That(t, aliasLine(DefaultAliases()), test.ShouldEqual, "aliases: i=kp8 j=kp4 k=kp2 l=kp6 m=kp1 u=kp9")
	test.That(t, aliasLine(nil), test.ShouldEqual, "")
	test.That(t, aliasLine(map[input.Control]input.Control{input.KeyUp: input.KeyKP8}), test.ShouldEqual, "")

	c, screen := newTestController(t)
	test.That(t, screenText(screen), test.ShouldContainSubstring, "aliases: i=kp8")
	test.That(t, c.Aliases(), test.ShouldNotBeEmpty)
}

func TestRegistered(t *testing.T) {
	converted, err := input.ConvertAttributes(Model, input.AttributeMap{"disable_aliases": true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, converted, test.ShouldResemble, &Config{DisableAliases: true})
}
