package input

import (
	"testing"

	"go.viam.com/test"
)

func TestControlForRune(t *testing.T) {
	for _, tc := range []struct {
		r        rune
		expected Control
	}{
		{'g', KeyG},
		{'G', KeyG},
		{'1', Key1},
		{'+', KeyKPPlus},
		{'-', KeyKPMinus},
		{' ', KeySpace},
	} {
		control, ok := ControlForRune(tc.r)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, control, test.ShouldEqual, tc.expected)
	}

	for _, r := range []rune{'*', 'é', '\n'} {
		_, ok := ControlForRune(r)
		test.That(t, ok, test.ShouldBeFalse)
	}
}

func TestRuneForControl(t *testing.T) {
	r, ok := RuneForControl(KeyY)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, r, test.ShouldEqual, 'y')

	r, ok = RuneForControl(Key1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, r, test.ShouldEqual, '1')

	r, ok = RuneForControl(KeyKPMinus)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, r, test.ShouldEqual, '-')

	for _, control := range []Control{KeyKP4, KeyUp, KeyPageDown, "Unknown"} {
		_, ok := RuneForControl(control)
		test.That(t, ok, test.ShouldBeFalse)
	}
}

func TestKeyboardControls(t *testing.T) {
	controls := KeyboardControls()
	test.That(t, controls, test.ShouldContain, KeyKP9)
	test.That(t, controls, test.ShouldContain, KeyG)
	test.That(t, controls, test.ShouldContain, Key1)
	test.That(t, len(controls), test.ShouldEqual, 21+10+26)

	// Callers get their own copy.
	controls[0] = "Mutated"
	test.That(t, KeyboardControls()[0], test.ShouldEqual, KeyUp)
}
