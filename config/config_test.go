package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/input/fake"
	_ "go.viam.com/usercommand/input/keyboard"
	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/sink"
	"go.viam.com/usercommand/usercommand"
)

const fullConfig = `{
	"controller": {"model": "fake", "attributes": {"controls": ["KeyLeft", "KeyRight"]}},
	"sinks": [
		{"type": "json", "attributes": {"path": "${USERCOMMAND_TEST_OUT}"}},
		{"type": "log"}
	],
	"command": {
		"goal_position": [1.0, 0.5, 0.4],
		"goal_orientation": [0, 0.1, 0],
		"total_duration": 3.0,
		"linear_step": 0.05,
		"max_gaits": 4
	},
	"key_aliases": {"KeyJ": "KeyKP4"},
	"log": {"level": "debug", "file": {"path": "/tmp/usercommand.log", "max_size_mb": 10}}
}`

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	out := filepath.Join(t.TempDir(), "out.jsonl")
	t.Setenv("USERCOMMAND_TEST_OUT", out)

	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(fullConfig), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Controller.Model, test.ShouldEqual, fake.Model)
	test.That(t, cfg.Controller.ConvertedAttributes, test.ShouldResemble,
		&fake.Config{Controls: []input.Control{input.KeyLeft, input.KeyRight}})
	test.That(t, cfg.Sinks, test.ShouldHaveLength, 2)
	test.That(t, cfg.Sinks[0].Attributes["path"], test.ShouldEqual, out)
	test.That(t, cfg.KeyAliases, test.ShouldResemble, map[input.Control]input.Control{"KeyJ": input.KeyKP4})
	test.That(t, cfg.Log.ParsedLevel(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.Log.File.MaxSizeMB, test.ShouldEqual, 10)

	opts := cfg.Command.TranslatorOptions()
	test.That(t, opts.Initial.GoalPosition, test.ShouldResemble, r3.Vector{X: 1, Y: 0.5, Z: 0.4})
	test.That(t, opts.Initial.GoalOrientation.Pitch, test.ShouldEqual, 0.1)
	test.That(t, opts.Initial.TotalDuration, test.ShouldEqual, 3.0)
	test.That(t, opts.LinearStep, test.ShouldEqual, 0.05)
	test.That(t, opts.AngularStep, test.ShouldEqual, 0.0)
	test.That(t, opts.MaxGaits, test.ShouldEqual, 4)
}

func TestGoalQuaternion(t *testing.T) {
	half := math.Pi / 4
	conf := CommandConfig{GoalQuaternion: []float64{2 * math.Cos(half), 0, 0, 2 * math.Sin(half)}}
	test.That(t, conf.Validate("command"), test.ShouldBeNil)

	ori := conf.TranslatorOptions().Initial.GoalOrientation
	test.That(t, ori.Yaw, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, ori.Roll, test.ShouldAlmostEqual, 0.0)
	test.That(t, ori.Pitch, test.ShouldAlmostEqual, 0.0)
}

func TestReadMissingFile(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "nope.json"), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Controller.Model, test.ShouldEqual, DefaultControllerModel)
	test.That(t, cfg.Sinks, test.ShouldResemble, Default().Sinks)
	test.That(t, cfg.Log.ParsedLevel(), test.ShouldEqual, logging.INFO)

	opts := cfg.Command.TranslatorOptions()
	test.That(t, *opts.Initial, test.ShouldResemble, usercommand.DefaultPendingCommand())
}

func TestFromReaderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name   string
		config string
		err    string
	}{
		{"bad json", `{"controller": `, "cannot parse config"},
		{"unknown field", `{"joystick": {}}`, "unknown field"},
		{"unknown model", `{"controller": {"model": "gamepad"}}`, `unknown input controller model "gamepad"`},
		{"bad attributes", `{"controller": {"model": "fake", "attributes": {"buttons": 3}}}`, "buttons"},
		{"bad sink", `{"controller": {"model": "fake"}, "sinks": [{"type": "udp"}]}`, "sinks.0"},
		{"short position", `{"controller": {"model": "fake"}, "command": {"goal_position": [1, 2]}}`, "goal_position"},
		{"short quaternion", `{"controller": {"model": "fake"}, "command": {"goal_quaternion": [1, 0, 0]}}`, "goal_quaternion"},
		{"zero quaternion", `{"controller": {"model": "fake"}, "command": {"goal_quaternion": [0, 0, 0, 0]}}`, "cannot be zero"},
		{"two orientations", `{"controller": {"model": "fake"}, "command": {"goal_orientation": [0, 0, 0], "goal_quaternion": [1, 0, 0, 0]}}`, "only one of"},
		{"negative step", `{"controller": {"model": "fake"}, "command": {"duration_step": -0.2}}`, "negative"},
		{"one terrain", `{"controller": {"model": "fake"}, "command": {"terrain_count": 1}}`, "terrain_count"},
		{"empty alias", `{"controller": {"model": "fake"}, "key_aliases": {"KeyJ": ""}}`, "key_aliases"},
		{"bad level", `{"controller": {"model": "fake"}, "log": {"level": "loud"}}`, "unknown log level"},
		{"file without path", `{"controller": {"model": "fake"}, "log": {"file": {"max_size_mb": 1}}}`, `"file.path" is required`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("test.json", strings.NewReader(tc.config), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}
}

func TestEnsureDefaults(t *testing.T) {
	cfg := &Config{Controller: ControllerConfig{Model: fake.Model}}
	test.That(t, cfg.Ensure(), test.ShouldBeNil)
	test.That(t, cfg.Sinks, test.ShouldResemble, []sink.Config{
		{Type: sink.TypeJSON, Attributes: map[string]interface{}{"path": DefaultCommandFile}},
	})
	test.That(t, cfg.Controller.ConvertedAttributes, test.ShouldResemble, &fake.Config{})
}
