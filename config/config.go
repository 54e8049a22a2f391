// Package config defines the structures to configure a user command node.
package config

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/sink"
	"go.viam.com/usercommand/spatialmath"
	"go.viam.com/usercommand/usercommand"
)

// Defaults used when the config leaves them out.
const (
	DefaultControllerModel = "keyboard"
	DefaultCommandFile     = "user_commands.jsonl"
)

// A Config describes the configuration of a node.
type Config struct {
	ConfigFilePath string `json:"-"`

	Controller ControllerConfig                `json:"controller"`
	Sinks      []sink.Config                   `json:"sinks,omitempty"`
	Command    CommandConfig                   `json:"command"`
	KeyAliases map[input.Control]input.Control `json:"key_aliases,omitempty"`
	Log        LogConfig                       `json:"log"`
}

// Default returns the configuration used when no config file exists: a terminal keyboard
// appending JSON lines to DefaultCommandFile.
func Default() *Config {
	return &Config{
		Controller: ControllerConfig{Model: DefaultControllerModel},
		Sinks: []sink.Config{
			{Type: sink.TypeJSON, Attributes: map[string]interface{}{"path": DefaultCommandFile}},
		},
	}
}

// Ensure applies defaults, validates the config and converts controller attributes.
func (c *Config) Ensure() error {
	if c.Controller.Model == "" {
		c.Controller.Model = DefaultControllerModel
	}
	if len(c.Sinks) == 0 {
		c.Sinks = Default().Sinks
	}

	if err := c.Controller.Validate("controller"); err != nil {
		return err
	}
	for idx := 0; idx < len(c.Sinks); idx++ {
		if err := c.Sinks[idx].Validate(fmt.Sprintf("%s.%d", "sinks", idx)); err != nil {
			return err
		}
	}
	if err := c.Command.Validate("command"); err != nil {
		return err
	}
	for from, to := range c.KeyAliases {
		if from == "" || to == "" {
			return utils.NewConfigValidationError("key_aliases", errors.Errorf("empty alias %q -> %q", from, to))
		}
	}
	return c.Log.Validate("log")
}

// ControllerConfig selects and configures the input controller.
type ControllerConfig struct {
	Model      string             `json:"model"`
	Attributes input.AttributeMap `json:"attributes,omitempty"`

	ConvertedAttributes interface{} `json:"-"`
}

// Validate ensures all parts of the config are valid and converts the attributes.
func (conf *ControllerConfig) Validate(path string) error {
	if conf.Model == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	}
	converted, err := input.ConvertAttributes(conf.Model, conf.Attributes)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if validator, ok := converted.(interface{ Validate(path string) error }); ok {
		if err := validator.Validate(path + ".attributes"); err != nil {
			return err
		}
	}
	conf.ConvertedAttributes = converted
	return nil
}

// CommandConfig overrides the initial command and the step sizes.
type CommandConfig struct {
	GoalPosition    []float64 `json:"goal_position,omitempty"`
	GoalOrientation []float64 `json:"goal_orientation,omitempty"`
	// GoalQuaternion is an alternative to GoalOrientation given as (w, x, y, z).
	GoalQuaternion []float64 `json:"goal_quaternion,omitempty"`
	TotalDuration   *float64  `json:"total_duration,omitempty"`

	LinearStep   float64 `json:"linear_step,omitempty"`
	AngularStep  float64 `json:"angular_step,omitempty"`
	DurationStep float64 `json:"duration_step,omitempty"`
	TerrainCount int     `json:"terrain_count,omitempty"`
	MaxGaits     int     `json:"max_gaits,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *CommandConfig) Validate(path string) error {
	if conf.GoalPosition != nil && len(conf.GoalPosition) != 3 {
		return utils.NewConfigValidationError(path, errors.New("goal_position must have 3 elements"))
	}
	if conf.GoalOrientation != nil && len(conf.GoalOrientation) != 3 {
		return utils.NewConfigValidationError(path, errors.New("goal_orientation must have 3 elements (roll, pitch, yaw)"))
	}
	if conf.GoalQuaternion != nil {
		if len(conf.GoalQuaternion) != 4 {
			return utils.NewConfigValidationError(path, errors.New("goal_quaternion must have 4 elements (w, x, y, z)"))
		}
		if conf.GoalOrientation != nil {
			return utils.NewConfigValidationError(path, errors.New("only one of goal_orientation and goal_quaternion may be set"))
		}
		if lo.EveryBy(conf.GoalQuaternion, func(v float64) bool { return v == 0 }) {
			return utils.NewConfigValidationError(path, errors.New("goal_quaternion cannot be zero"))
		}
	}
	if conf.LinearStep < 0 || conf.AngularStep < 0 || conf.DurationStep < 0 {
		return utils.NewConfigValidationError(path, errors.New("step sizes cannot be negative"))
	}
	if conf.TerrainCount != 0 && conf.TerrainCount < 2 {
		return utils.NewConfigValidationError(path, errors.New("terrain_count must be at least 2"))
	}
	if conf.MaxGaits < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_gaits cannot be negative"))
	}
	return nil
}

// TranslatorOptions returns the translator options the config describes.
func (conf *CommandConfig) TranslatorOptions() usercommand.Options {
	initial := usercommand.DefaultPendingCommand()
	if len(conf.GoalPosition) == 3 {
		initial.GoalPosition = vectorOf(conf.GoalPosition)
	}
	switch {
	case len(conf.GoalOrientation) == 3:
		initial.GoalOrientation = spatialmath.EulerAnglesFromVector(vectorOf(conf.GoalOrientation))
	case len(conf.GoalQuaternion) == 4:
		q := conf.GoalQuaternion
		initial.GoalOrientation = spatialmath.QuatToEulerAngles(quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]})
	}
	if conf.TotalDuration != nil {
		initial.TotalDuration = *conf.TotalDuration
	}
	return usercommand.Options{
		Initial:      &initial,
		LinearStep:   conf.LinearStep,
		AngularStep:  conf.AngularStep,
		DurationStep: conf.DurationStep,
		TerrainCount: conf.TerrainCount,
		MaxGaits:     conf.MaxGaits,
	}
}

func vectorOf(v []float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// LogConfig sets the log level and an optional rotating log file.
type LogConfig struct {
	Level string                      `json:"level,omitempty"`
	File  *logging.FileAppenderConfig `json:"file,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *LogConfig) Validate(path string) error {
	if conf.Level != "" {
		if _, err := logging.LevelFromString(conf.Level); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	if conf.File != nil && conf.File.Path == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "file.path")
	}
	return nil
}

// ParsedLevel returns the configured level, INFO when unset.
func (conf *LogConfig) ParsedLevel() logging.Level {
	if conf.Level == "" {
		return logging.INFO
	}
	level, err := logging.LevelFromString(conf.Level)
	if err != nil {
		return logging.INFO
	}
	return level
}
