// Package usercommand translates key presses into the user command a motion planner consumes.
//
// A Translator owns a PendingCommand. Every accepted input event mutates it through Apply (or
// Confirm) and is followed by exactly one Flush, which snapshots the state into a UserCommand and
// clears the one-shot requests.
package usercommand

import (
	"github.com/golang/geo/r3"

	"go.viam.com/usercommand/spatialmath"
)

// Defaults of a freshly started node.
const (
	DefaultLinearStep    = 0.1  // [m]
	DefaultAngularStep   = 0.25 // [rad]
	DefaultDurationStep  = 0.2  // [s]
	DefaultTotalDuration = 2.0  // [s]
	DefaultMaxGaits      = 8
)

// DefaultGoalPosition is the goal advertised before any key is pressed.
var DefaultGoalPosition = r3.Vector{X: 1.3, Y: 0, Z: 0.46}

// TerrainID indexes the terrains known to the planner.
type TerrainID int

// Known terrains. TerrainCount is the size of the enumeration, not a terrain.
const (
	TerrainFlat TerrainID = iota
	TerrainStairs
	TerrainGap
	TerrainSlope
	TerrainChimney
	TerrainChimneyLR
	TerrainCount
)

var terrainNames = [...]string{"Flat", "Stairs", "Gap", "Slope", "Chimney", "ChimneyLR"}

func (t TerrainID) String() string {
	if t < 0 || t >= TerrainCount {
		return "Unknown"
	}
	return terrainNames[t]
}

// PendingCommand is the mutable command the translator edits between flushes.
type PendingCommand struct {
	GoalPosition    r3.Vector               `json:"goal_position"`
	GoalOrientation spatialmath.EulerAngles `json:"goal_orientation"`
	TerrainID       int                     `json:"terrain_id"`
	GaitID          int                     `json:"gait_id"`
	TotalDuration   float64                 `json:"total_duration"`

	// One-shot requests, cleared by Take.
	Optimize          bool `json:"optimize"`
	Replay            bool `json:"replay"`
	PublishTrajectory bool `json:"publish_trajectory"`

	UseAlternateSolver bool `json:"use_alternate_solver"`
}

// DefaultPendingCommand returns the command a node starts with.
func DefaultPendingCommand() PendingCommand {
	return PendingCommand{
		GoalPosition:  DefaultGoalPosition,
		TotalDuration: DefaultTotalDuration,
	}
}

// Take returns a snapshot of the command and then clears the one-shot requests. Persistent
// fields are left as they are.
func (pc *PendingCommand) Take() UserCommand {
	snapshot := UserCommand(*pc)
	pc.Optimize = false
	pc.Replay = false
	pc.PublishTrajectory = false
	return snapshot
}

// UserCommand is an immutable snapshot of a PendingCommand handed to the outbound sink.
type UserCommand struct {
	GoalPosition       r3.Vector               `json:"goal_position"`
	GoalOrientation    spatialmath.EulerAngles `json:"goal_orientation"`
	TerrainID          int                     `json:"terrain_id"`
	GaitID             int                     `json:"gait_id"`
	TotalDuration      float64                 `json:"total_duration"`
	Optimize           bool                    `json:"optimize"`
	Replay             bool                    `json:"replay"`
	PublishTrajectory  bool                    `json:"publish_trajectory"`
	UseAlternateSolver bool                    `json:"use_alternate_solver"`
}
