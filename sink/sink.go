// Package sink delivers user commands to the motion planner.
package sink

import (
	"context"
	"time"

	"go.viam.com/usercommand/usercommand"
)

// A Sink receives every flushed command. Publish must not retain the command.
type Sink interface {
	Publish(ctx context.Context, cmd usercommand.UserCommand) error
	Close(ctx context.Context) error
}

// StateLin is a linear state in the planner's message layout.
type StateLin struct {
	Pos [3]float64 `json:"pos"`
	Vel [3]float64 `json:"vel"`
	Acc [3]float64 `json:"acc"`
}

// Wire is the message a planner reads. Field names match the planner's UserCommand message.
type Wire struct {
	Stamp            time.Time `json:"stamp"`
	GoalLin          StateLin  `json:"goal_lin"`
	GoalAng          StateLin  `json:"goal_ang"`
	ReplayTrajectory bool      `json:"replay_trajectory"`
	UseSolverSnopt   bool      `json:"use_solver_snopt"`
	Optimize         bool      `json:"optimize"`
	TerrainID        int       `json:"terrain_id"`
	GaitID           int       `json:"gait_id"`
	TotalDuration    float64   `json:"total_duration"`
	PublishTraj      bool      `json:"publish_traj"`
}

// ToWire converts a command to its wire form. Goals carry positions only; velocities and
// accelerations are zero. The angular position is (roll, pitch, yaw).
func ToWire(cmd usercommand.UserCommand, stamp time.Time) Wire {
	pos, ori := cmd.GoalPosition, cmd.GoalOrientation
	return Wire{
		Stamp:            stamp,
		GoalLin:          StateLin{Pos: [3]float64{pos.X, pos.Y, pos.Z}},
		GoalAng:          StateLin{Pos: [3]float64{ori.Roll, ori.Pitch, ori.Yaw}},
		ReplayTrajectory: cmd.Replay,
		UseSolverSnopt:   cmd.UseAlternateSolver,
		Optimize:         cmd.Optimize,
		TerrainID:        cmd.TerrainID,
		GaitID:           cmd.GaitID,
		TotalDuration:    cmd.TotalDuration,
		PublishTraj:      cmd.PublishTrajectory,
	}
}
