package sink

import (
	"context"

	"go.viam.com/usercommand/logging"
	"go.viam.com/usercommand/usercommand"
)

// Log logs each command at debug level.
type Log struct {
	logger logging.Logger
}

// NewLog returns a sink logging to logger.
func NewLog(logger logging.Logger) *Log {
	return &Log{logger: logger}
}

// Publish logs the command.
func (l *Log) Publish(ctx context.Context, cmd usercommand.UserCommand) error {
	l.logger.Debugw("user command",
		"goal_position", cmd.GoalPosition,
		"goal_orientation", cmd.GoalOrientation,
		"terrain_id", cmd.TerrainID,
		"gait_id", cmd.GaitID,
		"total_duration", cmd.TotalDuration,
		"optimize", cmd.Optimize,
		"replay", cmd.Replay,
		"publish_trajectory", cmd.PublishTrajectory,
		"use_alternate_solver", cmd.UseAlternateSolver,
	)
	return nil
}

// Close does nothing.
func (l *Log) Close(ctx context.Context) error {
	return nil
}
