package sink

import (
	"context"

	"go.uber.org/multierr"

	"go.viam.com/usercommand/usercommand"
)

// Multi publishes to several sinks. A failing sink does not keep the others from receiving the
// command.
type Multi struct {
	sinks []Sink
}

// NewMulti returns a sink fanning out to sinks in order.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Publish publishes to every sink and combines their errors.
func (m *Multi) Publish(ctx context.Context, cmd usercommand.UserCommand) error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Combine(err, s.Publish(ctx, cmd))
	}
	return err
}

// Close closes every sink.
func (m *Multi) Close(ctx context.Context) error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Combine(err, s.Close(ctx))
	}
	return err
}
