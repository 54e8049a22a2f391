package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/usercommand/usercommand"
)

// JSON writes one wire message per line.
type JSON struct {
	mu    sync.Mutex
	enc   *json.Encoder
	w     io.Writer
	clock clock.Clock
}

// NewJSON returns a sink writing JSON lines to w, stamped by clk. A nil clk uses the wall clock.
// If w is an io.Closer it is closed with the sink.
func NewJSON(w io.Writer, clk clock.Clock) *JSON {
	if clk == nil {
		clk = clock.New()
	}
	return &JSON{enc: json.NewEncoder(w), w: w, clock: clk}
}

// Publish writes the command.
func (j *JSON) Publish(ctx context.Context, cmd usercommand.UserCommand) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(ToWire(cmd, j.clock.Now())); err != nil {
		return errors.Wrap(err, "failed to write command")
	}
	return nil
}

// Close closes the writer when it can be closed.
func (j *JSON) Close(ctx context.Context) error {
	if closer, ok := j.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
